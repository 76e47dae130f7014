package bootstrap

import (
	"github.com/kbukum/kafkaboot/brokerconf"
	"github.com/kbukum/kafkaboot/logger"
	"github.com/kbukum/kafkaboot/process"
)

// Option configures the Bootstrapper during creation.
type Option func(*Bootstrapper)

// WithLogger sets a custom logger.
// If not set, the global logger is used.
func WithLogger(l *logger.Logger) Option {
	return func(b *Bootstrapper) {
		b.log = l
	}
}

// WithEnvironment sets the environment layer. Defaults to os.Environ.
func WithEnvironment(env map[string]string) Option {
	return func(b *Bootstrapper) {
		b.env = brokerconf.Map(env)
	}
}

// WithIDStore sets the broker id store. Defaults to a store backed by
// paths.broker_id_file.
func WithIDStore(s *brokerconf.IDStore) Option {
	return func(b *Bootstrapper) {
		b.ids = s
	}
}

// WithSpawner replaces the process launcher.
func WithSpawner(s process.Spawner) Option {
	return func(b *Bootstrapper) {
		b.spawner = s
	}
}

// WithReadFile replaces the template reader.
func WithReadFile(fn func(path string) ([]byte, error)) Option {
	return func(b *Bootstrapper) {
		b.readFile = fn
	}
}

// WithWriteFile replaces the config writer.
func WithWriteFile(fn func(path string, data []byte) error) Option {
	return func(b *Bootstrapper) {
		b.writeFile = fn
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(b *Bootstrapper) {
		b.runID = id
	}
}
