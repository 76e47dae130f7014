package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/kafkaboot/bootstrap"
	"github.com/kbukum/kafkaboot/config"
	"github.com/kbukum/kafkaboot/discovery"
	"github.com/kbukum/kafkaboot/logger"
	"github.com/kbukum/kafkaboot/observability"
	"github.com/kbukum/kafkaboot/registry"
	"github.com/kbukum/kafkaboot/resolver"
	"github.com/kbukum/kafkaboot/version"
)

const serviceName = "kafkaboot"

// tracingFlushTimeout bounds the span flush after the command returns.
const tracingFlushTimeout = 5 * time.Second

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// cli holds the persistent flags and what they produce.
type cli struct {
	configFile string
	envFile    string
	logLevel   string

	stdout io.Writer
	stderr io.Writer

	settings *config.Settings
	log      *logger.Logger
	shutdown observability.ShutdownFunc
}

func execute(ctx context.Context, args []string) int {
	return executeWith(ctx, args, os.Stdout, os.Stderr)
}

func executeWith(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	root := c.rootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	c.flushTracing()

	var ee *exitError
	switch {
	case err == nil:
		return 0
	case stderrors.As(err, &ee):
		return ee.code
	default:
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
}

func (c *cli) rootCmd() *cobra.Command {
	run := c.runCmd()
	root := &cobra.Command{
		Use:   serviceName,
		Short: "kafkaboot - Kafka broker container entrypoint",
		Long: `kafkaboot discovers the broker's advertised address and the ZooKeeper
ensemble, renders the broker configuration from its template and launches
the broker, forwarding its output, signals and exit code.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              run.RunE,
	}

	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "Config file (default: search standard locations)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "Env file loaded before reading settings")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override logging.level")

	root.AddCommand(run)
	root.AddCommand(c.renderCmd())
	root.AddCommand(c.checkCmd())
	root.AddCommand(c.versionCmd())

	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	return root
}

// setup loads settings and initializes the logger for every subcommand.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	var opts []config.LoaderOption
	if c.configFile != "" {
		opts = append(opts, config.WithConfigFile(c.configFile))
	}
	if c.envFile != "" {
		opts = append(opts, config.WithEnvFile(c.envFile))
	}

	settings, err := config.Load(serviceName, opts...)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		settings.Logging.Level = c.logLevel
		if err := settings.Logging.Validate(); err != nil {
			return err
		}
	}

	c.settings = settings
	c.log = logger.NewWithWriter(&settings.Logging, serviceName, c.logWriter())
	logger.SetGlobalLogger(c.log)

	c.shutdown, err = observability.InitTracer(cmd.Context(), observability.TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Get().Version,
		Endpoint:       settings.Tracing.Endpoint,
		Insecure:       settings.Tracing.Insecure,
		SampleRate:     settings.Tracing.SampleRate,
	}, c.log)
	return err
}

// flushTracing sends buffered spans. The broker has already exited, so a
// collector that is down only costs the trace.
func (c *cli) flushTracing() {
	if c.shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), tracingFlushTimeout)
	defer cancel()
	if err := c.shutdown(ctx); err != nil {
		c.log.Warn("trace flush failed", logger.ErrorFields("tracing", err))
	}
}

func (c *cli) logWriter() io.Writer {
	if c.settings.Logging.Output == logger.OutputStdout {
		return c.stdout
	}
	return c.stderr
}

// newBootstrapper wires discovery, registry and the launcher from settings.
func (c *cli) newBootstrapper(opts ...bootstrap.Option) (*bootstrap.Bootstrapper, error) {
	s := c.settings

	reg, err := registry.New(registry.Config{
		Port:       s.Registry.Port,
		Scheme:     s.Registry.Scheme,
		APIVersion: s.Registry.APIVersion,
		Timeout:    s.Registry.Timeout,
		UserAgent:  version.Get().UserAgent(),
		TLS:        &s.Registry.TLS,
	}, c.log)
	if err != nil {
		return nil, err
	}

	dns := resolver.NewDNS(resolver.Config{
		Server:  s.Discovery.ResolverAddr,
		Timeout: s.Discovery.DNSTimeout,
	})

	disc := discovery.New(discovery.Config{
		Strategy:     discovery.Strategy(s.Discovery.Strategy),
		DomainSuffix: s.Discovery.DomainSuffix,
		LeaderName:   s.Discovery.LeaderName,
		Hostname:     s.Discovery.Hostname,
		Application:  s.Registry.Application,
		Timeout:      s.Discovery.DNSTimeout,
	}, dns, c.log, discovery.WithRegistry(reg))

	return bootstrap.New(s, disc, append([]bootstrap.Option{bootstrap.WithLogger(c.log)}, opts...)...), nil
}
