package brokerconf

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/moby/sys/atomicwriter"

	"github.com/kbukum/kafkaboot/logger"
)

// MaxBrokerID is the upper bound of generated broker ids.
const MaxBrokerID = 256000000

// IDStore supplies the broker id when no configuration layer sets one.
// With a path, a generated id is persisted and reused on later starts.
type IDStore struct {
	path   string
	random func() int
	log    *logger.Logger

	// pending is a generated id not yet written to path.
	pending string
}

// IDStoreOption configures an IDStore.
type IDStoreOption func(*IDStore)

// WithRandom replaces the id generator. fn must return a value in
// [1, MaxBrokerID].
func WithRandom(fn func() int) IDStoreOption {
	return func(s *IDStore) { s.random = fn }
}

// NewIDStore creates a store backed by path. An empty path disables
// persistence.
func NewIDStore(path string, log *logger.Logger, opts ...IDStoreOption) *IDStore {
	if log == nil {
		log = logger.Nop()
	}
	s := &IDStore{
		path:   path,
		random: func() int { return rand.IntN(MaxBrokerID) + 1 },
		log:    log.WithComponent("broker-id"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BrokerID returns the persisted id, or a generated one. A generated id is
// held until Commit, so a preview or a failed start leaves no file behind;
// repeated calls before Commit return the same id.
func (s *IDStore) BrokerID() string {
	if s.path == "" {
		return strconv.Itoa(s.random())
	}

	if id, ok := s.load(); ok {
		s.log.Debug("using persisted broker id", logger.Fields(logger.FieldPath, s.path, "broker_id", id))
		return id
	}

	if s.pending == "" {
		s.pending = strconv.Itoa(s.random())
	}
	return s.pending
}

// Commit persists the id generated by BrokerID. It does nothing when the id
// came from the file, no id was generated, or persistence is off. Failures
// are logged and returned; the caller may ignore them.
func (s *IDStore) Commit() error {
	if s.pending == "" {
		return nil
	}
	id := s.pending
	if err := s.store(id); err != nil {
		s.log.Warn("cannot persist broker id", logger.Fields(
			logger.FieldPath, s.path,
			logger.FieldError, err.Error(),
		))
		return err
	}
	s.pending = ""
	s.log.Info("generated broker id", logger.Fields(logger.FieldPath, s.path, "broker_id", id))
	return nil
}

func (s *IDStore) load() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("cannot read broker id file", logger.ErrorFields("load", err))
		}
		return "", false
	}
	id := strings.TrimSpace(string(data))
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 {
		s.log.Warn("ignoring invalid broker id file", logger.Fields(logger.FieldPath, s.path, "content", id))
		return "", false
	}
	return strconv.Itoa(n), true
}

func (s *IDStore) store(id string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return atomicwriter.WriteFile(s.path, []byte(id+"\n"), 0o644)
}

// Resolve merges the layers, fills the broker id from ids when unset and
// derives the connection string. It never writes the id file; see
// IDStore.Commit.
func Resolve(discovered, environment Map, ids *IDStore) Map {
	m := Merge(discovered, environment, Defaults())
	if m[KeyBrokerID] == "" && ids != nil {
		m[KeyBrokerID] = ids.BrokerID()
	}
	DeriveConnectionString(m)
	return m
}
