package discovery

import (
	"context"
	"os"
	"strings"

	"github.com/kbukum/kafkaboot/errors"
	"github.com/kbukum/kafkaboot/logger"
	"github.com/kbukum/kafkaboot/observability"
	"github.com/kbukum/kafkaboot/resolver"
)

// Configuration keys produced by discovery.
const (
	KeyAdvertisedHost   = "KAFKA_ADVERTISED_HOST_NAME"
	KeyZooKeeperHost    = "ZOOKEEPER_HOST"
	KeyConnectionString = "ZOOKEEPER_CONNECTION_STRING"

	// EnvClusterID names the cluster the container runs in.
	EnvClusterID = "CS_CLUSTER_ID"

	// leaderKey holds the leader address between the task join and the
	// registry step. It never reaches the discovered layer.
	leaderKey = "CS_LEADER_ADDRESS"

	advertisedFallback = "127.0.0.1"
)

// MemberRegistry turns a registry application into a connection string.
type MemberRegistry interface {
	ConnectionString(ctx context.Context, leader, app string) (string, error)
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithHostname replaces os.Hostname.
func WithHostname(fn func() (string, error)) Option {
	return func(d *Discoverer) { d.hostname = fn }
}

// WithRegistry sets the registry used by the registry strategy.
func WithRegistry(reg MemberRegistry) Option {
	return func(d *Discoverer) { d.registry = reg }
}

// Discoverer builds and runs the task set for a strategy.
type Discoverer struct {
	cfg      Config
	resolver resolver.Resolver
	registry MemberRegistry
	hostname func() (string, error)
	log      *logger.Logger
}

// New creates a Discoverer.
func New(cfg Config, res resolver.Resolver, log *logger.Logger, opts ...Option) *Discoverer {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	d := &Discoverer{
		cfg:      cfg,
		resolver: res,
		hostname: os.Hostname,
		log:      log.WithComponent("discovery"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tasks returns the resolution tasks for the configured strategy.
func (d *Discoverer) Tasks(env map[string]string) ([]Task, error) {
	switch d.cfg.Strategy {
	case StrategyEnv:
		return nil, nil
	case StrategyDNS:
		tasks := []Task{d.advertisedHostTask(env)}
		if zk, ok := env[KeyZooKeeperHost]; ok && zk != "" {
			tasks = append(tasks, d.task(KeyZooKeeperHost, zk))
		}
		return tasks, nil
	case StrategyRegistry:
		if d.registry == nil {
			return nil, errors.InvalidConfig("registry strategy requires a registry client")
		}
		return []Task{
			d.advertisedHostTask(env),
			d.task(leaderKey, d.leaderName(env)),
		}, nil
	default:
		_, err := ParseStrategy(string(d.cfg.Strategy))
		return nil, errors.InvalidConfig(err.Error())
	}
}

// Discover runs the strategy and returns the discovered layer. Resolution
// failures are absorbed; only an unusable configuration is an error.
func (d *Discoverer) Discover(ctx context.Context, env map[string]string) (map[string]string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanDiscover)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrStrategy, d.cfg.Strategy.String())

	tasks, err := d.Tasks(env)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}

	d.log.Info("discovery started", logger.Fields(
		logger.FieldStrategy, d.cfg.Strategy.String(),
		"tasks", len(tasks),
	))

	discovered := Run(ctx, tasks, d.log)

	if d.cfg.Strategy == StrategyRegistry {
		leader, ok := discovered[leaderKey]
		delete(discovered, leaderKey)
		if !ok {
			d.log.Warn("leader not resolved, skipping registry lookup")
			return discovered, nil
		}

		conn, err := d.registry.ConnectionString(ctx, leader, d.cfg.Application)
		if err != nil {
			fields := logger.Fields(
				logger.FieldLeader, leader,
				logger.FieldError, err.Error(),
			)
			if appErr, ok := errors.AsAppError(err); ok {
				for k, v := range appErr.Details {
					fields[k] = v
				}
				fields[logger.FieldCode] = string(appErr.Code)
			}
			d.log.Warn("registry lookup failed", fields)
			return discovered, nil
		}
		discovered[KeyConnectionString] = conn
	}

	return discovered, nil
}

func (d *Discoverer) task(name, target string) Task {
	return Task{
		Name:     name,
		Target:   target,
		Timeout:  d.cfg.Timeout,
		Resolver: d.resolver,
	}
}

func (d *Discoverer) advertisedHostTask(env map[string]string) Task {
	host := d.cfg.Hostname
	if host == "" {
		h, err := d.hostname()
		if err != nil {
			d.log.Warn("cannot determine hostname", logger.ErrorFields("hostname", err))
		}
		host = h
	}

	t := d.task(KeyAdvertisedHost, "")
	t.Fallback = advertisedFallback
	t.HasFallback = true
	if host != "" {
		t.Target = joinName(host, env[EnvClusterID], d.cfg.DomainSuffix)
	}
	return t
}

func (d *Discoverer) leaderName(env map[string]string) string {
	if d.cfg.LeaderName != "" {
		return d.cfg.LeaderName
	}
	return joinName("leaders", env[EnvClusterID], d.cfg.DomainSuffix)
}

// joinName joins non-empty labels with dots.
func joinName(labels ...string) string {
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.Trim(l, "."); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, ".")
}
