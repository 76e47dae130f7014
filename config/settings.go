package config

import (
	"time"

	"github.com/kbukum/kafkaboot/logger"
	"github.com/kbukum/kafkaboot/security"
	"github.com/kbukum/kafkaboot/validation"
)

// Strategy names accepted by discovery.strategy.
const (
	StrategyEnv      = "env"
	StrategyDNS      = "dns"
	StrategyRegistry = "registry"
)

// Missing placeholder policies accepted by render.missing_key_policy.
const (
	PolicyError = "error"
	PolicyKeep  = "keep"
	PolicyEmpty = "empty"
)

// Settings is the complete bootstrapper configuration.
type Settings struct {
	Logging   logger.Config     `yaml:"logging" mapstructure:"logging"`
	Paths     PathSettings      `yaml:"paths" mapstructure:"paths"`
	Discovery DiscoverySettings `yaml:"discovery" mapstructure:"discovery"`
	Registry  RegistrySettings  `yaml:"registry" mapstructure:"registry"`
	Render    RenderSettings    `yaml:"render" mapstructure:"render"`
	Launch    LaunchSettings    `yaml:"launch" mapstructure:"launch"`
	Probe     ProbeSettings     `yaml:"probe" mapstructure:"probe"`
	Tracing   TracingSettings   `yaml:"tracing" mapstructure:"tracing"`
}

// PathSettings locates the files the bootstrapper reads, writes and runs.
type PathSettings struct {
	Template     string `yaml:"template" mapstructure:"template" validate:"required"`
	Output       string `yaml:"output" mapstructure:"output" validate:"required"`
	BrokerBinary string `yaml:"broker_binary" mapstructure:"broker_binary" validate:"required"`
	// BrokerIDFile persists a generated broker id. "none" disables persistence.
	BrokerIDFile string `yaml:"broker_id_file" mapstructure:"broker_id_file"`
}

// BrokerIDFileDisabled turns off broker id persistence when used as
// paths.broker_id_file.
const BrokerIDFileDisabled = "none"

// BrokerIDPath returns the broker id file, or "" when persistence is off.
func (p PathSettings) BrokerIDPath() string {
	if p.BrokerIDFile == BrokerIDFileDisabled {
		return ""
	}
	return p.BrokerIDFile
}

// DiscoverySettings configures the address discovery tasks.
type DiscoverySettings struct {
	Strategy     string        `yaml:"strategy" mapstructure:"strategy" validate:"oneof=env dns registry"`
	ResolverAddr string        `yaml:"resolver_addr" mapstructure:"resolver_addr" validate:"hostname_port"`
	DNSTimeout   time.Duration `yaml:"dns_timeout" mapstructure:"dns_timeout" validate:"gt=0"`
	DomainSuffix string        `yaml:"domain_suffix" mapstructure:"domain_suffix"`
	// LeaderName overrides the well-known leader name. Empty derives
	// leaders.<cluster id>.<domain suffix>.
	LeaderName string `yaml:"leader_name" mapstructure:"leader_name"`
	// Hostname overrides os.Hostname for the advertised host lookup.
	Hostname string `yaml:"hostname" mapstructure:"hostname"`
}

// RegistrySettings configures the service registry client.
type RegistrySettings struct {
	Port        int           `yaml:"port" mapstructure:"port" validate:"gt=0,max=65535"`
	Scheme      string        `yaml:"scheme" mapstructure:"scheme" validate:"oneof=http https"`
	APIVersion  string        `yaml:"api_version" mapstructure:"api_version" validate:"required"`
	Application string        `yaml:"application" mapstructure:"application"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	// TLS applies when scheme is https.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// RenderSettings configures the template renderer.
type RenderSettings struct {
	MissingKeyPolicy string `yaml:"missing_key_policy" mapstructure:"missing_key_policy" validate:"oneof=error keep empty"`
}

// LaunchSettings configures the broker process.
type LaunchSettings struct {
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period" validate:"gt=0"`
}

// ProbeSettings configures the broker readiness probe.
type ProbeSettings struct {
	Brokers     []string      `yaml:"brokers" mapstructure:"brokers" validate:"min=1,dive,hostname_port"`
	DialTimeout time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout" validate:"gt=0"`

	EnableTLS bool               `yaml:"enable_tls" mapstructure:"enable_tls"`
	TLS       security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	EnableSASL    bool   `yaml:"enable_sasl" mapstructure:"enable_sasl"`
	SASLMechanism string `yaml:"sasl_mechanism" mapstructure:"sasl_mechanism" validate:"omitempty,oneof=PLAIN SCRAM-SHA-256 SCRAM-SHA-512"`
	Username      string `yaml:"username" mapstructure:"username" validate:"required_if=EnableSASL true"`
	Password      string `yaml:"password" mapstructure:"password"`
}

// TracingSettings configures OpenTelemetry span export. An empty endpoint
// turns tracing off.
type TracingSettings struct {
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills zero-valued fields with the container layout defaults.
func (s *Settings) ApplyDefaults() {
	s.Logging.ApplyDefaults()

	if s.Paths.Template == "" {
		s.Paths.Template = "/kafka/config/server.properties.template"
	}
	if s.Paths.Output == "" {
		s.Paths.Output = "/kafka/config/server.properties"
	}
	if s.Paths.BrokerBinary == "" {
		s.Paths.BrokerBinary = "/kafka/bin/kafka-server-start.sh"
	}
	if s.Paths.BrokerIDFile == "" {
		s.Paths.BrokerIDFile = "/kafka/data/.broker-id"
	}

	if s.Discovery.Strategy == "" {
		s.Discovery.Strategy = StrategyDNS
	}
	if s.Discovery.ResolverAddr == "" {
		s.Discovery.ResolverAddr = "127.0.0.1:53"
	}
	if s.Discovery.DNSTimeout == 0 {
		s.Discovery.DNSTimeout = 2 * time.Second
	}
	if s.Discovery.DomainSuffix == "" {
		s.Discovery.DomainSuffix = "containership"
	}

	if s.Registry.Port == 0 {
		s.Registry.Port = 8080
	}
	if s.Registry.Scheme == "" {
		s.Registry.Scheme = "http"
	}
	if s.Registry.APIVersion == "" {
		s.Registry.APIVersion = "v1"
	}
	if s.Registry.Application == "" {
		s.Registry.Application = "zookeeper"
	}
	if s.Registry.Timeout == 0 {
		s.Registry.Timeout = 5 * time.Second
	}

	if s.Render.MissingKeyPolicy == "" {
		s.Render.MissingKeyPolicy = PolicyError
	}

	if s.Launch.GracePeriod == 0 {
		s.Launch.GracePeriod = 10 * time.Second
	}

	if len(s.Probe.Brokers) == 0 {
		s.Probe.Brokers = []string{"localhost:9092"}
	}
	if s.Probe.DialTimeout == 0 {
		s.Probe.DialTimeout = 5 * time.Second
	}

	if s.Tracing.SampleRate == 0 {
		s.Tracing.SampleRate = 1.0
	}
}

// Validate checks field rules and cross-field consistency.
func (s *Settings) Validate() error {
	v := validation.New()
	if err := s.Logging.Validate(); err != nil {
		v.AddError("logging", err.Error())
	}
	v.Merge(validation.Validate(s))
	v.Check(s.Discovery.Strategy != StrategyRegistry || s.Registry.Application != "",
		"registry.application", "is required for the registry strategy")
	if err := s.Registry.TLS.Validate(); err != nil {
		v.AddError("registry.tls", err.Error())
	}
	if err := s.Probe.TLS.Validate(); err != nil {
		v.AddError("probe.tls", err.Error())
	}
	return v.Error()
}
