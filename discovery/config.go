package discovery

import (
	"fmt"
	"time"
)

const (
	defaultDomainSuffix = "containership"
	defaultApplication  = "zookeeper"
	defaultTaskTimeout  = 2 * time.Second
)

// Config configures a Discoverer.
type Config struct {
	// Strategy selects the task set. Defaults to dns.
	Strategy Strategy `mapstructure:"strategy"`

	// DomainSuffix terminates the cluster-internal names. Default: containership.
	DomainSuffix string `mapstructure:"domain_suffix"`

	// LeaderName overrides the well-known leader name. Empty derives
	// leaders.<cluster id>.<domain suffix>.
	LeaderName string `mapstructure:"leader_name"`

	// Hostname overrides the local host name.
	Hostname string `mapstructure:"hostname"`

	// Application is the registry application holding the ZooKeeper members.
	Application string `mapstructure:"application"`

	// Timeout bounds every resolution task. Default: 2s.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Strategy == "" {
		c.Strategy = StrategyDNS
	}
	if c.DomainSuffix == "" {
		c.DomainSuffix = defaultDomainSuffix
	}
	if c.Application == "" {
		c.Application = defaultApplication
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTaskTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("discovery: timeout must be positive")
	}
	return nil
}
