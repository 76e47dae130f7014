package discovery

import "fmt"

// Strategy selects how the broker's addresses are discovered.
type Strategy string

const (
	// StrategyEnv performs no network lookups.
	StrategyEnv Strategy = "env"
	// StrategyDNS resolves names against the local resolver.
	StrategyDNS Strategy = "dns"
	// StrategyRegistry resolves the leader and queries its service registry.
	StrategyRegistry Strategy = "registry"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyEnv, StrategyDNS, StrategyRegistry:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("discovery: unknown strategy %q", s)
	}
}

// String returns the strategy name.
func (s Strategy) String() string { return string(s) }
