package brokerconf

import (
	"maps"
	"slices"
	"strings"
)

// Broker configuration keys with built-in handling.
const (
	KeyBrokerID                     = "KAFKA_BROKER_ID"
	KeyPort                         = "KAFKA_PORT"
	KeyAdvertisedPort               = "KAFKA_ADVERTISED_PORT"
	KeyDeleteTopicEnable            = "KAFKA_DELETE_TOPIC_ENABLE"
	KeyGroupMaxSessionTimeoutMs     = "GROUP_MAX_SESSION_TIMEOUT_MS"
	KeyZooKeeperChroot              = "ZOOKEEPER_CHROOT"
	KeyZooKeeperHost                = "ZOOKEEPER_HOST"
	KeyZooKeeperPort                = "ZOOKEEPER_PORT"
	KeyZooKeeperConnectionTimeoutMs = "ZOOKEEPER_CONNECTION_TIMEOUT_MS"
	KeyZooKeeperSessionTimeoutMs    = "ZOOKEEPER_SESSION_TIMEOUT_MS"
	KeyZooKeeperConnectionString    = "ZOOKEEPER_CONNECTION_STRING"
)

// Map is a flat broker configuration.
type Map map[string]string

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Defaults returns the built-in broker defaults. The broker id is not part
// of it; see IDStore.
func Defaults() Map {
	return Map{
		KeyPort:                         "9092",
		KeyAdvertisedPort:               "9092",
		KeyDeleteTopicEnable:            "false",
		KeyGroupMaxSessionTimeoutMs:     "30000",
		KeyZooKeeperChroot:              "/kafka",
		KeyZooKeeperHost:                "localhost",
		KeyZooKeeperPort:                "2181",
		KeyZooKeeperConnectionTimeoutMs: "6000",
		KeyZooKeeperSessionTimeoutMs:    "6000",
	}
}

// lookupKeys carry a name in the environment that discovery resolves. The
// resolved address replaces the name it came from.
var lookupKeys = map[string]bool{
	KeyZooKeeperHost: true,
}

// Merge combines the layers: a non-empty environment value overrides the
// discovered value, and defaults only fill keys neither layer set. Empty
// discovered values are kept. For lookup keys such as ZOOKEEPER_HOST the
// discovered address wins, since the environment only named what to resolve.
func Merge(discovered, environment, defaults Map) Map {
	out := make(Map, len(discovered)+len(environment)+len(defaults))
	maps.Copy(out, defaults)
	maps.Copy(out, discovered)
	for k, v := range environment {
		if v == "" {
			continue
		}
		if _, resolved := discovered[k]; resolved && lookupKeys[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// DeriveConnectionString sets ZOOKEEPER_CONNECTION_STRING from host, port and
// chroot when the key is absent. A present value, even empty, is kept.
// It reports whether the key was derived.
func DeriveConnectionString(m Map) bool {
	if _, ok := m[KeyZooKeeperConnectionString]; ok {
		return false
	}
	host := m[KeyZooKeeperHost]
	if host == "" {
		return false
	}

	conn := host
	if port := m[KeyZooKeeperPort]; port != "" {
		conn += ":" + port
	}
	conn += normalizeChroot(m[KeyZooKeeperChroot])

	m[KeyZooKeeperConnectionString] = conn
	return true
}

func normalizeChroot(chroot string) string {
	chroot = strings.Trim(chroot, "/")
	if chroot == "" {
		return ""
	}
	return "/" + chroot
}

// Environ converts KEY=VALUE pairs, as returned by os.Environ, into a Map.
func Environ(pairs []string) Map {
	m := make(Map, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		m[k] = v
	}
	return m
}
