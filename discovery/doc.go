// Package discovery determines the broker's network identity at startup.
//
// Discovery runs a fixed set of resolution tasks concurrently and folds their
// outcomes into a flat map keyed by broker configuration names. Each task
// produces exactly one outcome: a resolved address, its fallback, or nothing.
// Absent values are omitted from the map rather than stored as empty strings.
//
// # Strategies
//
//   - env: no network access; the discovered layer is empty.
//   - dns: resolves the advertised host name and the ZooKeeper host.
//   - registry: resolves the advertised host name and the cluster leader, then
//     asks the leader's registry for the ZooKeeper members.
package discovery
