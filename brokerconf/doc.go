// Package brokerconf builds the flat configuration map the broker template is
// rendered from.
//
// Three layers are merged: discovered values, the process environment and
// built-in defaults. A non-empty environment value always wins, then the
// discovered value, then the default. The broker id comes from an IDStore
// when no layer provides one, and the ZooKeeper connection string is derived
// from its parts when nothing set it explicitly.
package brokerconf
