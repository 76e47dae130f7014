// Package registry queries the cluster's service registry for the members of
// an application and turns them into a broker connection string.
//
// The registry is served by the cluster leader over HTTP:
//
//	GET <scheme>://<leader>:<port>/<version>/applications/<app>
//	GET <scheme>://<leader>:<port>/<version>/hosts/<host>
//
// Member host lookups run concurrently. A member whose address cannot be
// resolved is dropped from the result instead of failing the whole lookup.
package registry
