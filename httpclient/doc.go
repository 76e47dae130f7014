// Package httpclient provides the HTTP request primitive used by the
// registry client.
//
// Every request is bounded by the client timeout and is never retried.
// Failures are classified (timeout, connection, not found, server...) so
// callers can log and absorb them.
//
//	client, _ := httpclient.New(httpclient.Config{Timeout: 5 * time.Second})
//	resp, err := httpclient.Get[Application](client, ctx, "http://10.0.0.1:8080/v1/applications/zookeeper")
package httpclient
