// Command kafkaboot is the container entrypoint of the Kafka broker image.
//
// It discovers the broker's network identity, renders server.properties from
// its template and replaces itself with the broker for the lifetime of the
// container.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
