package kafka

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// Broker identifies one cluster member.
type Broker struct {
	ID   int
	Addr string
	Rack string
}

// ProbeResult is the cluster view of the broker that answered.
type ProbeResult struct {
	// Addr is the configured address that answered.
	Addr       string
	Brokers    []Broker
	Controller Broker
}

// Probe dials the configured brokers in order and returns the metadata of
// the first one that answers.
func Probe(ctx context.Context, cfg Config) (*ProbeResult, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	dialer, err := CreateDialer(&cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var errs []error
	for _, addr := range cfg.Brokers {
		res, err := probeOne(ctx, dialer, addr)
		if err == nil {
			return res, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", addr, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("kafka: no broker answered: %w", stderrors.Join(errs...))
}

func probeOne(ctx context.Context, dialer *kafka.Dialer, addr string) (*ProbeResult, error) {
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	brokers, err := conn.Brokers()
	if err != nil {
		return nil, fmt.Errorf("read brokers: %w", err)
	}
	controller, err := conn.Controller()
	if err != nil {
		return nil, fmt.Errorf("read controller: %w", err)
	}

	res := &ProbeResult{
		Addr:       addr,
		Brokers:    make([]Broker, 0, len(brokers)),
		Controller: toBroker(controller),
	}
	for _, b := range brokers {
		res.Brokers = append(res.Brokers, toBroker(b))
	}
	return res, nil
}

func toBroker(b kafka.Broker) Broker {
	return Broker{
		ID:   b.ID,
		Addr: net.JoinHostPort(b.Host, strconv.Itoa(b.Port)),
		Rack: b.Rack,
	}
}
