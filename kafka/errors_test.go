package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("something else"), false},
		{errors.New("connection refused"), true},
		{errors.New("Connection Reset by peer"), true},
		{errors.New("broken pipe"), true},
		{errors.New("i/o timeout"), true},
		{errors.New("no route to host"), true},
		{errors.New("network is unreachable"), true},
		{errors.New("broker not available"), true},
		{errors.New("dial tcp 127.0.0.1:9092"), true},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.want {
				t.Errorf("IsConnectionError(%q) = %v, want %v", name, got, tt.want)
			}
		})
	}
}

func TestClassifyFailure(t *testing.T) {
	joined := func(err error) error {
		return fmt.Errorf("kafka: no broker answered: %w",
			errors.Join(fmt.Errorf("127.0.0.1:9092: %w", err)))
	}
	tests := []struct {
		name string
		err  error
		want Failure
	}{
		{"nil", nil, FailureNone},
		{"config", fmt.Errorf("%w: bad mechanism", ErrInvalidConfig), FailureConfig},
		{"sasl rejected", joined(kafka.SASLAuthenticationFailed), FailureAuth},
		{"mechanism not enabled", joined(kafka.UnsupportedSASLMechanism), FailureAuth},
		{"cluster acl", joined(kafka.ClusterAuthorizationFailed), FailureAuth},
		{"unknown ca", joined(x509.UnknownAuthorityError{}), FailureTLS},
		{"plaintext listener", joined(tls.RecordHeaderError{Msg: "first record does not look like a TLS handshake"}), FailureTLS},
		{"refused", joined(errors.New("dial tcp 127.0.0.1:9092: connect: connection refused")), FailureUnreachable},
		{"other kafka error", joined(kafka.UnknownTopicOrPartition), FailureUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyFailure(tt.err); got != tt.want {
				t.Errorf("ClassifyFailure(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
