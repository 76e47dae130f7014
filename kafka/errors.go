package kafka

import (
	"crypto/tls"
	"crypto/x509"
	stderrors "errors"
	"strings"

	"github.com/segmentio/kafka-go"
)

// ErrInvalidConfig wraps probe settings rejected before any dial.
var ErrInvalidConfig = stderrors.New("kafka: invalid probe config")

// Failure says why a readiness check failed. It is logged by the health
// check so an operator can tell a down broker from bad credentials.
type Failure string

const (
	FailureNone        Failure = ""
	FailureConfig      Failure = "config"
	FailureAuth        Failure = "auth"
	FailureTLS         Failure = "tls"
	FailureUnreachable Failure = "unreachable"
	FailureUnknown     Failure = "unknown"
)

// ClassifyFailure maps a Probe error to a Failure.
func ClassifyFailure(err error) Failure {
	switch {
	case err == nil:
		return FailureNone
	case stderrors.Is(err, ErrInvalidConfig):
		return FailureConfig
	case IsAuthError(err):
		return FailureAuth
	case IsTLSError(err):
		return FailureTLS
	case IsConnectionError(err):
		return FailureUnreachable
	default:
		return FailureUnknown
	}
}

// IsAuthError reports a SASL or authorization rejection by the broker.
func IsAuthError(err error) bool {
	var kerr kafka.Error
	if !stderrors.As(err, &kerr) {
		return false
	}
	switch kerr {
	case kafka.SASLAuthenticationFailed,
		kafka.UnsupportedSASLMechanism,
		kafka.IllegalSASLState,
		kafka.ClusterAuthorizationFailed,
		kafka.TopicAuthorizationFailed:
		return true
	}
	return false
}

// IsTLSError reports a failed TLS handshake or certificate check.
func IsTLSError(err error) bool {
	if err == nil {
		return false
	}
	var (
		verifyErr   *tls.CertificateVerificationError
		unknownCA   x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidErr  x509.CertificateInvalidError
		headerErr   tls.RecordHeaderError
	)
	if stderrors.As(err, &verifyErr) ||
		stderrors.As(err, &unknownCA) ||
		stderrors.As(err, &hostnameErr) ||
		stderrors.As(err, &invalidErr) ||
		stderrors.As(err, &headerErr) {
		return true
	}
	// Handshake errors that lost their type on the way up still carry the
	// crypto package prefix.
	msg := err.Error()
	return strings.Contains(msg, "tls: ") || strings.Contains(msg, "x509: ")
}

// IsConnectionError checks if a Kafka error is a connection-level error.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	connectionPatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"broker not available",
		"connection closed",
		"dial tcp",
	}
	for _, p := range connectionPatterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}
