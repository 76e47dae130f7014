// Package kafka checks that a started broker answers metadata requests.
//
// The probe dials the configured brokers with a kafka-go dialer, optionally
// over TLS and SASL, and reports the cluster's broker list and controller.
// It backs the container health check.
package kafka
