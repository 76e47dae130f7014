package resolver

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/miekg/dns"

	"github.com/kbukum/kafkaboot/errors"
)

const (
	defaultServer  = "127.0.0.1:53"
	defaultTimeout = 2 * time.Second
)

// Resolver resolves a name to a single address.
type Resolver interface {
	Lookup(ctx context.Context, name string) (string, error)
}

// Func adapts a plain function to the Resolver interface.
type Func func(ctx context.Context, name string) (string, error)

// Lookup calls f.
func (f Func) Lookup(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// Static resolves names from a fixed map. Unknown names have no address.
type Static map[string]string

// Lookup returns the mapped address.
func (s Static) Lookup(_ context.Context, name string) (string, error) {
	if addr, ok := s[name]; ok && addr != "" {
		return addr, nil
	}
	return "", errors.NoAddress(name, nil)
}

// Config configures a DNS resolver.
type Config struct {
	// Server is the resolver address (host:port). Defaults to 127.0.0.1:53.
	Server string
	// Timeout bounds a single query. Defaults to 2s.
	Timeout time.Duration
}

// DNS queries a fixed nameserver over UDP.
type DNS struct {
	client *dns.Client
	server string
}

// NewDNS creates a UDP resolver bound to cfg.Server.
func NewDNS(cfg Config) *DNS {
	if cfg.Server == "" {
		cfg.Server = defaultServer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &DNS{
		client: &dns.Client{Net: "udp", Timeout: cfg.Timeout},
		server: cfg.Server,
	}
}

// Lookup issues one A query for name and returns the first address.
func (r *DNS) Lookup(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.NoAddress(name, fmt.Errorf("empty name"))
	}

	ctx, cancel := context.WithTimeout(ctx, r.client.Timeout)
	defer cancel()

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		if isTimeout(err) || ctx.Err() != nil {
			return "", errors.ResolutionTimeout(name, err)
		}
		return "", errors.NoAddress(name, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", errors.NoAddress(name, fmt.Errorf("rcode %s", dns.RcodeToString[resp.Rcode]))
	}

	if addr := firstAddress(resp.Answer); addr != "" {
		return addr, nil
	}
	return "", errors.NoAddress(name, nil)
}

// firstAddress returns the first A record in the answer section.
// CNAME records that precede it are skipped.
func firstAddress(answer []dns.RR) string {
	for _, rr := range answer {
		if a, ok := rr.(*dns.A); ok && a.A != nil {
			return a.A.String()
		}
	}
	return ""
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

var (
	_ Resolver = (*DNS)(nil)
	_ Resolver = Func(nil)
	_ Resolver = Static(nil)
)
