package resolver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/kbukum/kafkaboot/errors"
)

// startServer runs an in-process UDP nameserver and returns its address.
func startServer(t *testing.T, handler dns.HandlerFunc) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}

func answer(addrs ...string) dns.HandlerFunc {
	return func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		for _, a := range addrs {
			rr, err := dns.NewRR(r.Question[0].Name + " 60 IN A " + a)
			if err == nil {
				m.Answer = append(m.Answer, rr)
			}
		}
		_ = w.WriteMsg(m)
	}
}

func TestDNS_Lookup_FirstAddress(t *testing.T) {
	addr := startServer(t, answer("10.0.0.5", "10.0.0.6"))
	r := NewDNS(Config{Server: addr, Timeout: time.Second})

	got, err := r.Lookup(context.Background(), "broker-1.c1.containership")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10.0.0.5" {
		t.Errorf("expected 10.0.0.5, got %q", got)
	}
}

func TestDNS_Lookup_SkipsCNAME(t *testing.T) {
	addr := startServer(t, func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		cname, _ := dns.NewRR(r.Question[0].Name + " 60 IN CNAME zk.internal.")
		a, _ := dns.NewRR("zk.internal. 60 IN A 10.1.1.1")
		m.Answer = append(m.Answer, cname, a)
		_ = w.WriteMsg(m)
	})
	r := NewDNS(Config{Server: addr, Timeout: time.Second})

	got, err := r.Lookup(context.Background(), "zk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10.1.1.1" {
		t.Errorf("expected 10.1.1.1, got %q", got)
	}
}

func TestDNS_Lookup_Timeout(t *testing.T) {
	addr := startServer(t, func(w dns.ResponseWriter, r *dns.Msg) {})
	r := NewDNS(Config{Server: addr, Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := r.Lookup(context.Background(), "silent.example")
	if !errors.HasCode(err, errors.ErrCodeResolutionTimeout) {
		t.Fatalf("expected RESOLUTION_TIMEOUT, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("lookup not bounded by timeout: %v", elapsed)
	}
}

func TestDNS_Lookup_NXDomain(t *testing.T) {
	addr := startServer(t, func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetRcode(r, dns.RcodeNameError)
		_ = w.WriteMsg(m)
	})
	r := NewDNS(Config{Server: addr, Timeout: time.Second})

	_, err := r.Lookup(context.Background(), "missing.example")
	if !errors.HasCode(err, errors.ErrCodeNoAddress) {
		t.Fatalf("expected NO_ADDRESS, got %v", err)
	}
}

func TestDNS_Lookup_EmptyAnswer(t *testing.T) {
	addr := startServer(t, answer())
	r := NewDNS(Config{Server: addr, Timeout: time.Second})

	_, err := r.Lookup(context.Background(), "empty.example")
	if !errors.HasCode(err, errors.ErrCodeNoAddress) {
		t.Fatalf("expected NO_ADDRESS, got %v", err)
	}
}

func TestDNS_Lookup_EmptyName(t *testing.T) {
	r := NewDNS(Config{})
	if _, err := r.Lookup(context.Background(), ""); !errors.HasCode(err, errors.ErrCodeNoAddress) {
		t.Fatalf("expected NO_ADDRESS, got %v", err)
	}
}

func TestNewDNS_Defaults(t *testing.T) {
	r := NewDNS(Config{})
	if r.server != "127.0.0.1:53" {
		t.Errorf("expected default server, got %q", r.server)
	}
	if r.client.Timeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", r.client.Timeout)
	}
}

func TestStatic(t *testing.T) {
	s := Static{"zk": "10.0.0.9", "blank": ""}
	if got, err := s.Lookup(context.Background(), "zk"); err != nil || got != "10.0.0.9" {
		t.Errorf("unexpected result %q, %v", got, err)
	}
	if _, err := s.Lookup(context.Background(), "blank"); err == nil {
		t.Error("expected error for blank entry")
	}
	if _, err := s.Lookup(context.Background(), "other"); err == nil {
		t.Error("expected error for unknown name")
	}
}
