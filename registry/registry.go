package registry

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/kafkaboot/errors"
	"github.com/kbukum/kafkaboot/httpclient"
	"github.com/kbukum/kafkaboot/logger"
	"github.com/kbukum/kafkaboot/observability"
	"github.com/kbukum/kafkaboot/security"
)

const (
	defaultPort       = 8080
	defaultScheme     = "http"
	defaultAPIVersion = "v1"
	defaultTimeout    = 5 * time.Second
)

// Config configures the registry client.
type Config struct {
	Port       int
	Scheme     string
	APIVersion string
	Timeout    time.Duration
	// UserAgent is sent with every request when set.
	UserAgent string
	// TLS applies to the https scheme.
	TLS *security.TLSConfig
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Scheme == "" {
		c.Scheme = defaultScheme
	}
	if c.APIVersion == "" {
		c.APIVersion = defaultAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Record is one application's registry entry.
type Record struct {
	// Port is the container port the application listens on.
	Port int
	// Members are the host identifiers of the application's containers, in
	// registry order.
	Members []string
}

type applicationResponse struct {
	ID            string `json:"id"`
	ContainerPort int    `json:"container_port"`
	Containers    []struct {
		ID   string `json:"id"`
		Host string `json:"host"`
	} `json:"containers"`
}

type hostResponse struct {
	ID      string `json:"id"`
	Address struct {
		Private string `json:"private"`
		Public  string `json:"public"`
	} `json:"address"`
}

// Client talks to the registry API exposed by the cluster leader.
type Client struct {
	http *httpclient.Client
	cfg  Config
	log  *logger.Logger
}

// New creates a registry client.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	headers := map[string]string{}
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}
	hc, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout, Headers: headers, TLS: cfg.TLS})
	if err != nil {
		return nil, err
	}
	return &Client{
		http: hc,
		cfg:  cfg,
		log:  log.WithComponent("registry"),
	}, nil
}

// LookupServiceMembers fetches the port and member hosts of app.
func (c *Client) LookupServiceMembers(ctx context.Context, leader, app string) (rec Record, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanServiceMembers)
	defer func() {
		observability.SetSpanError(ctx, err)
		span.End()
	}()
	observability.SetSpanAttribute(ctx, observability.AttrLeader, leader)
	observability.SetSpanAttribute(ctx, observability.AttrApplication, app)

	resp, err := httpclient.Get[applicationResponse](c.http, ctx, c.endpoint(leader, "applications", app))
	if err != nil {
		return Record{}, withHTTPDetails(
			errors.RegistryError("lookup application "+app, err).WithDetail("leader", leader), err)
	}
	if p := resp.Data.ContainerPort; p < 1 || p > 65535 {
		return Record{}, errors.RegistryError("lookup application "+app,
			fmt.Errorf("invalid container_port %d", p)).
			WithDetail("leader", leader)
	}

	rec = Record{
		Port:    resp.Data.ContainerPort,
		Members: make([]string, 0, len(resp.Data.Containers)),
	}
	for _, container := range resp.Data.Containers {
		rec.Members = append(rec.Members, container.Host)
	}
	observability.SetSpanAttribute(ctx, observability.AttrMembers, len(rec.Members))
	return rec, nil
}

// ResolveHostAddress returns the private address of a registry host.
func (c *Client) ResolveHostAddress(ctx context.Context, leader, host string) (addr string, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanHostAddress)
	defer func() {
		observability.SetSpanError(ctx, err)
		span.End()
	}()
	observability.SetSpanAttribute(ctx, observability.AttrHost, host)

	resp, err := httpclient.Get[hostResponse](c.http, ctx, c.endpoint(leader, "hosts", host))
	if err != nil {
		return "", withHTTPDetails(errors.HostResolutionFailed(host, err), err)
	}
	if resp.Data.Address.Private == "" {
		return "", errors.HostResolutionFailed(host, fmt.Errorf("no private address"))
	}
	return resp.Data.Address.Private, nil
}

// ConnectionString resolves every member of app and joins the usable
// addresses as host:port pairs in member order. Members that fail to resolve
// are skipped. No usable members yields an empty string.
func (c *Client) ConnectionString(ctx context.Context, leader, app string) (string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanConnectionString)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrLeader, leader)

	rec, err := c.LookupServiceMembers(ctx, leader, app)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return "", err
	}

	addrs := make([]string, len(rec.Members))
	g, gctx := errgroup.WithContext(ctx)
	for i, host := range rec.Members {
		g.Go(func() error {
			addr, err := c.ResolveHostAddress(gctx, leader, host)
			if err != nil {
				fields := logger.Fields(
					logger.FieldHost, host,
					logger.FieldError, err.Error(),
				)
				if code, ok := httpclient.Classify(err); ok {
					fields[fieldHTTPError] = code.String()
				}
				c.log.Warn("member address lookup failed", fields)
				return nil
			}
			addrs[i] = addr
			return nil
		})
	}
	_ = g.Wait()

	port := strconv.Itoa(rec.Port)
	pairs := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if addr == "" {
			continue
		}
		pairs = append(pairs, net.JoinHostPort(addr, port))
	}

	if len(pairs) == 0 {
		c.log.Warn("registry returned no usable members, connection string is empty", logger.Fields(
			logger.FieldLeader, leader,
			"application", app,
			"members", len(rec.Members),
		))
		return "", nil
	}
	return strings.Join(pairs, ","), nil
}

func (c *Client) endpoint(leader string, parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return fmt.Sprintf("%s://%s/%s/%s",
		c.cfg.Scheme,
		net.JoinHostPort(leader, strconv.Itoa(c.cfg.Port)),
		c.cfg.APIVersion,
		strings.Join(escaped, "/"),
	)
}

// fieldHTTPError carries the httpclient classification (timeout, not_found...).
const fieldHTTPError = "http_error"

// withHTTPDetails records how the HTTP call failed on appErr.
func withHTTPDetails(appErr *errors.AppError, err error) *errors.AppError {
	code, ok := httpclient.Classify(err)
	if !ok {
		return appErr
	}
	appErr = appErr.WithDetail(fieldHTTPError, code.String())
	if status := httpclient.StatusCode(err); status != 0 {
		appErr = appErr.WithDetail("status", status)
	}
	return appErr
}
