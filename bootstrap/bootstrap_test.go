package bootstrap

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"

	"github.com/kbukum/kafkaboot/brokerconf"
	"github.com/kbukum/kafkaboot/config"
	"github.com/kbukum/kafkaboot/errors"
	"github.com/kbukum/kafkaboot/logger"
	"github.com/kbukum/kafkaboot/observability"
	"github.com/kbukum/kafkaboot/observability/observabilitytest"
	"github.com/kbukum/kafkaboot/process"
)

type staticDiscoverer struct {
	values map[string]string
	err    error
	env    map[string]string
}

func (d *staticDiscoverer) Discover(_ context.Context, env map[string]string) (map[string]string, error) {
	d.env = env
	out := make(map[string]string, len(d.values))
	for k, v := range d.values {
		out[k] = v
	}
	return out, d.err
}

type fakeSpawner struct {
	calls    []process.Command
	exitCode int
	err      error
}

func (f *fakeSpawner) Launch(_ context.Context, cmd process.Command) (*process.Result, error) {
	f.calls = append(f.calls, cmd)
	if f.err != nil {
		return nil, f.err
	}
	return &process.Result{ExitCode: f.exitCode}, nil
}

const template = "broker.id={{KAFKA_BROKER_ID}}\n" +
	"port={{KAFKA_PORT}} host={{KAFKA_ADVERTISED_HOST_NAME}}\n" +
	"zookeeper.connect={{ZOOKEEPER_CONNECTION_STRING}}\n"

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	s := &config.Settings{}
	s.ApplyDefaults()
	s.Paths.Template = filepath.Join(dir, "server.properties.template")
	s.Paths.Output = filepath.Join(dir, "server.properties")
	s.Paths.BrokerBinary = "/kafka/bin/kafka-server-start.sh"
	s.Paths.BrokerIDFile = ""
	if err := os.WriteFile(s.Paths.Template, []byte(template), 0o644); err != nil {
		t.Fatal(err)
	}
	return s
}

func newTest(s *config.Settings, d Discoverer, sp process.Spawner, opts ...Option) *Bootstrapper {
	base := []Option{
		WithLogger(logger.Nop()),
		WithSpawner(sp),
		WithEnvironment(map[string]string{}),
		WithIDStore(brokerconf.NewIDStore("", nil, brokerconf.WithRandom(func() int { return 7 }))),
	}
	return New(s, d, append(base, opts...)...)
}

func TestRun_Success(t *testing.T) {
	s := testSettings(t)
	sp := &fakeSpawner{}
	b := newTest(s, &staticDiscoverer{values: map[string]string{
		"KAFKA_ADVERTISED_HOST_NAME": "10.0.0.5",
	}}, sp)

	if code := b.Run(context.Background()); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	if len(sp.calls) != 1 {
		t.Fatalf("expected exactly one spawn, got %d", len(sp.calls))
	}
	cmd := sp.calls[0]
	if cmd.Binary != s.Paths.BrokerBinary {
		t.Errorf("unexpected binary %s", cmd.Binary)
	}
	if len(cmd.Args) != 1 || cmd.Args[0] != s.Paths.Output {
		t.Errorf("config path must be the sole argument, got %v", cmd.Args)
	}
	if cmd.GracePeriod != s.Launch.GracePeriod {
		t.Errorf("grace period not forwarded: %v", cmd.GracePeriod)
	}

	data, err := os.ReadFile(s.Paths.Output)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	want := "broker.id=7\nport=9092 host=10.0.0.5\nzookeeper.connect=localhost:2181/kafka\n"
	if string(data) != want {
		t.Errorf("unexpected config:\n%s\nwant:\n%s", data, want)
	}
}

func TestRun_PropagatesBrokerExitCode(t *testing.T) {
	sp := &fakeSpawner{exitCode: 143}
	b := newTest(testSettings(t), &staticDiscoverer{}, sp)
	if code := b.Run(context.Background()); code != 143 {
		t.Errorf("expected broker exit code 143, got %d", code)
	}
}

func TestRun_WriteFailure(t *testing.T) {
	s := testSettings(t)
	s.Paths.Output = filepath.Join(t.TempDir(), "missing-dir", "server.properties")
	sp := &fakeSpawner{}

	b := newTest(s, &staticDiscoverer{}, sp)
	if code := b.Run(context.Background()); code != ExitFailure {
		t.Errorf("expected exit %d, got %d", ExitFailure, code)
	}
	if len(sp.calls) != 0 {
		t.Error("broker must not be spawned when the config cannot be written")
	}
}

func TestRun_WriteFailureInjected(t *testing.T) {
	sp := &fakeSpawner{}
	b := newTest(testSettings(t), &staticDiscoverer{}, sp,
		WithWriteFile(func(string, []byte) error { return stderrors.New("read-only file system") }))

	if code := b.Run(context.Background()); code != ExitFailure {
		t.Errorf("expected exit 1, got %d", code)
	}
	if len(sp.calls) != 0 {
		t.Error("broker must not be spawned")
	}
}

func TestRun_TemplateReadFailure(t *testing.T) {
	s := testSettings(t)
	s.Paths.Template = filepath.Join(t.TempDir(), "absent.template")
	sp := &fakeSpawner{}

	b := newTest(s, &staticDiscoverer{}, sp)
	if code := b.Run(context.Background()); code != ExitFailure {
		t.Errorf("expected exit 1, got %d", code)
	}
	if len(sp.calls) != 0 {
		t.Error("broker must not be spawned")
	}
	if _, err := os.Stat(s.Paths.Output); !os.IsNotExist(err) {
		t.Error("config must not be written")
	}

	_, err := b.Prepare(context.Background())
	if !errors.HasCode(err, errors.ErrCodeTemplateRead) {
		t.Errorf("expected TEMPLATE_READ_FAILED, got %v", err)
	}
}

func TestRun_PersistsBrokerIDOnlyAfterWrite(t *testing.T) {
	idFile := filepath.Join(t.TempDir(), "data", ".broker-id")
	store := func() Option {
		return WithIDStore(brokerconf.NewIDStore(idFile, nil, brokerconf.WithRandom(func() int { return 21 })))
	}
	noFile := func(stage string) {
		t.Helper()
		if _, err := os.Stat(idFile); !os.IsNotExist(err) {
			t.Fatalf("%s: broker id file must not exist, stat err: %v", stage, err)
		}
	}

	s := testSettings(t)
	res, err := newTest(s, &staticDiscoverer{}, &fakeSpawner{}, store()).Prepare(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Config[brokerconf.KeyBrokerID] != "21" {
		t.Errorf("expected generated id 21, got %q", res.Config[brokerconf.KeyBrokerID])
	}
	noFile("prepare")

	broken := testSettings(t)
	broken.Paths.Template = filepath.Join(t.TempDir(), "absent.template")
	if code := newTest(broken, &staticDiscoverer{}, &fakeSpawner{}, store()).Run(context.Background()); code != ExitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	noFile("template read failure")

	sp := &fakeSpawner{}
	if code := newTest(s, &staticDiscoverer{}, sp, store()).Run(context.Background()); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	data, err := os.ReadFile(idFile)
	if err != nil {
		t.Fatalf("broker id not persisted after a successful start: %v", err)
	}
	if strings.TrimSpace(string(data)) != "21" {
		t.Errorf("unexpected id file content %q", data)
	}
}

func TestRun_MissingPlaceholder(t *testing.T) {
	s := testSettings(t)
	if err := os.WriteFile(s.Paths.Template, []byte("x={{NOT_CONFIGURED}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	sp := &fakeSpawner{}
	b := newTest(s, &staticDiscoverer{}, sp)

	if code := b.Run(context.Background()); code != ExitFailure {
		t.Errorf("expected exit 1, got %d", code)
	}
	if len(sp.calls) != 0 {
		t.Error("broker must not be spawned")
	}

	s.Render.MissingKeyPolicy = config.PolicyEmpty
	res, err := newTest(s, &staticDiscoverer{}, sp).Prepare(context.Background())
	if err != nil {
		t.Fatalf("empty policy should render: %v", err)
	}
	if res.Document != "x=" {
		t.Errorf("unexpected document %q", res.Document)
	}
}

func TestRun_SpawnFailure(t *testing.T) {
	sp := &fakeSpawner{err: errors.Spawn("/kafka/bin/kafka-server-start.sh", os.ErrNotExist)}
	b := newTest(testSettings(t), &staticDiscoverer{}, sp)
	if code := b.Run(context.Background()); code != ExitFailure {
		t.Errorf("expected exit 1, got %d", code)
	}
}

func TestRun_DiscoveryConfigError(t *testing.T) {
	sp := &fakeSpawner{}
	b := newTest(testSettings(t), &staticDiscoverer{err: errors.InvalidConfig("bad strategy")}, sp)
	if code := b.Run(context.Background()); code != ExitFailure {
		t.Errorf("expected exit 1, got %d", code)
	}
	if len(sp.calls) != 0 {
		t.Error("broker must not be spawned")
	}
}

func TestPrepare_Precedence(t *testing.T) {
	env := map[string]string{
		"KAFKA_ADVERTISED_HOST_NAME": "broker.example",
		"KAFKA_PORT":                 "",
		"KAFKA_BROKER_ID":            "3",
	}
	d := &staticDiscoverer{values: map[string]string{
		"KAFKA_ADVERTISED_HOST_NAME":  "10.0.0.5",
		"ZOOKEEPER_CONNECTION_STRING": "10.0.1.1:2181,10.0.1.2:2181",
	}}
	b := newTest(testSettings(t), d, &fakeSpawner{}, WithEnvironment(env))

	res, err := b.Prepare(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "broker.id=3\nport=9092 host=broker.example\nzookeeper.connect=10.0.1.1:2181,10.0.1.2:2181\n"
	if res.Document != want {
		t.Errorf("unexpected document:\n%s", res.Document)
	}
	if d.env["KAFKA_BROKER_ID"] != "3" {
		t.Error("discoverer should receive the environment layer")
	}
}

func TestPrepare_RunIDOnLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "kafkaboot", &buf)

	b := newTest(testSettings(t), &staticDiscoverer{}, &fakeSpawner{}, WithLogger(log), WithRunID("run-123"))
	if _, err := b.Prepare(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.RunID() != "run-123" {
		t.Errorf("unexpected run id %s", b.RunID())
	}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if !strings.Contains(line, `"run_id":"run-123"`) {
			t.Errorf("log line without run id: %s", line)
		}
	}
}

func TestNew_GeneratesRunID(t *testing.T) {
	a := newTest(testSettings(t), &staticDiscoverer{}, &fakeSpawner{})
	b := newTest(testSettings(t), &staticDiscoverer{}, &fakeSpawner{})
	if a.RunID() == "" || a.RunID() == b.RunID() {
		t.Errorf("expected distinct run ids, got %q and %q", a.RunID(), b.RunID())
	}
}

func TestRun_Spans(t *testing.T) {
	sr := observabilitytest.Recorder(t)

	b := newTest(testSettings(t), &staticDiscoverer{}, &fakeSpawner{exitCode: 143}, WithRunID("run-1"))
	b.Run(context.Background())

	runs := observabilitytest.Named(sr, observability.SpanRun)
	if len(runs) != 1 {
		t.Fatalf("expected one run span, got %d", len(runs))
	}
	run := runs[0]
	if observabilitytest.Attr(run, observability.AttrRunID) != "run-1" {
		t.Errorf("unexpected run id %q", observabilitytest.Attr(run, observability.AttrRunID))
	}
	if observabilitytest.Attr(run, logger.FieldExitCode) != "143" {
		t.Errorf("expected broker exit code on the span, got %q", observabilitytest.Attr(run, logger.FieldExitCode))
	}

	prepares := observabilitytest.Named(sr, observability.SpanPrepare)
	if len(prepares) != 1 || prepares[0].Parent().SpanID() != run.SpanContext().SpanID() {
		t.Fatal("expected prepare span under the run span")
	}
}

func TestRun_SpanMarksFailure(t *testing.T) {
	sr := observabilitytest.Recorder(t)

	s := testSettings(t)
	s.Paths.Template = filepath.Join(t.TempDir(), "absent.template")
	newTest(s, &staticDiscoverer{}, &fakeSpawner{}).Run(context.Background())

	for _, name := range []string{observability.SpanRun, observability.SpanPrepare} {
		spans := observabilitytest.Named(sr, name)
		if len(spans) != 1 {
			t.Fatalf("expected one %s span, got %d", name, len(spans))
		}
		if spans[0].Status().Code != codes.Error {
			t.Errorf("%s span should be marked failed", name)
		}
	}
}
