package bootstrap

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/moby/sys/atomicwriter"

	"github.com/kbukum/kafkaboot/brokerconf"
	"github.com/kbukum/kafkaboot/config"
	"github.com/kbukum/kafkaboot/errors"
	"github.com/kbukum/kafkaboot/logger"
	"github.com/kbukum/kafkaboot/observability"
	"github.com/kbukum/kafkaboot/process"
	"github.com/kbukum/kafkaboot/render"
)

// ExitFailure is returned when the broker could not be configured or started.
const ExitFailure = 1

// Discoverer produces the discovered configuration layer.
type Discoverer interface {
	Discover(ctx context.Context, env map[string]string) (map[string]string, error)
}

// Result is the outcome of Prepare.
type Result struct {
	RunID      string
	Discovered brokerconf.Map
	Config     brokerconf.Map
	Document   string
	Summary    *Summary
}

// Bootstrapper runs the container startup sequence.
type Bootstrapper struct {
	settings   *config.Settings
	discoverer Discoverer

	env       brokerconf.Map
	ids       *brokerconf.IDStore
	spawner   process.Spawner
	readFile  func(path string) ([]byte, error)
	writeFile func(path string, data []byte) error
	runID     string
	log       *logger.Logger
}

// New creates a Bootstrapper. settings must already be defaulted and
// validated.
func New(settings *config.Settings, discoverer Discoverer, opts ...Option) *Bootstrapper {
	b := &Bootstrapper{
		settings:   settings,
		discoverer: discoverer,
		readFile:   os.ReadFile,
		writeFile:  writeConfig,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.log == nil {
		b.log = logger.GetGlobalLogger()
	}
	if b.runID == "" {
		b.runID = uuid.NewString()
	}
	b.log = b.log.WithComponent("bootstrap").WithFields(logger.Fields(logger.FieldRunID, b.runID))

	if b.env == nil {
		b.env = brokerconf.Environ(os.Environ())
	}
	if b.ids == nil {
		b.ids = brokerconf.NewIDStore(settings.Paths.BrokerIDPath(), b.log)
	}
	if b.spawner == nil {
		b.spawner = process.NewLauncher(b.log)
	}
	return b
}

// RunID returns the identifier attached to this run's log lines.
func (b *Bootstrapper) RunID() string { return b.runID }

// Prepare discovers, merges and renders the broker configuration without
// writing it. A generated broker id is not persisted here; Run does that once
// the config is on disk.
func (b *Bootstrapper) Prepare(ctx context.Context) (res *Result, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanPrepare)
	defer func() {
		observability.SetSpanError(ctx, err)
		span.End()
	}()
	observability.SetSpanAttribute(ctx, observability.AttrRunID, b.runID)

	start := time.Now()

	discovered, err := b.discoverer.Discover(ctx, b.env)
	if err != nil {
		return nil, err
	}

	cfg := brokerconf.Resolve(brokerconf.Map(discovered), b.env, b.ids)

	tpl, err := b.readFile(b.settings.Paths.Template)
	if err != nil {
		return nil, errors.TemplateRead(b.settings.Paths.Template, err)
	}

	policy, err := render.ParsePolicy(b.settings.Render.MissingKeyPolicy)
	if err != nil {
		return nil, errors.InvalidConfig(err.Error())
	}
	doc, err := render.Render(string(tpl), cfg, policy)
	if err != nil {
		return nil, err
	}

	res = &Result{
		RunID:      b.runID,
		Discovered: brokerconf.Map(discovered),
		Config:     cfg,
		Document:   doc,
	}

	summary := NewSummary(b.runID, b.settings.Discovery.Strategy)
	summary.SetDuration(time.Since(start))
	summary.Track(res, b.env, render.Placeholders(string(tpl)))
	summary.Log(b.log)
	res.Summary = summary

	return res, nil
}

// Run prepares and writes the configuration, then launches the broker and
// waits for it. It returns the process exit code.
func (b *Bootstrapper) Run(ctx context.Context) int {
	ctx, span := observability.StartSpan(ctx, observability.SpanRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRunID, b.runID)
	observability.SetSpanAttribute(ctx, observability.AttrStrategy, b.settings.Discovery.Strategy)

	b.log.Info("bootstrap started", logger.Fields(
		logger.FieldStrategy, b.settings.Discovery.Strategy,
		logger.FieldPath, b.settings.Paths.Template,
	))

	res, err := b.Prepare(ctx)
	if err != nil {
		return b.fail(ctx, "prepare", err)
	}

	if err := b.writeFile(b.settings.Paths.Output, []byte(res.Document)); err != nil {
		return b.fail(ctx, "write", errors.ConfigWrite(b.settings.Paths.Output, err))
	}
	b.log.Info("broker config written", logger.Fields(logger.FieldPath, b.settings.Paths.Output))

	// Logged inside; a missing id file only costs identity on the next start.
	_ = b.ids.Commit()

	result, err := b.spawner.Launch(ctx, process.Command{
		Binary:      b.settings.Paths.BrokerBinary,
		Args:        []string{b.settings.Paths.Output},
		GracePeriod: b.settings.Launch.GracePeriod,
	})
	if err != nil {
		return b.fail(ctx, "launch", err)
	}
	observability.SetSpanAttribute(ctx, logger.FieldExitCode, result.ExitCode)
	return result.ExitCode
}

func (b *Bootstrapper) fail(ctx context.Context, op string, err error) int {
	observability.SetSpanError(ctx, err)
	fields := logger.Fields(logger.FieldOperation, op)
	if appErr, ok := errors.AsAppError(err); ok {
		fields[logger.FieldCode] = string(appErr.Code)
		for k, v := range appErr.Details {
			fields[k] = v
		}
	}
	b.log.WithError(err).Error("bootstrap failed", fields)
	return ExitFailure
}

func writeConfig(path string, data []byte) error {
	return atomicwriter.WriteFile(path, data, 0o644)
}
