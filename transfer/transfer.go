package transfer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/niftyshare/nifty/archive"
	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/errors"
	"github.com/niftyshare/nifty/ledger"
	"github.com/niftyshare/nifty/mail"
	"github.com/niftyshare/nifty/upload"
)

// Step names one stage of the pipeline.
type Step string

// Pipeline steps, in execution order.
const (
	StepPackage Step = "package"
	StepUpload  Step = "upload"
	StepNotify  Step = "notify"
	StepPersist Step = "persist"
	StepCleanup Step = "cleanup"
)

// StepResult records the outcome of one pipeline step.
type StepResult struct {
	Step     Step
	Err      error
	Skipped  bool
	Duration time.Duration
}

// Outcome is the full result of a pipeline run: one StepResult per step
// plus the assembled transfer context.
type Outcome struct {
	Steps   []StepResult
	Context *TransferContext
}

// Failed returns the steps that ran and errored.
func (o *Outcome) Failed() []StepResult {
	var failed []StepResult
	for _, s := range o.Steps {
		if !s.Skipped && s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// Ok reports whether every executed step succeeded.
func (o *Outcome) Ok() bool {
	return len(o.Failed()) == 0
}

// FailurePolicy decides whether the pipeline continues past a failed
// upload.
type FailurePolicy int

const (
	// PolicyBestEffort runs every remaining step regardless of earlier
	// failures. A failed upload still produces a notification (with an
	// empty link) and a ledger row.
	PolicyBestEffort FailurePolicy = iota

	// PolicyAbortOnUploadFailure stops after a failed package or upload
	// step. Cleanup still runs.
	PolicyAbortOnUploadFailure
)

// Notifier is the notification collaborator. mail.Notifier is the
// production implementation.
type Notifier interface {
	Notify(recipient, template string, data any) error
}

// Orchestrator runs the share pipeline for one request.
type Orchestrator struct {
	cfg *config.Config
	req *Request

	gateway  upload.Gateway
	notifier Notifier
	store    ledger.Store

	// ownsStore is set when New opened the store itself; Run closes it on
	// the way out. Injected stores belong to the caller.
	ownsStore bool

	policy      FailurePolicy
	progressOut io.Writer
	now         func() time.Time
}

// Option customizes an Orchestrator. The collaborator options exist so
// tests can inject fakes.
type Option func(*Orchestrator)

// WithGateway replaces the resolved upload gateway.
func WithGateway(g upload.Gateway) Option {
	return func(o *Orchestrator) { o.gateway = g }
}

// WithNotifier replaces the mail notifier.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithStore replaces the ledger store.
func WithStore(s ledger.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithPolicy sets the failure policy.
func WithPolicy(p FailurePolicy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithProgressOutput enables a console progress line on the given writer.
func WithProgressOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.progressOut = w }
}

// WithClock replaces the time source. This is primarily used for testing.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New wires an orchestrator for the request. Collaborators not injected
// through options are built from configuration.
func New(cfg *config.Config, req *Request, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		cfg:    cfg,
		req:    req,
		policy: PolicyBestEffort,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.gateway == nil {
		gateway, err := upload.Resolve(cfg, req.Provider)
		if err != nil {
			return nil, err
		}
		o.gateway = gateway
	}
	if o.notifier == nil {
		o.notifier = mail.NewNotifier(cfg.Mail, cfg.TemplateDir)
	}
	if o.store == nil {
		store, err := ledger.Open(cfg.Ledger)
		if err != nil {
			return nil, err
		}
		o.store = store
		o.ownsStore = true
	}

	return o, nil
}

// Run executes package, upload, notify, persist and cleanup in order.
// Under the best-effort policy step failures are logged and recorded in
// the outcome, never raised; the returned error is non-nil only when the
// abort policy stops the pipeline. Cleanup always runs when an archive
// was created here and never contributes an error.
func (o *Orchestrator) Run(ctx context.Context) (*Outcome, error) {
	if o.ownsStore {
		defer func() {
			if err := o.store.Close(); err != nil {
				logrus.WithField("error", err).Warn("could not close ledger store")
			}
		}()
	}

	tc := &TransferContext{
		SourcePath:    o.req.SourcePath,
		Recipient:     o.req.Recipient,
		Provider:      o.req.Provider,
		FileBasename:  filepath.Base(o.req.SourcePath),
		SenderName:    o.cfg.Mail.SenderName,
		SenderAddress: o.cfg.Mail.SenderAddress,
		ExpiryDate:    o.now().Add(upload.LinkExpiry),
	}
	outcome := &Outcome{Context: tc}

	packageErr := o.runStep(outcome, StepPackage, func() error {
		return o.packageSource(tc)
	})

	var uploadErr error
	if packageErr != nil {
		o.skipStep(outcome, StepUpload)
	} else {
		uploadErr = o.runStep(outcome, StepUpload, func() error {
			return o.uploadSource(ctx, tc)
		})
	}

	if o.policy == PolicyAbortOnUploadFailure && (packageErr != nil || uploadErr != nil) {
		o.skipStep(outcome, StepNotify)
		o.skipStep(outcome, StepPersist)
		o.cleanup(outcome, tc)
		if packageErr != nil {
			return outcome, packageErr
		}
		return outcome, uploadErr
	}

	o.runStep(outcome, StepNotify, func() error {
		return o.notify(tc)
	})
	o.runStep(outcome, StepPersist, func() error {
		return o.persist(ctx, tc)
	})
	o.cleanup(outcome, tc)

	return outcome, nil
}

func (o *Orchestrator) runStep(outcome *Outcome, step Step, fn func() error) error {
	start := o.now()
	err := fn()
	outcome.Steps = append(outcome.Steps, StepResult{
		Step:     step,
		Err:      err,
		Duration: time.Since(start),
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"step":  step,
			"error": err,
		}).Error("transfer step failed")
	}
	return err
}

func (o *Orchestrator) skipStep(outcome *Outcome, step Step) {
	outcome.Steps = append(outcome.Steps, StepResult{Step: step, Skipped: true})
}

// packageSource prepares the local path to upload. A directory source is
// archived in the working directory under basename.zip; a file source is
// uploaded as-is.
func (o *Orchestrator) packageSource(tc *TransferContext) error {
	info, err := os.Stat(tc.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("package", errors.ErrFileNotFound).WithPath(tc.SourcePath)
		}
		return errors.New("package", err).WithPath(tc.SourcePath)
	}

	if !info.IsDir() {
		tc.UploadPath = tc.SourcePath
		tc.FilesList = []string{tc.SourcePath}
		return nil
	}

	entries, err := archive.List(tc.SourcePath)
	if err != nil {
		return err
	}
	tc.FilesList = entries

	target := tc.FileBasename + ".zip"
	path, err := archive.Create(tc.SourcePath, target)
	if err != nil {
		return err
	}
	tc.UploadPath = path
	tc.ArchiveCreated = true
	return nil
}

// uploadSource sends the prepared path to the provider and mints the
// shareable link. The size is captured before the link attempt so a link
// failure still leaves a complete context.
func (o *Orchestrator) uploadSource(ctx context.Context, tc *TransferContext) error {
	basename := filepath.Base(tc.UploadPath)
	tc.Key = upload.Key(o.gateway.RootFolder(), basename)

	var opts []upload.Option
	if o.progressOut != nil {
		opts = append(opts, upload.WithProgress(upload.NewConsoleProgress(basename, o.progressOut)))
	}

	result, err := o.gateway.Upload(ctx, tc.UploadPath, tc.Key, opts...)
	if err != nil {
		return err
	}
	tc.FileSizeBytes = result.Size

	link, err := o.gateway.ShareableLink(ctx, tc.Key, upload.LinkExpiry)
	if err != nil {
		return err
	}
	tc.DownloadLink = link
	return nil
}

func (o *Orchestrator) notify(tc *TransferContext) error {
	tc.CompletedAt = o.now().Truncate(time.Second)
	return o.notifier.Notify(tc.Recipient, o.req.Template, tc.TemplateData())
}

func (o *Orchestrator) persist(ctx context.Context, tc *TransferContext) error {
	if err := o.store.EnsureTable(ctx); err != nil {
		return err
	}
	return o.store.Insert(ctx, tc.Record())
}

// cleanup removes an archive the pipeline created. It never reports an
// error: a missing file is fine, anything else is logged and forgotten.
func (o *Orchestrator) cleanup(outcome *Outcome, tc *TransferContext) {
	defer outcome.appendCleanup()

	if !tc.ArchiveCreated {
		return
	}

	err := os.Remove(tc.UploadPath)
	switch {
	case err == nil, os.IsNotExist(err):
	case os.IsPermission(err):
		logrus.WithField("path", tc.UploadPath).Warn("could not delete archive")
	default:
		logrus.WithFields(logrus.Fields{
			"path":  tc.UploadPath,
			"error": err,
		}).Error("could not delete archive")
	}
}

func (o *Outcome) appendCleanup() {
	o.Steps = append(o.Steps, StepResult{Step: StepCleanup})
}
