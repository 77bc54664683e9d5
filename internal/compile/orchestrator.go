// Package compile drives requests to the typesetting service and turns their outcomes into
// status changes and delivered artifacts.
package compile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/texpad/internal/artifact"
	"github.com/debemdeboas/texpad/internal/config"
)

var compileLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	compileLogger = l
}

// Outcome labels how a run ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomeError   Outcome = "error"
	OutcomeStale   Outcome = "stale"
)

// Recorder observes runs. It must not block.
type Recorder interface {
	RunStarted(action Action)
	RunFinished(action Action, outcome Outcome, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RunStarted(Action)                          {}
func (nopRecorder) RunFinished(Action, Outcome, time.Duration) {}

// Document is the source a run reads from.
type Document interface {
	Value() string
	Filename() string
}

type Option func(*Orchestrator)

// WithRecorder installs a run observer.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithExportFilename sets the name exports are downloaded as.
func WithExportFilename(name string) Option {
	return func(o *Orchestrator) {
		if strings.TrimSpace(name) != "" {
			o.exportName = name
		}
	}
}

// Orchestrator runs compile and export actions. Runs may overlap; a completion is applied only
// if no newer run of the same action has started since, so results apply in start order.
//
// Presenter and sink calls are serialized. A slow preview or download write therefore delays
// the Busy transition of a run started meanwhile, but never its request.
type Orchestrator struct {
	client   Client
	registry *artifact.Registry
	sink     artifact.Sink
	recorder Recorder

	exportName string

	// mu guards the fields below and is never held across the request or sink calls.
	mu      sync.Mutex
	status  Status
	seq     map[Action]uint64
	preview artifact.Ref
	closed  bool

	// runs tracks in-flight Run calls; Close cancels them through base and waits.
	runs   sync.WaitGroup
	base   context.Context
	cancel context.CancelFunc

	// viewMu keeps presenter calls in the same order as the transitions they describe.
	viewMu    sync.Mutex
	presenter Presenters
}

func New(client Client, registry *artifact.Registry, sink artifact.Sink, presenter Presenter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:     client,
		registry:   registry,
		sink:       sink,
		recorder:   nopRecorder{},
		exportName: config.DefaultExportFilename,
		seq:        make(map[Action]uint64),
	}
	o.base, o.cancel = context.WithCancel(context.Background())
	if presenter != nil {
		o.presenter = Presenters{presenter}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AddPresenter adds p after the presenters already installed. It takes effect from the next
// transition.
func (o *Orchestrator) AddPresenter(p Presenter) {
	o.viewMu.Lock()
	defer o.viewMu.Unlock()
	o.presenter = append(o.presenter, p)
}

// Run sends text to the service and applies the outcome. It returns the status after the run,
// which is the status of a newer run when this one went stale. After Close it does nothing and
// returns the last status.
func (o *Orchestrator) Run(ctx context.Context, action Action, text, filename string) Status {
	o.mu.Lock()
	if o.closed {
		st := o.status
		o.mu.Unlock()
		return st
	}
	o.runs.Add(1)
	o.mu.Unlock()
	defer o.runs.Done()

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	unlink := context.AfterFunc(o.base, stop)
	defer unlink()

	if strings.TrimSpace(filename) == "" {
		filename = config.DefaultFilename
	}

	seq := o.begin(action)
	o.recorder.RunStarted(action)

	compileLogger.Info().
		Str("action", action.String()).
		Uint64("seq", seq).
		Str("filename", filename).
		Int("bytes", len(text)).
		Msg("Run started")

	started := time.Now()
	res := o.client.Do(ctx, Request{Action: action, Text: text, Filename: filename})

	return o.complete(action, seq, res, started)
}

// RunDocument runs action against the current contents of doc.
func (o *Orchestrator) RunDocument(ctx context.Context, action Action, doc Document) Status {
	return o.Run(ctx, action, doc.Value(), doc.Filename())
}

func (o *Orchestrator) begin(action Action) uint64 {
	o.viewMu.Lock()
	defer o.viewMu.Unlock()

	o.mu.Lock()
	o.seq[action]++
	seq := o.seq[action]
	busy := Status{Phase: Busy, Action: action, Seq: seq}
	o.status = busy
	o.mu.Unlock()

	o.presenter.HideError()
	o.presenter.ShowStatus(busy)
	return seq
}

func (o *Orchestrator) complete(action Action, seq uint64, res Result, started time.Time) Status {
	o.viewMu.Lock()
	defer o.viewMu.Unlock()

	o.mu.Lock()
	latest := o.seq[action]
	current := o.status
	o.mu.Unlock()

	if seq != latest {
		compileLogger.Debug().
			Str("action", action.String()).
			Uint64("seq", seq).
			Uint64("latest", latest).
			Msg("Discarding stale result")
		o.recorder.RunFinished(action, OutcomeStale, time.Since(started))
		return current
	}

	if res.Err != nil {
		return o.fail(action, seq, res.Err, started)
	}
	if res.Payload == nil {
		return o.fail(action, seq, &DecodeError{Err: errors.New("empty result")}, started)
	}

	ref := o.registry.Create(res.Payload.Data, res.Payload.MediaType)

	switch action {
	case Export:
		err := o.sink.TriggerDownload(ref, o.exportName)
		// The reference only existed to hand the file over.
		o.registry.Revoke(ref)
		if err != nil {
			return o.fail(action, seq, err, started)
		}
	default:
		if err := o.sink.SetPreview(ref); err != nil {
			o.registry.Revoke(ref)
			return o.fail(action, seq, err, started)
		}
		o.mu.Lock()
		prev := o.preview
		o.preview = ref
		o.mu.Unlock()
		o.registry.Revoke(prev)
	}

	done := Status{Phase: Succeeded, Action: action, Seq: seq}
	o.setStatus(done)
	o.presenter.ShowStatus(done)
	o.recorder.RunFinished(action, OutcomeSuccess, time.Since(started))

	compileLogger.Info().
		Str("action", action.String()).
		Uint64("seq", seq).
		Int("bytes", len(res.Payload.Data)).
		Dur("elapsed", time.Since(started)).
		Msg("Run succeeded")
	return done
}

// fail must be called with viewMu held.
func (o *Orchestrator) fail(action Action, seq uint64, err error, started time.Time) Status {
	var httpErr *HTTPError
	fault := !errors.As(err, &httpErr)

	failed := Status{
		Phase:   Failed,
		Action:  action,
		Message: err.Error(),
		Seq:     seq,
		Fault:   fault,
	}
	o.setStatus(failed)
	o.presenter.ShowStatus(failed)
	o.presenter.ShowError(failed.Message)

	outcome := OutcomeFailed
	if fault {
		outcome = OutcomeError
	}
	o.recorder.RunFinished(action, outcome, time.Since(started))

	compileLogger.Warn().
		Err(err).
		Str("action", action.String()).
		Uint64("seq", seq).
		Bool("fault", fault).
		Msg("Run failed")
	return failed
}

func (o *Orchestrator) setStatus(s Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = s
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Preview is the reference currently assigned to the preview, empty before the first
// successful compile.
func (o *Orchestrator) Preview() artifact.Ref {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.preview
}

// PreviewArtifact resolves the current preview.
func (o *Orchestrator) PreviewArtifact() (artifact.Artifact, bool) {
	ref := o.Preview()
	if ref == "" {
		return artifact.Artifact{}, false
	}
	return o.registry.Resolve(ref)
}

// Close cancels in-flight runs, waits for them to settle and releases the preview reference.
// Later calls to Run are ignored.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	o.runs.Wait()

	o.mu.Lock()
	prev := o.preview
	o.preview = ""
	o.mu.Unlock()
	o.registry.Revoke(prev)
}
