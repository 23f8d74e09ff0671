package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/zombor/documind/internal/document"
	"github.com/zombor/documind/internal/scanning"
)

// DefaultFailureDelay is how long a failed capture stays visible before the
// session returns to idle
const DefaultFailureDelay = 3 * time.Second

// IDGenerator generates unique IDs for documents
type IDGenerator interface {
	Generate() string
}

// Clock provides the current time and delayed callbacks
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func())
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

// systemClock uses the time package
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// Options configures an Orchestrator. Zero values select the defaults.
type Options struct {
	IDGenerator  IDGenerator
	Clock        Clock
	FailureDelay time.Duration
}

// Orchestrator drives capture → OCR → analysis and owns the session state
// presented to the user
type Orchestrator struct {
	store        *document.Store
	client       scanning.Client
	ids          IDGenerator
	clock        Clock
	failureDelay time.Duration
	analyses     singleflight.Group

	mu         sync.Mutex
	generation uint64
	processing ProcessingState
	analysis   AnalysisState
	current    *document.ScannedDocument
	raw        *RawCapture
}

// New creates an Orchestrator over a loaded store
func New(store *document.Store, client scanning.Client, opts Options) *Orchestrator {
	if opts.IDGenerator == nil {
		opts.IDGenerator = uuidGenerator{}
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.FailureDelay <= 0 {
		opts.FailureDelay = DefaultFailureDelay
	}

	return &Orchestrator{
		store:        store,
		client:       client,
		ids:          opts.IDGenerator,
		clock:        opts.Clock,
		failureDelay: opts.FailureDelay,
		processing:   ProcessingState{Status: StatusIdle},
		analysis:     AnalysisState{Status: AnalysisNone},
	}
}

// BeginCapture runs the capture pipeline for c and returns the new document.
// Invalid captures are rejected with a *CaptureError before the pipeline
// starts. Every other failure leaves the session in StatusFailed, which
// returns to idle after the failure delay.
func (o *Orchestrator) BeginCapture(ctx context.Context, c Capture) (document.ScannedDocument, error) {
	kind, err := c.Validate()
	if err != nil {
		slog.Warn("Rejected capture", "filename", c.Filename, "content_type", c.MIMEType, "error", err)
		return document.ScannedDocument{}, err
	}

	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.processing = ProcessingState{Status: StatusCapturing, Message: CapturingMessage}
	o.analysis = AnalysisState{Status: AnalysisNone}
	o.raw = nil
	o.mu.Unlock()

	data, err := scanning.EncodeBase64(c.Data)
	if err != nil {
		return document.ScannedDocument{}, o.fail(gen, &EncodingError{Err: err})
	}

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return document.ScannedDocument{}, ErrSuperseded
	}
	o.raw = &RawCapture{Data: data, MIMEType: c.MIMEType}
	o.processing = ProcessingState{Status: StatusExtracting, Message: ExtractingMessage}
	o.mu.Unlock()

	text, err := o.client.ExtractText(ctx, data, c.MIMEType)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty transcript")
	}
	if err != nil {
		slog.Error("Failed to extract text",
			"filename", c.Filename,
			"content_type", c.MIMEType,
			"file_size", len(c.Data),
			"error", err,
		)
		return document.ScannedDocument{}, o.fail(gen, &ExtractionError{Err: err})
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		slog.Info("Discarding superseded capture", "filename", c.Filename, "generation", gen)
		return document.ScannedDocument{}, ErrSuperseded
	}

	now := o.clock.Now()
	doc := document.ScannedDocument{
		ID:            o.ids.Generate(),
		CreatedAt:     now,
		Title:         document.TitleFor(now),
		ExtractedText: text,
		Kind:          kind,
	}

	if err := o.store.Prepend(doc); err != nil {
		slog.Error("Failed to save document", "id", doc.ID, "error", err)
		return document.ScannedDocument{}, o.failLocked(gen, &PersistenceError{Err: err})
	}

	o.current = &doc
	o.analysis = AnalysisState{Status: AnalysisNone}
	o.raw = &RawCapture{DocumentID: doc.ID, Data: data, MIMEType: c.MIMEType}
	o.processing = ProcessingState{Status: StatusDone}

	slog.Info("Document scanned", "id", doc.ID, "kind", doc.Kind, "text_length", len(doc.ExtractedText))
	return doc, nil
}

// fail moves generation gen to StatusFailed and returns err
func (o *Orchestrator) fail(gen uint64, err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failLocked(gen, err)
}

func (o *Orchestrator) failLocked(gen uint64, err error) error {
	if gen != o.generation {
		return ErrSuperseded
	}

	o.processing = ProcessingState{Status: StatusFailed, Message: FailureMessage}
	o.raw = nil

	o.clock.AfterFunc(o.failureDelay, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.generation == gen && o.processing.Status == StatusFailed {
			o.processing = ProcessingState{Status: StatusIdle}
		}
	})
	return err
}

// RequestAnalysis attaches a structured analysis to a document. A document
// that already has one is returned as is without calling the model.
func (o *Orchestrator) RequestAnalysis(ctx context.Context, id string) (document.ScannedDocument, error) {
	o.mu.Lock()
	doc, ok := o.store.Get(id)
	if !ok {
		o.mu.Unlock()
		return document.ScannedDocument{}, ErrNotFound
	}
	if doc.HasAnalysis() {
		o.mu.Unlock()
		return doc, nil
	}

	var data, mimeType string
	if o.raw != nil && o.raw.DocumentID == id {
		data, mimeType = o.raw.Data, o.raw.MIMEType
	}
	gen := o.generation
	if o.showsAnalysis(id, gen) {
		o.analysis = AnalysisState{Status: AnalysisAnalyzing, Message: AnalyzingMessage}
	}
	o.mu.Unlock()

	// Concurrent requests for one document share a single model call. The
	// call outlives any one caller; each caller only stops waiting on its
	// own cancellation.
	shared := context.WithoutCancel(ctx)
	ch := o.analyses.DoChan(id, func() (interface{}, error) {
		return o.client.Analyze(shared, doc.ExtractedText, data, mimeType)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return document.ScannedDocument{}, &AnalysisError{Err: ctx.Err()}
	case res = <-ch:
	}
	if res.Err != nil {
		slog.Error("Failed to analyze document", "id", id, "with_original", data != "", "error", res.Err)
		o.mu.Lock()
		if o.showsAnalysis(id, gen) {
			o.analysis = AnalysisState{Status: AnalysisFailed, Message: AnalysisFailure}
		}
		o.mu.Unlock()
		return document.ScannedDocument{}, &AnalysisError{Err: res.Err}
	}
	analysis := res.Val.(string)

	o.mu.Lock()
	defer o.mu.Unlock()

	updated, err := o.store.Update(id, func(d *document.ScannedDocument) {
		if !d.HasAnalysis() {
			d.Analysis = analysis
		}
	})
	if err != nil {
		slog.Error("Failed to save analysis", "id", id, "error", err)
		if o.showsAnalysis(id, gen) {
			o.analysis = AnalysisState{Status: AnalysisFailed, Message: AnalysisFailure}
		}
		return document.ScannedDocument{}, &AnalysisError{Err: &PersistenceError{Err: err}}
	}

	if o.isCurrent(id) {
		o.current = &updated
	}
	if o.showsAnalysis(id, gen) {
		o.analysis = AnalysisState{Status: AnalysisAnalyzed}
	}
	return updated, nil
}

func (o *Orchestrator) isCurrent(id string) bool {
	return o.current != nil && o.current.ID == id
}

// showsAnalysis reports whether the analysis sub-status belongs to the
// current document id as of generation gen, with no capture in flight
func (o *Orchestrator) showsAnalysis(id string, gen uint64) bool {
	if !o.isCurrent(id) || o.generation != gen {
		return false
	}
	return o.processing.Status != StatusCapturing && o.processing.Status != StatusExtracting
}

// SelectDocument makes a document from history the current one. The raw
// capture is dropped, so analyses of reopened documents use text only.
func (o *Orchestrator) SelectDocument(id string) (document.ScannedDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	doc, ok := o.store.Get(id)
	if !ok {
		return document.ScannedDocument{}, ErrNotFound
	}
	o.current = &doc
	o.raw = nil
	o.analysis = analysisStateFor(doc)
	return doc, nil
}

// Document retrieves a document by ID
func (o *Orchestrator) Document(id string) (document.ScannedDocument, error) {
	doc, ok := o.store.Get(id)
	if !ok {
		return document.ScannedDocument{}, ErrNotFound
	}
	return doc, nil
}

// Documents returns the history, most recent first
func (o *Orchestrator) Documents() []document.ScannedDocument {
	return o.store.List()
}

// Snapshot returns a copy of the session state
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := Snapshot{
		Processing:    o.processing,
		Analysis:      o.analysis,
		HasRawCapture: o.raw != nil,
		Generation:    o.generation,
	}
	if o.current != nil {
		current := *o.current
		s.Current = &current
	}
	return s
}
