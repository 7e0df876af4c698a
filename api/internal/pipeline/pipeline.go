// Package pipeline runs one conversion: extract, normalize, bind.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"paper-docx/api/internal/common"
	"paper-docx/api/internal/export"
	"paper-docx/api/internal/extract"
	"paper-docx/api/internal/mode"
	"paper-docx/api/internal/paper"
	"paper-docx/api/internal/render"
	"paper-docx/api/internal/store"
	"paper-docx/api/internal/util"
)

type State string

const (
	StateReceived         State = "received"
	StateExtracting       State = "extracting"
	StateNormalizing      State = "normalizing"
	StateBinding          State = "binding"
	StateSucceeded        State = "succeeded"
	StateExtractionFailed State = "extraction_failed"
	StateBindingFailed    State = "binding_failed"
)

type Request struct {
	Image    []byte
	Filename string
	// Mode is the caller's mode string; unknown values run as mixed.
	Mode string
	// MIME is optional; it is detected from Filename and Image when empty.
	MIME string
}

type Result struct {
	ID        string          `json:"id"`
	Mode      mode.Mode       `json:"mode"`
	Data      map[string]any  `json:"data,omitempty"`
	Document  render.Document `json:"document"`
	Companion string          `json:"companion,omitempty"`
	States    []State         `json:"states"`
	Elapsed   time.Duration   `json:"-"`
}

// Recorder persists a finished run.
type Recorder interface {
	Record(ctx context.Context, c store.Conversion) error
}

type Orchestrator struct {
	extractor    *extract.Extractor
	binder       *render.Binder
	recorder     Recorder
	questionBank bool
	log          *zap.Logger
}

type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithRecorder enables run history. A nil Recorder is ignored.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithQuestionBank also writes an XLSX question bank next to every document.
func WithQuestionBank(on bool) Option {
	return func(o *Orchestrator) { o.questionBank = on }
}

func New(x *extract.Extractor, b *render.Binder, opts ...Option) *Orchestrator {
	o := &Orchestrator{extractor: x, binder: b, log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type run struct {
	res Result
	log *zap.Logger
}

func (r *run) enter(s State) {
	r.res.States = append(r.res.States, s)
	r.log.Debug("pipeline.state", zap.String("state", string(s)))
}

// Run converts one image. Every failure is a *common.AppError and no
// document is referenced in a failed Result.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	m := mode.Resolve(req.Mode)
	r := &run{res: Result{ID: uuid.NewString(), Mode: m}}
	r.log = o.log.With(zap.String("request_id", r.res.ID), zap.String("mode", m.String()))
	r.enter(StateReceived)

	filename := strings.TrimSpace(req.Filename)
	if filename == "" {
		filename = "upload"
	}
	mime := strings.TrimSpace(req.MIME)
	if mime == "" {
		mime = util.DetectMIME(filename, req.Image)
	}

	var raw string
	finish := func(err error) (Result, error) {
		r.res.Elapsed = time.Since(start)
		o.record(ctx, r, filename, raw, err)
		if err != nil {
			r.log.Warn("pipeline.failed",
				zap.String("code", string(common.CodeOf(err))),
				zap.Duration("elapsed", r.res.Elapsed),
				zap.Error(err))
			r.res.Data = nil
			r.res.Document = render.Document{}
			r.res.Companion = ""
			return r.res, err
		}
		r.log.Info("pipeline.ok",
			zap.String("document", r.res.Document.Name),
			zap.Duration("elapsed", r.res.Elapsed))
		return r.res, nil
	}

	r.enter(StateExtracting)
	resp, err := o.extractor.Parse(ctx, req.Image, mime, m)
	raw = resp.Raw
	if err != nil {
		r.enter(StateExtractionFailed)
		return finish(err)
	}
	r.log.Debug("pipeline.extract.ok", zap.Int("raw_len", len(raw)))

	r.enter(StateNormalizing)
	data, cleaned := o.extractor.Normalize(resp.Data, m)
	r.log.Debug("pipeline.normalize.ok", zap.Bool("cleaned", cleaned))

	r.enter(StateBinding)
	doc, err := o.binder.Render(data, m, filename)
	if err != nil {
		r.enter(StateBindingFailed)
		return finish(err)
	}
	r.res.Data = data
	r.res.Document = doc
	r.res.Companion = o.companion(r, data, m, filename)

	r.enter(StateSucceeded)
	return finish(nil)
}

// companion writes the optional question bank. Its failures only get logged.
func (o *Orchestrator) companion(r *run, data map[string]any, m mode.Mode, filename string) string {
	if !o.questionBank {
		return ""
	}
	p, err := paper.FromTree(data)
	if err != nil {
		r.log.Warn("pipeline.export.failed", zap.Error(err))
		return ""
	}
	xlsx, err := export.QuestionBank(p)
	if err != nil {
		r.log.Warn("pipeline.export.failed", zap.Error(err))
		return ""
	}
	name, err := o.binder.Outputs().Save(render.OutputName(m, filename, ".xlsx"), xlsx)
	if err != nil {
		r.log.Warn("pipeline.export.failed", zap.Error(err))
		return ""
	}
	return name
}

func (o *Orchestrator) record(ctx context.Context, r *run, filename, raw string, runErr error) {
	if o.recorder == nil {
		return
	}
	c := store.Conversion{
		ID:         r.res.ID,
		CreatedAt:  time.Now().UTC(),
		Mode:       r.res.Mode.String(),
		SourceName: filename,
		Status:     store.StatusSucceeded,
		Document:   r.res.Document.Name,
		ElapsedMS:  r.res.Elapsed.Milliseconds(),
	}
	if m := o.extractor.Model(); m != nil {
		c.Engine = m.Name()
	}
	if runErr != nil {
		c.Status = store.StatusFailed
		c.ErrorCode = string(common.CodeOf(runErr))
		c.Message = common.UserMessage(runErr)
		c.Document = ""
		c.RawResponse = raw
	}

	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.recorder.Record(recCtx, c); err != nil {
		r.log.Warn("pipeline.record.failed", zap.Error(err))
	}
}
