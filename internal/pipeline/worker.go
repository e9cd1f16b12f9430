package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/gridlock/internal/loader"
	"github.com/dgallion1/gridlock/internal/merge"
	"github.com/dgallion1/gridlock/internal/ocr"
	"github.com/dgallion1/gridlock/internal/page"
)

// ErrNoText is recorded on jobs that carry neither text nor an image.
var ErrNoText = errors.New("job has no text or image")

// Worker processes a single merge job.
type Worker struct {
	ocr      ocr.Recognizer
	log      *slog.Logger
	loadOpts loader.Options
	backoff  func(attempt int) time.Duration
}

// NewWorker returns a worker. rec may be nil when jobs always carry text.
func NewWorker(rec ocr.Recognizer, log *slog.Logger, loadOpts loader.Options) *Worker {
	return &Worker{
		ocr:      rec,
		log:      log,
		loadOpts: loadOpts,
		backoff:  Backoff,
	}
}

// Process loads the job's pages, recognizes the image when there is no text,
// and merges.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "key", job.Key)
	tmplIn, textIn, imageIn := job.inputs()

	// Phase 1: Load
	job.SetStatus(StatusLoading, "loading")
	if tmplIn == nil {
		w.fail(log, job, "loading", fmt.Errorf("template: missing"))
		return
	}
	template, err := loader.Load(tmplIn.Data, tmplIn.Filename, w.loadOpts)
	if err != nil {
		w.fail(log, job, "loading", fmt.Errorf("template: %w", err))
		return
	}

	var text page.Page
	switch {
	case textIn != nil:
		text, err = loader.Load(textIn.Data, textIn.Filename, w.loadOpts)
		if err != nil {
			w.fail(log, job, "loading", fmt.Errorf("text: %w", err))
			return
		}
	case imageIn != nil:
		// Phase 2: Recognize
		job.SetStatus(StatusRecognizing, "recognizing")
		raw, err := w.recognize(ctx, log, imageIn)
		if err != nil {
			w.fail(log, job, "recognizing", fmt.Errorf("ocr: %w", err))
			return
		}
		text, err = page.Read(strings.NewReader(ocr.CleanResponse(raw)))
		if err != nil {
			w.fail(log, job, "recognizing", err)
			return
		}
	default:
		w.fail(log, job, "loading", ErrNoText)
		return
	}
	log.Info("pages loaded", "template_rows", len(template), "text_rows", len(text))

	// Phase 3: Merge
	job.SetStatus(StatusMerging, "merging")
	res := merge.Merge(template, text, job.Options)
	job.SetResult(res)
	log.Info("merge complete", "ok", res.OK, "strategy", res.Strategy, "failed_lines", res.Failed())

	switch {
	case res.OK:
		job.SetStatus(StatusCompleted, "done")
	case res.Mismatch != nil:
		job.AddError(fmt.Sprintf("column count mismatch: template %d, text %d",
			len(res.Mismatch.TemplateExtents), len(res.Mismatch.TextExtents)))
		job.SetStatus(StatusMismatch, "columns")
	default:
		job.AddError(fmt.Sprintf("%d of %d lines did not merge", res.Failed(), len(res.Lines)))
		job.SetStatus(StatusMismatch, "lines")
	}
}

// recognize calls the OCR backend, retrying transient failures with backoff.
func (w *Worker) recognize(ctx context.Context, log *slog.Logger, in *Input) (string, error) {
	if w.ocr == nil {
		return "", ocr.ErrOCRNotEnabled
	}
	mediaType := ocr.MediaType(in.Filename)
	return retry(ctx, MaxRetries, w.backoff,
		func(attempt int, err error) {
			log.Warn("retryable ocr error", "attempt", attempt, "error", err)
		},
		func() (string, error) {
			return w.ocr.Recognize(ctx, in.Data, mediaType)
		})
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("job failed", "phase", phase, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
}
