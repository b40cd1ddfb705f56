package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/faqdesk/internal/exchange"
	"github.com/dgallion1/faqdesk/internal/faq"
	"github.com/dgallion1/faqdesk/internal/workspace"
)

// Worker processes a single import job.
type Worker struct {
	ws          *workspace.Workspace
	log         *slog.Logger
	maxRetries  int
	pdfFallback bool
	backoff     func(attempt int) time.Duration
}

func NewWorker(ws *workspace.Workspace, log *slog.Logger, maxRetries int, pdfFallback bool) *Worker {
	return &Worker{
		ws:          ws,
		log:         log,
		maxRetries:  maxRetries,
		pdfFallback: pdfFallback,
		backoff:     Backoff,
	}
}

// Process runs the full import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "lang", job.Lang, "filename", job.Filename)
	defer job.releaseFileData()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	imp, err := exchange.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if p, ok := imp.(*exchange.PDFImporter); ok {
		p.FallbackPdftotext = w.pdfFallback
	}

	imported, err := imp.Import(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	st := imported.Stats()
	log.Info("parsed upload", "categories", st.Categories, "questions", st.Questions)
	if st.Categories == 0 {
		job.AddError("no categories found in upload")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 2: Merge into the stored document
	job.SetStatus(StatusMerging, "merging")
	var target *workspace.Loaded
	err = w.retry(ctx, log, "load", func() error {
		var err error
		target, err = w.ws.LoadOrBlank(ctx, job.Lang)
		return err
	})
	if err != nil {
		log.Error("load failed", "error", err)
		job.AddError(fmt.Sprintf("load: %s", err))
		job.SetStatus(StatusFailed, "merging")
		return
	}

	switch job.Mode {
	case ModeReplace:
		target.Doc.Categories = imported.Categories
		job.AddImported(st.Categories, st.Questions, 0)
	default:
		res := AppendDocument(target.Doc, imported)
		job.AddImported(res.Categories, res.Questions, res.Skipped)
		log.Info("appended", "categories", res.Categories, "questions", res.Questions, "skipped", res.Skipped)
	}

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	if err := w.retry(ctx, log, "save", func() error { return w.ws.Save(ctx, target) }); err != nil {
		log.Error("save failed", "error", err)
		job.AddError(fmt.Sprintf("save: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	log.Info("import complete", "version", target.Version)
	job.SetStatus(StatusCompleted, "done")
}

// retry runs fn until it succeeds, fails with a non-retryable error, or
// maxRetries extra attempts are used up.
func (w *Worker) retry(ctx context.Context, log *slog.Logger, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) || attempt == w.maxRetries {
			break
		}
		log.Warn("retryable storage error", "op", op, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// AppendResult counts what AppendDocument added and skipped.
type AppendResult struct {
	Categories int
	Questions  int
	Skipped    int
}

// AppendDocument merges src into dst by ID. New categories and
// subcategories are appended whole; questions are added to an existing
// subcategory unless one with the same ID is already there.
func AppendDocument(dst, src *faq.Document) AppendResult {
	var res AppendResult
	for _, sc := range src.Categories {
		dc := faq.FindCategory(dst, sc.ID)
		if dc == nil {
			faq.AddCategory(dst, sc)
			res.Categories++
			for _, s := range sc.Subcategories {
				res.Questions += len(s.Questions)
			}
			continue
		}
		for _, ss := range sc.Subcategories {
			ds := faq.FindSubcategoryIn(dst, dc.ID, ss.ID)
			if ds == nil {
				faq.AddSubcategory(dc, ss)
				res.Questions += len(ss.Questions)
				continue
			}
			for _, q := range ss.Questions {
				if faq.FindQuestionIn(dst, dc.ID, ds.ID, q.ID) != nil {
					res.Skipped++
					continue
				}
				faq.AddQuestion(ds, q)
				res.Questions++
			}
		}
	}
	return res
}
