package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/faqdesk/internal/config"
	"github.com/dgallion1/faqdesk/internal/faq"
	"github.com/dgallion1/faqdesk/internal/storage"
	"github.com/dgallion1/faqdesk/internal/workspace"
)

const uploadMarkdown = `# [CAT-01] Power

## [SUB-01] Boot

### [Q-001] Will not boot

#### Symptoms

- no light

### [Q-002] Beeps

#### Solution Steps

- reseat memory

# [CAT-02] Network

## [SUB-05] Wifi

### [Q-100] Drops
`

const storedDoc = `window.FAQ_DATA_EN = {"categories": [
    {"id": "CAT-01", "title": "Power", "subcategories": [
        {"id": "SUB-01", "title": "Boot", "questions": [
            {"id": "Q-001", "title": "Existing", "content": {}}
        ]}
    ]}
]};`

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// flakyGateway fails the first failPuts writes with ErrUnavailable.
type flakyGateway struct {
	storage.Gateway
	failPuts int
	puts     int
}

func (f *flakyGateway) Put(ctx context.Context, p string, data []byte, opts storage.PutOptions) (string, error) {
	f.puts++
	if f.puts <= f.failPuts {
		return "", fmt.Errorf("put %s: %w", p, storage.ErrUnavailable)
	}
	return f.Gateway.Put(ctx, p, data, opts)
}

func newTestWorker(t *testing.T, gw storage.Gateway, maxRetries int) (*Worker, *workspace.Workspace) {
	t.Helper()
	ws := workspace.New(gw, workspace.Options{Languages: []string{"en"}, DataDir: "data"}, discardLog)
	w := NewWorker(ws, discardLog, maxRetries, false)
	w.backoff = func(int) time.Duration { return 0 }
	return w, ws
}

func seedStored(t *testing.T, gw storage.Gateway) {
	t.Helper()
	if _, err := gw.Put(context.Background(), "data/data.en.js", []byte(storedDoc), storage.PutOptions{CreateIfMissing: true}); err != nil {
		t.Fatal(err)
	}
}

func TestWorker_AppendSkipsExistingIDs(t *testing.T) {
	gw := storage.NewMemory()
	seedStored(t, gw)
	w, ws := newTestWorker(t, gw, 0)

	job := NewJob("en", "upload.md", ModeAppend, []byte(uploadMarkdown))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status = %s, errors = %v", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.CategoriesImported != 1 || snap.Progress.QuestionsImported != 2 || snap.Progress.Skipped != 1 {
		t.Errorf("progress = %+v", snap.Progress)
	}

	l, err := ws.Load(context.Background(), "en")
	if err != nil {
		t.Fatal(err)
	}
	if got := faq.FindQuestion(l.Doc, "Q-001"); got == nil || got.Title != "Existing" {
		t.Errorf("existing question was overwritten: %+v", got)
	}
	if faq.FindQuestionIn(l.Doc, "CAT-01", "SUB-01", "Q-002") == nil {
		t.Error("expected Q-002 appended to SUB-01")
	}
	if faq.FindQuestionIn(l.Doc, "CAT-02", "SUB-05", "Q-100") == nil {
		t.Error("expected CAT-02 appended")
	}
	if l.VarName != "window.FAQ_DATA_EN" {
		t.Errorf("var name = %q", l.VarName)
	}
	if job.FileData() != nil {
		t.Error("expected upload to be released after processing")
	}
}

func TestWorker_ReplaceCreatesMissingDocument(t *testing.T) {
	gw := storage.NewMemory()
	w, ws := newTestWorker(t, gw, 0)

	job := NewJob("en", "upload.md", ModeReplace, []byte(uploadMarkdown))
	w.Process(context.Background(), job)

	if snap := job.Snapshot(); snap.Status != StatusCompleted {
		t.Fatalf("status = %s, errors = %v", snap.Status, snap.Progress.Errors)
	}
	l, err := ws.Load(context.Background(), "en")
	if err != nil {
		t.Fatal(err)
	}
	st := l.Doc.Stats()
	if st.Categories != 2 || st.Questions != 3 {
		t.Errorf("stats = %+v", st)
	}
}

func TestWorker_RetriesUnavailable(t *testing.T) {
	gw := &flakyGateway{Gateway: storage.NewMemory(), failPuts: 2}
	w, _ := newTestWorker(t, gw, 3)

	job := NewJob("en", "upload.md", ModeReplace, []byte(uploadMarkdown))
	w.Process(context.Background(), job)

	if snap := job.Snapshot(); snap.Status != StatusCompleted {
		t.Fatalf("status = %s, errors = %v", snap.Status, snap.Progress.Errors)
	}
	if gw.puts != 3 {
		t.Errorf("puts = %d, want 3", gw.puts)
	}
}

func TestWorker_GivesUpAfterMaxRetries(t *testing.T) {
	gw := &flakyGateway{Gateway: storage.NewMemory(), failPuts: 10}
	w, _ := newTestWorker(t, gw, 2)

	job := NewJob("en", "upload.md", ModeReplace, []byte(uploadMarkdown))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "storing" {
		t.Fatalf("status = %s/%s", snap.Status, snap.Phase)
	}
	if gw.puts != 3 {
		t.Errorf("puts = %d, want 3", gw.puts)
	}
}

func TestWorker_FailsOnParseError(t *testing.T) {
	w, _ := newTestWorker(t, storage.NewMemory(), 0)

	for _, tc := range []struct{ name, filename, body string }{
		{"unsupported", "upload.exe", "x"},
		{"no categories", "upload.md", "just a paragraph\n"},
		{"bad csv", "upload.csv", "title\nx\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			job := NewJob("en", tc.filename, ModeAppend, []byte(tc.body))
			w.Process(context.Background(), job)
			snap := job.Snapshot()
			if snap.Status != StatusFailed || snap.Phase != "parsing" {
				t.Errorf("status = %s/%s", snap.Status, snap.Phase)
			}
			if len(snap.Progress.Errors) == 0 {
				t.Error("expected an error message")
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("save: %w", storage.ErrUnavailable)) {
		t.Error("unavailable should be retryable")
	}
	if IsRetryable(fmt.Errorf("save: %w", storage.ErrConflict)) {
		t.Error("conflict must not be retried")
	}
	if IsRetryable(errors.New("boom")) {
		t.Error("plain errors are not retryable")
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		d := Backoff(attempt)
		if d < base || d >= base+base/2 {
			t.Errorf("Backoff(%d) = %s, want [%s, %s)", attempt, d, base, base+base/2)
		}
	}
	if d := Backoff(10); d < 30*time.Second || d >= 45*time.Second {
		t.Errorf("Backoff(10) = %s, want capped at 30s plus jitter", d)
	}
}

func TestOrchestrator_ProcessesAndRejectsWhenFull(t *testing.T) {
	ws := workspace.New(storage.NewMemory(), workspace.Options{Languages: []string{"en"}, DataDir: "data"}, discardLog)
	o := &Orchestrator{
		jobs:  NewJobStore(time.Hour),
		queue: make(chan *Job, 1),
		ws:    ws,
		log:   discardLog,
	}
	o.cfg.MaxQueueSize = 1

	first := NewJob("en", "a.md", ModeReplace, []byte(uploadMarkdown))
	if err := o.Submit(first); err != nil {
		t.Fatal(err)
	}
	second := NewJob("en", "b.md", ModeReplace, []byte(uploadMarkdown))
	if err := o.Submit(second); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Submit() error = %v, want ErrQueueFull", err)
	}
	if snap := second.Snapshot(); snap.Status != StatusFailed {
		t.Errorf("rejected job status = %s", snap.Status)
	}
	if o.GetJob(second.ID) == nil {
		t.Error("rejected job should still be queryable")
	}

	o.cfg.WorkerCount = 1
	o.Start(context.Background())
	deadline := time.Now().Add(5 * time.Second)
	for !first.Snapshot().Done() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	o.Stop()
	if snap := first.Snapshot(); snap.Status != StatusCompleted {
		t.Errorf("first job status = %s, errors = %v", snap.Status, snap.Progress.Errors)
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	ws := workspace.New(storage.NewMemory(), workspace.Options{Languages: []string{"en"}, DataDir: "data"}, discardLog)
	o := NewOrchestrator(config.Config{WorkerCount: 1, MaxQueueSize: 2, JobTTL: time.Hour}, ws, discardLog)
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	job := NewJob("en", "a.md", ModeAppend, []byte(uploadMarkdown))
	if err := o.Submit(job); !errors.Is(err, ErrStopped) {
		t.Fatalf("Submit() error = %v, want ErrStopped", err)
	}
	if snap := job.Snapshot(); snap.Status != StatusFailed || snap.Phase != "shutdown" {
		t.Errorf("job = %s/%s, want failed/shutdown", snap.Status, snap.Phase)
	}
}

func TestOrchestrator_StopFailsQueuedJobs(t *testing.T) {
	ws := workspace.New(storage.NewMemory(), workspace.Options{Languages: []string{"en"}, DataDir: "data"}, discardLog)
	o := NewOrchestrator(config.Config{MaxQueueSize: 2, JobTTL: time.Hour}, ws, discardLog)
	// No workers, so the job stays queued until Stop.
	o.Start(context.Background())

	job := NewJob("en", "a.md", ModeAppend, []byte(uploadMarkdown))
	if err := o.Submit(job); err != nil {
		t.Fatal(err)
	}
	o.Stop()
	if snap := job.Snapshot(); snap.Status != StatusFailed || snap.Phase != "shutdown" {
		t.Errorf("job = %s/%s, want failed/shutdown", snap.Status, snap.Phase)
	}
}
