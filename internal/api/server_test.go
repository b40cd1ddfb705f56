package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/faqdesk/internal/config"
	"github.com/dgallion1/faqdesk/internal/faq"
	"github.com/dgallion1/faqdesk/internal/pipeline"
	"github.com/dgallion1/faqdesk/internal/storage"
	"github.com/dgallion1/faqdesk/internal/workspace"
)

const testKey = "test-key"

const zhDoc = `window.FAQ_DATA_ZH = {"meta": {"lang": "zh"}, "categories": [
    {"id": "CAT-01", "title": "電源", "subcategories": [
        {"id": "SUB-01", "title": "開機", "questions": [
            {"id": "Q-001", "title": "無法開機", "content": {"symptoms": ["指示燈不亮"], "keywords": ["開機"]}},
            {"id": "Q-002", "title": "嗶聲", "content": {"solutionSteps": ["重插記憶體"]}}
        ]}
    ]}
]};`

const enDoc = `window.FAQ_DATA_EN = {"categories": [
    {"id": "CAT-01", "title": "Power", "subcategories": [
        {"id": "SUB-01", "title": "Boot", "questions": [
            {"id": "Q-001", "title": "Will not boot", "content": {"symptoms": ["No light"], "solutionSteps": ["Check the cable"]}}
        ]}
    ]}
]};`

const uploadMarkdown = `# [CAT-09] Printing

## [SUB-90] Paper

### [Q-900] Paper jam

#### Solution Steps

- open the tray
`

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type testEnv struct {
	srv   *Server
	store *storage.Memory
	orch  *pipeline.Orchestrator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Config{
		APIKey:         testKey,
		Languages:      []string{"zh", "en", "th"},
		DataDir:        "assets/data",
		ImageDir:       "assets/images",
		ExportDir:      "exports",
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxRetries:     1,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		SessionTTL:     time.Hour,
	}
	store := storage.NewMemory()
	ws := workspace.New(store, workspace.OptionsFromConfig(cfg), discardLog)
	orch := pipeline.NewOrchestrator(cfg, ws, discardLog)
	return &testEnv{srv: NewServer(ws, orch, nil, discardLog, cfg), store: store, orch: orch}
}

func (e *testEnv) seed(t *testing.T, lang, content string) {
	t.Helper()
	_, err := e.store.Put(context.Background(), "assets/data/data."+lang+".js", []byte(content), storage.PutOptions{CreateIfMissing: true})
	require.NoError(t, err)
}

func (e *testEnv) do(method, path string, body io.Reader, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(method, path, body string) *httptest.ResponseRecorder {
	return e.do(method, path, strings.NewReader(body), "Content-Type", "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth_NoAuth(t *testing.T) {
	e := newTestEnv(t)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	e := newTestEnv(t)

	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/languages", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestLanguages(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "en", enDoc)
	e.seed(t, "th", `window.FAQ_DATA_TH = {`)

	rec := e.do(http.MethodGet, "/api/languages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[struct {
		Base      string           `json:"base"`
		Languages []languageStatus `json:"languages"`
	}](t, rec)

	assert.Equal(t, "en", out.Base)
	require.Len(t, out.Languages, 3)
	assert.False(t, out.Languages[0].Present)
	assert.True(t, out.Languages[1].Present)
	assert.Equal(t, 1, out.Languages[1].Stats.Questions)
	assert.True(t, out.Languages[2].Present)
	assert.NotEmpty(t, out.Languages[2].Error)
}

func TestDocuments_GetAndConditionalPut(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "zh", zhDoc)

	rec := e.do(http.MethodGet, "/api/documents/zh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		VarName  string       `json:"varName"`
		Version  string       `json:"version"`
		Document faq.Document `json:"document"`
	}](t, rec)
	assert.Equal(t, "window.FAQ_DATA_ZH", got.VarName)
	assert.Equal(t, `"`+got.Version+`"`, rec.Header().Get("ETag"))
	require.Len(t, got.Document.Categories, 1)

	got.Document.Categories[0].Title = "電源管理"
	body, err := json.Marshal(got.Document)
	require.NoError(t, err)

	rec = e.do(http.MethodPut, "/api/documents/zh", bytes.NewReader(body), "If-Match", `"stale"`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPut, "/api/documents/zh", bytes.NewReader(body), "If-Match", `"`+got.Version+`"`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	put := decode[struct {
		Version string `json:"version"`
	}](t, rec)
	assert.NotEqual(t, got.Version, put.Version)

	blob, err := e.store.Get(context.Background(), "assets/data/data.zh.js")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(blob.Data), "window.FAQ_DATA_ZH = "), "variable name is kept")
	assert.Contains(t, string(blob.Data), "電源管理")
}

func TestDocuments_Errors(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "th", `window.FAQ_DATA_TH = {`)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/documents/fr", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/documents/zh", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, e.do(http.MethodGet, "/api/documents/th", nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.doJSON(http.MethodPut, "/api/documents/zh", `{"categories":`).Code)
}

func TestMergedCoverageAndSearch(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "zh", zhDoc)
	e.seed(t, "en", enDoc)

	rec := e.do(http.MethodGet, "/api/merged", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	merged := decode[struct {
		BaseLanguage string   `json:"baseLanguage"`
		Languages    []string `json:"languages"`
	}](t, rec)
	assert.Equal(t, "zh", merged.BaseLanguage)
	assert.Equal(t, []string{"zh", "en"}, merged.Languages)

	rec = e.do(http.MethodGet, "/api/coverage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cov := decode[struct {
		Gaps []struct {
			ID      string   `json:"id"`
			Missing []string `json:"missing"`
		} `json:"gaps"`
	}](t, rec)
	require.Len(t, cov.Gaps, 1)
	assert.Equal(t, "Q-002", cov.Gaps[0].ID)
	assert.Equal(t, []string{"en"}, cov.Gaps[0].Missing)

	rec = e.do(http.MethodGet, "/api/search?q=cable", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[struct {
		Results []struct {
			ID    string `json:"id"`
			Field string `json:"field"`
		} `json:"results"`
	}](t, rec)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Q-001", res.Results[0].ID)
	assert.Equal(t, "content", res.Results[0].Field)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/search", nil).Code)
}

func TestMerged_NothingStored(t *testing.T) {
	e := newTestEnv(t)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/merged", nil).Code)
}

func TestQuestionFormats(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "zh", zhDoc)
	e.seed(t, "en", enDoc)

	rec := e.do(http.MethodGet, "/api/questions/Q-001?lang=en&format=html", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1>Will not boot</h1>")

	rec = e.do(http.MethodGet, "/api/questions/Q-001?format=markdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# 無法開機", "defaults to the base language")

	rec = e.do(http.MethodGet, "/api/questions/Q-001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decode[struct {
		ID    string            `json:"id"`
		Title map[string]string `json:"title"`
	}](t, rec)
	assert.Equal(t, "Q-001", q.ID)
	assert.Equal(t, "Will not boot", q.Title["en"])

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/questions/Q-404", nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/questions/Q-001?format=pdf", nil).Code)
}

type testSession struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Dirty   bool   `json:"dirty"`
	Active  *struct {
		Kind   string `json:"kind"`
		Fields struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"fields"`
	} `json:"active"`
	Stats    faq.Stats    `json:"stats"`
	Document faq.Document `json:"document"`
}

func TestSession_EditAndSave(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "zh", zhDoc)

	rec := e.doJSON(http.MethodPost, "/api/sessions", `{"lang":"zh"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	s := decode[testSession](t, rec)
	require.NotEmpty(t, s.ID)
	assert.Nil(t, s.Active)
	loadedVersion := s.Version
	base := "/api/sessions/" + s.ID

	rec = e.doJSON(http.MethodPost, base+"/select", `{"category":0,"subcategory":0,"question":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s = decode[testSession](t, rec)
	require.NotNil(t, s.Active)
	assert.Equal(t, "question", s.Active.Kind)
	assert.Equal(t, "Q-001", s.Active.Fields.ID)

	rec = e.doJSON(http.MethodPost, base+"/stage", `{"id":"Q-001","title":"開不了機"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[testSession](t, rec).Dirty)

	// Moving the selection commits the staged edits.
	rec = e.doJSON(http.MethodPost, base+"/select", `{"category":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	s = decode[testSession](t, rec)
	assert.False(t, s.Dirty)
	assert.Equal(t, "category", s.Active.Kind)
	assert.Equal(t, "開不了機", s.Document.Categories[0].Subcategories[0].Questions[0].Title)

	rec = e.doJSON(http.MethodPost, base+"/nodes", `{"kind":"subcategory"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[testSession](t, rec).Stats.Subcategories)

	rec = e.do(http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEqual(t, loadedVersion, decode[testSession](t, rec).Version)

	rec = e.do(http.MethodGet, "/api/documents/zh", nil)
	assert.Contains(t, rec.Body.String(), "開不了機")

	// Someone else writes the file; the next save must not clobber it.
	e.seed(t, "zh", zhDoc)
	rec = e.do(http.MethodPost, base+"/save", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSession_DiscardStaged(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "zh", zhDoc)

	s := decode[testSession](t, e.doJSON(http.MethodPost, "/api/sessions", `{"lang":"zh"}`))
	base := "/api/sessions/" + s.ID

	require.Equal(t, http.StatusOK, e.doJSON(http.MethodPost, base+"/select", `{"category":0,"subcategory":0,"question":0}`).Code)
	rec := e.doJSON(http.MethodPost, base+"/stage", `{"id":"Q-001","title":"開不了機"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[testSession](t, rec).Dirty)

	rec = e.do(http.MethodDelete, base+"/staged", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s = decode[testSession](t, rec)
	assert.False(t, s.Dirty)
	require.NotNil(t, s.Active, "selection survives a discard")
	assert.Equal(t, "Q-001", s.Active.Fields.ID)

	// Moving on must not commit what was discarded.
	rec = e.doJSON(http.MethodPost, base+"/select", `{"category":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "開不了機", decode[testSession](t, rec).Document.Categories[0].Subcategories[0].Questions[0].Title)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/sessions/nope/staged", nil).Code)
}

func TestSession_MoveAndDelete(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "zh", zhDoc)

	s := decode[testSession](t, e.doJSON(http.MethodPost, "/api/sessions", `{"lang":"zh"}`))
	base := "/api/sessions/" + s.ID

	require.Equal(t, http.StatusOK, e.doJSON(http.MethodPost, base+"/select", `{"category":0,"subcategory":0,"question":1}`).Code)
	rec := e.doJSON(http.MethodPost, base+"/move", `{"toSubId":"SUB-404"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodDelete, base+"/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s = decode[testSession](t, rec)
	assert.Nil(t, s.Active)
	assert.Equal(t, 1, s.Stats.Questions)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodDelete, base+"/active", nil).Code, "nothing selected")

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, base, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, base, nil).Code)
}

func TestSession_Validation(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "zh", zhDoc)

	assert.Equal(t, http.StatusBadRequest, e.doJSON(http.MethodPost, "/api/sessions", `{"lang":"fr"}`).Code)

	s := decode[testSession](t, e.doJSON(http.MethodPost, "/api/sessions", `{"lang":"zh"}`))
	base := "/api/sessions/" + s.ID

	assert.Equal(t, http.StatusBadRequest, e.doJSON(http.MethodPost, base+"/select", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.doJSON(http.MethodPost, base+"/select", `{"category":5}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.doJSON(http.MethodPost, base+"/stage", `{"id":"x"}`).Code, "nothing selected")

	require.Equal(t, http.StatusOK, e.doJSON(http.MethodPost, base+"/select", `{"category":0,"subcategory":0,"question":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.doJSON(http.MethodPost, base+"/commit", `{"id":" "}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.doJSON(http.MethodPost, base+"/commit", `{"id":"Q-002"}`).Code, "duplicate sibling id")
	assert.Equal(t, http.StatusBadRequest, e.doJSON(http.MethodPost, base+"/nodes", `{"kind":"chapter"}`).Code)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/sessions/nope", nil).Code)
}

func TestSessionStore_Expiry(t *testing.T) {
	st := newSessionStore(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	es := st.add(&workspace.Loaded{Lang: "zh", Doc: faq.NewDocument()})
	now = now.Add(30 * time.Second)
	require.Same(t, es, st.get(es.id))

	now = now.Add(61 * time.Second)
	assert.Nil(t, st.get(es.id))
	assert.Equal(t, 0, st.len())
}

func TestExportAndImportCSV(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "zh", zhDoc)

	rec := e.do(http.MethodGet, "/api/export/zh.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	csvBody := rec.Body.String()
	assert.Contains(t, csvBody, "Q-002")

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/export/zh.txt", nil).Code)

	rec = e.do(http.MethodPost, "/api/export/zh", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(decode[map[string]string](t, rec)["path"], "exports/faq_zh_"))

	rec = e.do(http.MethodPost, "/api/import/en/csv", strings.NewReader(csvBody))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[struct {
		Stats faq.Stats `json:"stats"`
	}](t, rec).Stats.Questions)

	rec = e.do(http.MethodPost, "/api/import/zh/csv", nil)
	require.Equal(t, http.StatusOK, rec.Code, "empty body restores the latest export")

	rec = e.do(http.MethodPost, "/api/import/zh/csv", strings.NewReader("category_id,category_title\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "header-only csv")

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/import/th/csv", nil).Code, "no export to restore")
}

func TestImages(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/api/images", strings.NewReader("\x89PNG"), "Content-Type", "image/png")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token := decode[map[string]string](t, rec)["token"]
	assert.True(t, strings.HasPrefix(token, "{{img:assets/images/img_"), token)

	rec = e.do(http.MethodPost, "/api/images", strings.NewReader("hello"), "Content-Type", "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImport_QueuesAndCompletes(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "en", enDoc)
	e.orch.Start(context.Background())
	t.Cleanup(e.orch.Stop)

	body, ct := multipartUpload(t, map[string]string{"lang": "en", "mode": "append"}, "../printing.md", uploadMarkdown)
	rec := e.do(http.MethodPost, "/api/import", body, "Content-Type", ct)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	queued := decode[map[string]any](t, rec)
	jobID, _ := queued["job_id"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, "/api/import/"+jobID+"/status", queued["poll_url"])

	var status map[string]any
	require.Eventually(t, func() bool {
		rec := e.do(http.MethodGet, "/api/import/"+jobID+"/status", nil)
		if rec.Code != http.StatusOK {
			return false
		}
		status = nil
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			return false
		}
		return status["status"] == string(pipeline.StatusCompleted) || status["status"] == string(pipeline.StatusFailed)
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, string(pipeline.StatusCompleted), status["status"], status)
	assert.Equal(t, "printing.md", status["filename"])

	rec = e.do(http.MethodGet, "/api/documents/en", nil)
	doc := decode[struct {
		Document faq.Document `json:"document"`
	}](t, rec).Document
	require.Len(t, doc.Categories, 2)
	assert.Equal(t, "CAT-09", doc.Categories[1].ID)
}

func TestImport_Rejects(t *testing.T) {
	e := newTestEnv(t)

	body, ct := multipartUpload(t, map[string]string{"lang": "en"}, "notes.exe", "x")
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/import", body, "Content-Type", ct).Code)

	body, ct = multipartUpload(t, map[string]string{"lang": "fr"}, "notes.md", "x")
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/import", body, "Content-Type", ct).Code)

	body, ct = multipartUpload(t, map[string]string{"lang": "en", "mode": "merge"}, "notes.md", "x")
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/import", body, "Content-Type", ct).Code)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/import/nope/status", nil).Code)
}

func TestStats(t *testing.T) {
	e := newTestEnv(t)
	e.seed(t, "zh", zhDoc)
	e.doJSON(http.MethodPost, "/api/sessions", `{"lang":"zh"}`)

	rec := e.do(http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, stats["sessions"])
	assert.EqualValues(t, 0, stats["queue_depth"])
	assert.Equal(t, false, stats["mcp_enabled"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&faq.FormatError{Msg: "bad"}, http.StatusUnprocessableEntity},
		{faq.ErrNotFound, http.StatusNotFound},
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrConflict, http.StatusConflict},
		{faq.ErrIndex, http.StatusBadRequest},
		{faq.ErrPrecondition, http.StatusBadRequest},
		{storage.ErrUnavailable, http.StatusServiceUnavailable},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "unnamed", sanitizeFilename(""))
	assert.Equal(t, "a_b.md", sanitizeFilename("a..b.md"))
}
