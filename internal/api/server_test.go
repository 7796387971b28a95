package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgallion1/docsift/internal/config"
	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/embed/embedtest"
	"github.com/dgallion1/docsift/internal/outline"
	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/dgallion1/docsift/internal/rank"
)

const testKey = "test-key"

type testServer struct {
	*Server
	orch  *pipeline.Orchestrator
	stats *embed.Stats
}

func newTestServer(t *testing.T, provider embed.Provider, start bool) *testServer {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	cfg := config.Config{
		DocsiftAPIKey:  testKey,
		EmbedProvider:  "fake",
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1024,
		JobTTL:         time.Hour,
	}
	stats := embed.NewStats(time.Hour)
	analyzer := &pipeline.Analyzer{
		Embedder: embed.NewLazy(func(context.Context) (embed.Provider, error) {
			return &embed.Timed{Provider: provider, Stats: stats}, nil
		}),
		Outline:       outline.DefaultConfig(),
		Floor:         rank.DefaultFloor,
		MaxConcurrent: 2,
		Log:           log,
	}
	orch := pipeline.NewOrchestrator(cfg, analyzer, log)
	if start {
		orch.Start(context.Background())
		t.Cleanup(orch.Stop)
	}
	outliner := &pipeline.Outliner{Outline: outline.DefaultConfig(), MaxConcurrent: 1, Log: log}
	return &testServer{Server: NewServer(orch, outliner, stats, log, cfg), orch: orch, stats: stats}
}

type part struct {
	field, name, body string
}

func multipartBody(t *testing.T, fields map[string]string, files ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(f.body))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func (ts *testServer) do(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t, &embedtest.Fake{}, false)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, &embedtest.Fake{}, false)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic " + testKey},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats/embed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			ts.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestOutlineEndpoint(t *testing.T) {
	ts := newTestServer(t, &embedtest.Fake{}, false)
	body, ct := multipartBody(t, nil, part{"file", "guide.md", "# Guide\n\nSome body text here.\n\n## Part\n\nMore.\n"})

	rec := ts.do(t, http.MethodPost, "/api/outline", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var res outline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Title != "Guide" {
		t.Errorf("expected title Guide, got %q", res.Title)
	}
	if len(res.Outline) != 1 || res.Outline[0].Text != "Part" || res.Outline[0].Level != outline.H2 {
		t.Errorf("unexpected outline %+v", res.Outline)
	}
}

func TestOutlineRejectsBadUploads(t *testing.T) {
	ts := newTestServer(t, &embedtest.Fake{}, false)

	tests := []struct {
		name string
		file part
		want int
	}{
		{"unsupported", part{"file", "sheet.xlsx", "x"}, http.StatusBadRequest},
		{"too large", part{"file", "big.txt", string(bytes.Repeat([]byte("a"), 2048))}, http.StatusRequestEntityTooLarge},
		{"wrong field", part{"upload", "a.txt", "x"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, nil, tt.file)
			rec := ts.do(t, http.MethodPost, "/api/outline", body, ct)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body)
			}
		})
	}
}

func TestAnalyzeLifecycle(t *testing.T) {
	fake := &embedtest.Fake{Default: []float32{1, 0}}
	ts := newTestServer(t, fake, true)

	body, ct := multipartBody(t,
		map[string]string{"persona": "Analyst", "job": "find revenue"},
		part{"files", "a.txt", "Revenue grew.\n\nCosts fell."},
	)
	rec := ts.do(t, http.MethodPost, "/api/analyze", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		Status  string `json:"status"`
		PollURL string `json:"poll_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if accepted.PollURL != "/api/analyze/"+accepted.JobID+"/status" {
		t.Errorf("unexpected poll url %q", accepted.PollURL)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = ts.do(t, http.MethodGet, accepted.PollURL, nil, "")
		var snap pipeline.JobSnapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if snap.Status.Done() {
			if snap.Status != pipeline.StatusCompleted {
				t.Fatalf("expected completed, got %q: %v", snap.Status, snap.Progress.Errors)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec = ts.do(t, http.MethodGet, "/api/analyze/"+accepted.JobID+"/result", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var res rank.RunResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(res.ExtractedSections) != 2 || res.ExtractedSections[0].SectionTitle != "Page 1, Block 0" {
		t.Errorf("unexpected sections %+v", res.ExtractedSections)
	}

	rec = ts.do(t, http.MethodGet, "/api/stats/embed", nil, "")
	var stats struct {
		Stats embed.StatsSnapshot `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Stats.Calls != 2 || stats.Stats.Texts != 3 {
		t.Errorf("expected 2 calls over 3 texts, got %+v", stats.Stats)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	ts := newTestServer(t, &embedtest.Fake{}, false)

	tests := []struct {
		name   string
		fields map[string]string
		files  []part
	}{
		{"missing persona", map[string]string{"job": "j"}, []part{{"files", "a.txt", "x"}}},
		{"missing job", map[string]string{"persona": "p"}, []part{{"files", "a.txt", "x"}}},
		{"no files", map[string]string{"persona": "p", "job": "j"}, nil},
		{"unsupported file", map[string]string{"persona": "p", "job": "j"}, []part{{"files", "a.exe", "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.fields, tt.files...)
			rec := ts.do(t, http.MethodPost, "/api/analyze", body, ct)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestAnalyzeResultStates(t *testing.T) {
	ts := newTestServer(t, &embedtest.Fake{}, false)

	rec := ts.do(t, http.MethodGet, "/api/analyze/unknown/result", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}
	rec = ts.do(t, http.MethodGet, "/api/analyze/unknown/status", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown status, got %d", rec.Code)
	}

	// Workers are not running, so the job stays queued.
	job := pipeline.NewJob("p", "j", []pipeline.Input{{Name: "a.txt", Data: []byte("x")}})
	if err := ts.orch.Submit(job); err != nil {
		t.Fatal(err)
	}
	rec = ts.do(t, http.MethodGet, "/api/analyze/"+job.ID+"/result", nil, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 while queued, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd.md": "passwd.md",
		`C:\docs\memo.docx`:   "memo.docx",
		"..pdf":               "_pdf",
		"":                    "unnamed",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
