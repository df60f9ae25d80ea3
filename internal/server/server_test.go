package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/boardplot/boardplot/pkg/cache"
	"github.com/boardplot/boardplot/pkg/errors"
	"github.com/boardplot/boardplot/pkg/observability"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{
		WorkDir: t.TempDir(),
		JobTTL:  time.Hour,
		Logger:  log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func doRequest(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := doRequest(t, h, http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
	if body["version"] == "" {
		t.Error("version field is empty")
	}
}

func TestFormats(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := doRequest(t, h, http.MethodGet, "/api/v1/formats", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Formats []formatInfo `json:"formats"`
	}
	decodeJSON(t, rec, &body)

	if len(body.Formats) != 6 {
		t.Fatalf("got %d formats, want 6", len(body.Formats))
	}
	byName := make(map[string]formatInfo)
	for _, f := range body.Formats {
		byName[f.Name] = f
	}
	gerber, ok := byName["gerber"]
	if !ok {
		t.Fatal("gerber format missing from listing")
	}
	if !gerber.JobFile {
		t.Error("gerber should support job files")
	}
	if !gerber.LayerExts {
		t.Error("gerber should support per-layer extensions")
	}
	if byName["svg"].JobFile {
		t.Error("svg should not claim job file support")
	}
}

func TestLayers(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := doRequest(t, h, http.MethodGet, "/api/v1/layers?copper=4", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		CopperLayers int         `json:"copper_layers"`
		Layers       []layerInfo `json:"layers"`
	}
	decodeJSON(t, rec, &body)

	if body.CopperLayers != 4 {
		t.Errorf("copper_layers = %d, want 4", body.CopperLayers)
	}
	names := make(map[string]layerInfo)
	for _, l := range body.Layers {
		names[l.Name] = l
	}
	for _, want := range []string{"F.Cu", "In1.Cu", "In2.Cu", "B.Cu", "F.SilkS", "Edge.Cuts"} {
		if _, ok := names[want]; !ok {
			t.Errorf("layer %q missing from listing", want)
		}
	}
	if _, ok := names["In3.Cu"]; ok {
		t.Error("In3.Cu listed for a 4-layer board")
	}
	if !names["In1.Cu"].Copper {
		t.Error("In1.Cu not marked as copper")
	}
	if names["F.SilkS"].Copper {
		t.Error("F.SilkS marked as copper")
	}
	if names["Edge.Cuts"].Suffix != "Edge_Cuts" {
		t.Errorf("Edge.Cuts suffix = %q, want Edge_Cuts", names["Edge.Cuts"].Suffix)
	}
}

func TestLayersRejectsBadCopper(t *testing.T) {
	h := newTestServer(t).Handler()

	for _, query := range []string{"copper=3", "copper=40", "copper=x"} {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/layers?"+query, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestPlotLifecycle(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	body := []byte(`{
		"board": {"name": "demo", "copper_layers": 2, "revision": "A"},
		"format": "gerber",
		"layers": ["F.Cu", "B.Cu", "Edge.Cuts"],
		"create_job_file": true
	}`)
	rec := doRequest(t, h, http.MethodPost, "/api/v1/plot", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, want 202\nbody: %s", rec.Code, rec.Body.String())
	}

	var submitted Job
	decodeJSON(t, rec, &submitted)
	if submitted.ID == "" {
		t.Fatal("submitted job has no ID")
	}
	if submitted.Status != StatusPending {
		t.Errorf("submitted status = %q, want %q", submitted.Status, StatusPending)
	}

	job := waitForJob(t, h, submitted.ID)
	if job.Status != StatusDone {
		t.Fatalf("job status = %q (error %q), want done", job.Status, job.Error)
	}
	if len(job.Files) != 3 {
		t.Fatalf("job produced %d files, want 3: %v", len(job.Files), job.Files)
	}
	if job.Files[0].Layer != "F.Cu" || job.Files[0].Path != "demo-F_Cu.gbr" {
		t.Errorf("first file = %+v, want F.Cu demo-F_Cu.gbr", job.Files[0])
	}
	if job.JobFile != "demo-job.gbrjob" {
		t.Errorf("job file = %q, want demo-job.gbrjob", job.JobFile)
	}

	// The files must exist on disk under the job's work directory.
	dir := s.jobDir(submitted.ID)
	for _, f := range job.Files {
		if _, err := os.Stat(filepath.Join(dir, f.Path)); err != nil {
			t.Errorf("plot file %s missing: %v", f.Path, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, job.JobFile))
	if err != nil {
		t.Fatalf("job file missing: %v", err)
	}
	if !strings.Contains(string(data), `"LayerNumber": 2`) {
		t.Errorf("job file does not record the copper count:\n%s", data)
	}
}

func waitForJob(t *testing.T, h http.Handler, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/jobs/"+id, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("poll status = %d, want 200", rec.Code)
		}
		var job Job
		decodeJSON(t, rec, &job)
		if job.Status == StatusDone || job.Status == StatusFailed {
			return &job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not settle before the deadline")
	return nil
}

func TestPlotRejectsUnknownField(t *testing.T) {
	h := newTestServer(t).Handler()
	body := []byte(`{"board": {"name": "demo"}, "bogus": true}`)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/plot", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPlotRejectsBadRequests(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		name string
		body string
		code string
	}{
		{
			name: "missing board name",
			body: `{"board": {"copper_layers": 2}}`,
			code: "INVALID_PROJECT",
		},
		{
			name: "traversal in name",
			body: `{"board": {"name": "../evil"}}`,
			code: "INVALID_PROJECT",
		},
		{
			name: "odd copper count",
			body: `{"board": {"name": "demo", "copper_layers": 3}}`,
			code: "INVALID_PROJECT",
		},
		{
			name: "unknown format",
			body: `{"board": {"name": "demo"}, "format": "tiff"}`,
			code: "INVALID_FORMAT",
		},
		{
			name: "unknown layer",
			body: `{"board": {"name": "demo"}, "layers": ["X.Cu"]}`,
			code: "INVALID_LAYER",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/v1/plot", []byte(tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400\nbody: %s", rec.Code, rec.Body.String())
			}
			var body map[string]string
			decodeJSON(t, rec, &body)
			if body["code"] != tt.code {
				t.Errorf("error code = %q, want %q", body["code"], tt.code)
			}
		})
	}
}

func TestJobNotFound(t *testing.T) {
	h := newTestServer(t).Handler()
	rec := doRequest(t, h, http.MethodGet, "/api/v1/jobs/no-such-job", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["code"] != "JOB_NOT_FOUND" {
		t.Errorf("error code = %q, want JOB_NOT_FOUND", body["code"])
	}
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	s.store.Set(newTestJob("a", StatusDone, time.Hour))
	s.store.Set(newTestJob("b", StatusDone, time.Hour))

	rec := doRequest(t, s.Handler(), http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Jobs          map[string]int `json:"jobs"`
		UptimeSeconds int            `json:"uptime_seconds"`
		Version       string         `json:"version"`
	}
	decodeJSON(t, rec, &body)
	if body.Jobs["done"] != 2 {
		t.Errorf("done = %d, want 2", body.Jobs["done"])
	}
	if body.Version == "" {
		t.Error("version is empty")
	}
}

func TestStackupRejectsBadParams(t *testing.T) {
	h := newTestServer(t).Handler()

	for _, query := range []string{"format=jpeg", "copper=5", "copper=abc"} {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/stackup?"+query, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", query, rec.Code)
		}
	}
}

// countingCacheHooks records cache events for assertions.
type countingCacheHooks struct {
	mu             sync.Mutex
	hit, miss, set int
}

func (h *countingCacheHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hit++
}

func (h *countingCacheHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.miss++
}

func (h *countingCacheHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.set++
}

func TestStackupRendersAndCaches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer fc.Close()

	s, err := New(Config{
		WorkDir: t.TempDir(),
		Logger:  log.New(io.Discard),
		Cache:   fc,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	h := s.Handler()

	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	first := doRequest(t, h, http.MethodGet, "/api/v1/stackup?copper=4", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200\nbody: %s", first.Code, first.Body.String())
	}
	if ct := first.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(first.Body.String(), "<svg") {
		t.Error("response does not look like SVG")
	}

	second := doRequest(t, h, http.MethodGet, "/api/v1/stackup?copper=4", nil)
	if second.Code != http.StatusOK {
		t.Fatalf("second status = %d, want 200", second.Code)
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Error("cached response differs from rendered response")
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.miss != 1 {
		t.Errorf("cache misses = %d, want 1", hooks.miss)
	}
	if hooks.hit != 1 {
		t.Errorf("cache hits = %d, want 1", hooks.hit)
	}
	if hooks.set != 1 {
		t.Errorf("cache sets = %d, want 1", hooks.set)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := doRequest(t, h, http.MethodGet, "/healthz", nil)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("no request ID assigned")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "caller-supplied")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "caller-supplied" {
		t.Errorf("request ID = %q, want caller-supplied", got)
	}
}

func TestCleanupRemovesExpiredJobDirs(t *testing.T) {
	s := newTestServer(t)

	job := newTestJob("stale", StatusDone, -time.Minute)
	s.store.Set(job)
	dir := s.jobDir("stale")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stale-F_Cu.gbr"), []byte("M02*\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s.cleanupExpired()

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expired job dir still exists: %v", err)
	}
	if s.store.Get("stale") != nil {
		t.Error("expired job still in store")
	}
}

func TestConfigDefaults(t *testing.T) {
	s, err := New(Config{WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if s.cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", s.cfg.Addr)
	}
	if s.cfg.JobTTL != time.Hour {
		t.Errorf("JobTTL = %v, want 1h", s.cfg.JobTTL)
	}
	if s.cfg.Logger == nil {
		t.Error("Logger not defaulted")
	}
	if s.cfg.Cache == nil {
		t.Error("Cache not defaulted")
	}
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("plain"), http.StatusInternalServerError},
		{errors.New(errors.ErrCodeInvalidLayer, "bad layer"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidFormat, "bad format"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeJobNotFound, "gone"), http.StatusNotFound},
		{errors.New(errors.ErrCodeInternal, "boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, tt.err)
		if rec.Code != tt.want {
			t.Errorf("writeError(%v) status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}
