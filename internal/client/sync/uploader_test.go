package sync

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchdeck/watchdeck/internal/client/config"
)

// uploadRecord is one multipart POST /upload as the dashboard saw it.
type uploadRecord struct {
	Path       string
	Collection string
	Timestamp  string
	Body       string
	HasAuth    bool
}

// fakeDashboard records uploads and deletes like the real service would.
type fakeDashboard struct {
	mu       sync.Mutex
	uploads  []uploadRecord
	deletes  []string
	failWith int // non-zero: every request fails with this status

	srv *httptest.Server
}

func newFakeDashboard(t *testing.T) *fakeDashboard {
	t.Helper()
	f := &fakeDashboard{}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeDashboard) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.failWith)
		json.NewEncoder(w).Encode(map[string]string{"code": "E_STORAGE_FAILED", "error": "induced failure"})
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/upload":
		_, _, hasAuth := r.BasicAuth()
		file, _, err := r.FormFile("file")
		var body []byte
		if err == nil {
			body, _ = io.ReadAll(file)
			file.Close()
		}
		f.uploads = append(f.uploads, uploadRecord{
			Path:       r.FormValue("path"),
			Collection: r.FormValue("collection"),
			Timestamp:  r.FormValue("timestamp"),
			Body:       string(body),
			HasAuth:    hasAuth,
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success", "path": r.FormValue("path"), "size": len(body),
			"collection": r.FormValue("collection"), "timestamp": r.FormValue("timestamp"),
		})

	case r.Method == http.MethodDelete:
		f.deletes = append(f.deletes, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "success"})

	case r.Method == http.MethodGet && r.URL.Path == "/health":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeDashboard) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func (f *fakeDashboard) lastUpload() uploadRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads[len(f.uploads)-1]
}

func (f *fakeDashboard) deletedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Root:         t.TempDir(),
		WatchDirs:    config.DefaultWatchDirs,
		Extensions:   config.DefaultExtensions,
		MaxFileSize:  config.DefaultMaxFileSize,
		Debounce:     config.DefaultDebounce,
		DeleteSettle: config.DefaultDeleteSettle,
		HTTPTimeout:  10 * time.Second,
		LocalURL:     config.DefaultLocalURL,
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func writeLocal(t *testing.T, cfg *config.Config, rel, content string) string {
	t.Helper()
	path := filepath.Join(cfg.Root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestUploader(cfg *config.Config, gate *AuthGate, urls ...string) *Uploader {
	if gate == nil {
		gate = NewAuthGate(nil, config.DefaultProxyHosts, config.DefaultProtectedDatasets)
	}
	return NewUploader(cfg, NewTargets(urls, cfg.HTTPTimeout), gate)
}

func TestUploaderUploadsToAllTargets(t *testing.T) {
	cfg := testConfig(t)
	first := newFakeDashboard(t)
	second := newFakeDashboard(t)

	path := writeLocal(t, cfg, "outputs/chunks/demo/x.json", `{"k":1}`)
	u := newTestUploader(cfg, nil, first.srv.URL, second.srv.URL)

	require.NoError(t, u.Upload(context.Background(), path))

	for _, dash := range []*fakeDashboard{first, second} {
		require.Equal(t, 1, dash.uploadCount())
		rec := dash.lastUpload()
		assert.Equal(t, "outputs/chunks/demo/x.json", rec.Path)
		assert.Equal(t, "demo", rec.Collection)
		assert.Equal(t, `{"k":1}`, rec.Body)
		assert.False(t, rec.HasAuth)

		ts, err := time.Parse(time.RFC3339, rec.Timestamp)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, ts.Location())
	}
}

func TestUploaderMissingFileIsNoop(t *testing.T) {
	cfg := testConfig(t)
	dash := newFakeDashboard(t)
	u := newTestUploader(cfg, nil, dash.srv.URL)

	err := u.Upload(context.Background(), filepath.Join(cfg.Root, "outputs", "gone.json"))
	require.NoError(t, err)
	assert.Zero(t, dash.uploadCount(), "no request should go out for a vanished file")
}

func TestUploaderPartialFailure(t *testing.T) {
	cfg := testConfig(t)
	broken := newFakeDashboard(t)
	broken.failWith = http.StatusInternalServerError
	healthy := newFakeDashboard(t)

	path := writeLocal(t, cfg, "outputs/chunks/demo/x.json", "{}")
	u := newTestUploader(cfg, nil, broken.srv.URL, healthy.srv.URL)

	err := u.Upload(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1/2")

	// the failure on the first target must not stop the second
	assert.Equal(t, 1, healthy.uploadCount())
}

func TestUploaderAuthGate(t *testing.T) {
	cfg := testConfig(t)
	dash := newFakeDashboard(t)

	// the httptest server is 127.0.0.1, declare it proxy-fronted
	source := NewStaticCredentials("researcher", "hunter2")
	gate := NewAuthGate(source, []string{"127.0.0.1"}, []string{"detectiveqa"})
	u := newTestUploader(cfg, gate, dash.srv.URL)

	public := writeLocal(t, cfg, "outputs/chunks/demo/x.json", "{}")
	require.NoError(t, u.Upload(context.Background(), public))
	assert.False(t, dash.lastUpload().HasAuth, "public content must not carry credentials")

	protected := writeLocal(t, cfg, "outputs/chunks/detectiveqa/x.json", "{}")
	require.NoError(t, u.Upload(context.Background(), protected))
	assert.True(t, dash.lastUpload().HasAuth, "protected content through the proxy needs basic auth")
}

func TestUploaderDelete(t *testing.T) {
	cfg := testConfig(t)
	dash := newFakeDashboard(t)
	u := newTestUploader(cfg, nil, dash.srv.URL)

	path := filepath.Join(cfg.Root, "outputs", "chunks", "demo", "x.json")
	require.NoError(t, u.Delete(context.Background(), path))

	require.Len(t, dash.deletedPaths(), 1)
	assert.Equal(t, "/api/files/outputs/chunks/demo/x.json", dash.deletedPaths()[0])
}

func TestUploaderDeleteTreats404AsSuccess(t *testing.T) {
	cfg := testConfig(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"code": "E_FILE_NOT_FOUND", "error": "not found"})
	}))
	defer srv.Close()

	u := newTestUploader(cfg, nil, srv.URL)
	err := u.Delete(context.Background(), filepath.Join(cfg.Root, "outputs", "x.json"))
	assert.NoError(t, err)
}

func TestUploaderDeleteFailure(t *testing.T) {
	cfg := testConfig(t)
	dash := newFakeDashboard(t)
	dash.failWith = http.StatusInternalServerError

	u := newTestUploader(cfg, nil, dash.srv.URL)
	err := u.Delete(context.Background(), filepath.Join(cfg.Root, "outputs", "x.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0/1")
}
