package sync

import (
	"context"
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadedPaths(f *fakeDashboard) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	paths := make([]string, 0, len(f.uploads))
	for _, rec := range f.uploads {
		paths = append(paths, rec.Path)
	}
	sort.Strings(paths)
	return paths
}

func TestPusherUploadsTrackedFiles(t *testing.T) {
	cfg := testConfig(t)
	dash := newFakeDashboard(t)

	writeLocal(t, cfg, "outputs/chunks/demo/a.json", "{}")
	writeLocal(t, cfg, "outputs/summaries/demo/b.txt", "summary")
	writeLocal(t, cfg, "prompts/concat/c.txt", "prompt")
	// neither a tracked extension nor inside a watched dir
	writeLocal(t, cfg, "outputs/chunks/readme.md", "# nope")
	writeLocal(t, cfg, "notes/d.json", "{}")

	p := NewPusher(cfg, newTestUploader(cfg, nil, dash.srv.URL))
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []string{
		"outputs/chunks/demo/a.json",
		"outputs/summaries/demo/b.txt",
		"prompts/concat/c.txt",
	}, uploadedPaths(dash))
}

func TestPusherSkipsOversizedFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxFileSize = 16
	dash := newFakeDashboard(t)

	writeLocal(t, cfg, "outputs/chunks/demo/small.json", "{}")
	writeLocal(t, cfg, "outputs/chunks/demo/big.json", `{"padding":"aaaaaaaaaaaaaaaaaaaaaaaa"}`)

	p := NewPusher(cfg, newTestUploader(cfg, nil, dash.srv.URL))
	require.NoError(t, p.Run(context.Background()), "a skipped file is not a failure")

	assert.Equal(t, []string{"outputs/chunks/demo/small.json"}, uploadedPaths(dash))
}

func TestPusherEmptyRootIsNoop(t *testing.T) {
	cfg := testConfig(t)
	dash := newFakeDashboard(t)

	p := NewPusher(cfg, newTestUploader(cfg, nil, dash.srv.URL))
	require.NoError(t, p.Run(context.Background()))
	assert.Zero(t, dash.uploadCount())
}

func TestPusherReportsFailures(t *testing.T) {
	cfg := testConfig(t)
	dash := newFakeDashboard(t)
	dash.failWith = http.StatusInternalServerError

	writeLocal(t, cfg, "outputs/chunks/demo/a.json", "{}")
	writeLocal(t, cfg, "outputs/chunks/demo/b.json", "{}")

	p := NewPusher(cfg, newTestUploader(cfg, nil, dash.srv.URL))
	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploaded 0/2")
}

func TestPusherStopsOnCanceledContext(t *testing.T) {
	cfg := testConfig(t)
	dash := newFakeDashboard(t)

	writeLocal(t, cfg, "outputs/chunks/demo/a.json", "{}")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPusher(cfg, newTestUploader(cfg, nil, dash.srv.URL))
	require.ErrorIs(t, p.Run(ctx), context.Canceled)
	assert.Zero(t, dash.uploadCount())
}
