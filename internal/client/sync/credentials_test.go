package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchdeck/watchdeck/internal/client/config"
	"github.com/watchdeck/watchdeck/internal/dashsdk"
)

type countingSource struct {
	calls int
	creds *dashsdk.Credentials
	err   error
}

func (c *countingSource) Resolve(_ context.Context, _ string) (*dashsdk.Credentials, error) {
	c.calls++
	return c.creds, c.err
}

func TestCachedCredentials_ResolvesOnce(t *testing.T) {
	source := &countingSource{creds: &dashsdk.Credentials{Username: "researcher", Password: "hunter2"}}
	cached := NewCachedCredentials(source)

	for range 3 {
		creds, err := cached.Resolve(context.Background(), "http://localhost:3000")
		require.NoError(t, err)
		require.NotNil(t, creds)
		assert.Equal(t, "hunter2", creds.Password)
	}

	assert.Equal(t, 1, source.calls, "source should be consulted exactly once")
}

func TestCachedCredentials_LatchesFailure(t *testing.T) {
	source := &countingSource{err: errors.New("prompt aborted")}
	cached := NewCachedCredentials(source)

	for range 3 {
		creds, err := cached.Resolve(context.Background(), "http://localhost:3000")
		require.NoError(t, err)
		assert.Nil(t, creds)
	}

	assert.Equal(t, 1, source.calls, "a failed prompt must not be repeated")
}

func TestCachedCredentials_LatchesEmptyPassword(t *testing.T) {
	source := &countingSource{creds: &dashsdk.Credentials{Username: "researcher"}}
	cached := NewCachedCredentials(source)

	creds, err := cached.Resolve(context.Background(), "http://localhost:3000")
	require.NoError(t, err)
	assert.Nil(t, creds)

	_, _ = cached.Resolve(context.Background(), "http://localhost:3000")
	assert.Equal(t, 1, source.calls)
}

func TestCachedCredentials_NilSource(t *testing.T) {
	cached := NewCachedCredentials(nil)
	creds, err := cached.Resolve(context.Background(), "http://localhost:3000")
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func newTestGate(source CredentialSource) *AuthGate {
	return NewAuthGate(source, config.DefaultProxyHosts, config.DefaultProtectedDatasets)
}

func TestAuthGate_IsProxied(t *testing.T) {
	gate := newTestGate(nil)

	assert.True(t, gate.IsProxied("http://localhost:3000"))
	assert.True(t, gate.IsProxied("https://demo.up.railway.app"))
	assert.False(t, gate.IsProxied("http://localhost:8000"))
	assert.False(t, gate.IsProxied("https://dashboard.example.com"))
}

func TestAuthGate_IsProtectedPath(t *testing.T) {
	gate := newTestGate(nil)

	assert.True(t, gate.IsProtectedPath("outputs/chunks/detectiveqa/file.json"))
	assert.True(t, gate.IsProtectedPath("prompts/detectiveqa.txt"))
	assert.False(t, gate.IsProtectedPath("outputs/chunks/demo/file.json"))
}

func TestAuthGate_ForPath(t *testing.T) {
	source := &countingSource{creds: &dashsdk.Credentials{Username: "researcher", Password: "hunter2"}}
	gate := newTestGate(source)

	tests := []struct {
		name      string
		targetURL string
		relPath   string
		wantAuth  bool
	}{
		{"proxied and protected", "https://demo.up.railway.app", "outputs/chunks/detectiveqa/x.json", true},
		{"proxied but public", "https://demo.up.railway.app", "outputs/chunks/demo/x.json", false},
		{"protected but direct", "http://localhost:8000", "outputs/chunks/detectiveqa/x.json", false},
		{"public and direct", "http://localhost:8000", "outputs/chunks/demo/x.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := gate.ForPath(context.Background(), tt.targetURL, tt.relPath)
			if tt.wantAuth {
				require.NotNil(t, creds)
				assert.Equal(t, "hunter2", creds.Password)
			} else {
				assert.Nil(t, creds)
			}
		})
	}
}

func TestAuthGate_ForTarget(t *testing.T) {
	source := &countingSource{creds: &dashsdk.Credentials{Username: "researcher", Password: "hunter2"}}
	gate := newTestGate(source)

	assert.NotNil(t, gate.ForTarget(context.Background(), "http://localhost:3000"))
	assert.Nil(t, gate.ForTarget(context.Background(), "http://localhost:8000"))
}

func TestAuthGate_SourceErrorSendsUnauthenticated(t *testing.T) {
	source := &countingSource{err: errors.New("tty unavailable")}
	gate := newTestGate(source)

	assert.Nil(t, gate.ForPath(context.Background(), "http://localhost:3000", "outputs/detectiveqa/x.json"))
}
