package sync

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/watchdeck/watchdeck/internal/dashsdk"
)

// CredentialSource resolves basic-auth credentials for protected content.
// Implementations may read flags, prompt interactively, or do nothing; a nil
// result means the request goes out unauthenticated.
type CredentialSource interface {
	Resolve(ctx context.Context, targetURL string) (*dashsdk.Credentials, error)
}

// StaticCredentials returns the same credentials on every resolution, for
// when the password came in via flag or environment.
type StaticCredentials struct {
	creds dashsdk.Credentials
}

func NewStaticCredentials(username, password string) *StaticCredentials {
	return &StaticCredentials{creds: dashsdk.Credentials{Username: username, Password: password}}
}

func (s *StaticCredentials) Resolve(_ context.Context, _ string) (*dashsdk.Credentials, error) {
	return &s.creds, nil
}

// CachedCredentials memoizes the first successful resolution and latches
// failures, so an aborted prompt is asked once instead of once per file.
type CachedCredentials struct {
	source CredentialSource

	mu     sync.Mutex
	creds  *dashsdk.Credentials
	failed bool
}

func NewCachedCredentials(source CredentialSource) *CachedCredentials {
	return &CachedCredentials{source: source}
}

func (c *CachedCredentials) Resolve(ctx context.Context, targetURL string) (*dashsdk.Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.creds != nil {
		return c.creds, nil
	}
	if c.failed || c.source == nil {
		return nil, nil
	}

	creds, err := c.source.Resolve(ctx, targetURL)
	if err != nil {
		slog.Warn("credential resolution failed, continuing unauthenticated", "error", err)
		c.failed = true
		return nil, nil
	}
	if creds == nil || creds.Password == "" {
		c.failed = true
		return nil, nil
	}

	c.creds = creds
	return c.creds, nil
}

// AuthGate decides which requests carry credentials: only proxy-fronted
// targets ask for auth, and only for protected dataset content. Everything
// else stays unauthenticated regardless of what the source could provide.
type AuthGate struct {
	source            CredentialSource
	proxyHosts        []string
	protectedDatasets []string
}

func NewAuthGate(source CredentialSource, proxyHosts, protectedDatasets []string) *AuthGate {
	return &AuthGate{
		source:            source,
		proxyHosts:        proxyHosts,
		protectedDatasets: protectedDatasets,
	}
}

// IsProxied reports whether the target URL sits behind the auth proxy.
func (g *AuthGate) IsProxied(targetURL string) bool {
	for _, host := range g.proxyHosts {
		if host != "" && strings.Contains(targetURL, host) {
			return true
		}
	}
	return false
}

// IsProtectedPath reports whether the relative path touches a protected dataset.
func (g *AuthGate) IsProtectedPath(relPath string) bool {
	for _, dataset := range g.protectedDatasets {
		dataset = strings.TrimSpace(dataset)
		if dataset != "" && strings.Contains(relPath, dataset) {
			return true
		}
	}
	return false
}

// ForPath returns credentials for a path-scoped request, or nil when the
// target/path combination does not require them.
func (g *AuthGate) ForPath(ctx context.Context, targetURL, relPath string) *dashsdk.Credentials {
	if !g.IsProxied(targetURL) || !g.IsProtectedPath(relPath) {
		return nil
	}
	return g.resolve(ctx, targetURL)
}

// ForTarget returns credentials for a request that is not scoped to a path,
// like the file listing, when the target sits behind the proxy.
func (g *AuthGate) ForTarget(ctx context.Context, targetURL string) *dashsdk.Credentials {
	if !g.IsProxied(targetURL) {
		return nil
	}
	return g.resolve(ctx, targetURL)
}

func (g *AuthGate) resolve(ctx context.Context, targetURL string) *dashsdk.Credentials {
	if g.source == nil {
		return nil
	}
	creds, err := g.source.Resolve(ctx, targetURL)
	if err != nil {
		slog.Warn("credential resolution failed, sending unauthenticated", "target", targetURL, "error", err)
		return nil
	}
	return creds
}
