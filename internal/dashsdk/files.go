package dashsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
)

// escapePath escapes a relative storage key for use in a URL while keeping
// the path separators intact.
func escapePath(path string) string {
	u := url.URL{Path: path}
	return u.EscapedPath()
}

// ListFiles fetches the full listing tree. Optional credentials cover targets
// whose proxy protects the listing; pass nil for the unauthenticated attempt.
// A 401 surfaces as ErrUnauthorized so callers can retry with credentials.
func (c *Client) ListFiles(ctx context.Context, auth *Credentials) (root *FileNode, err error) {
	r := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&root)

	if auth != nil {
		r.SetBasicAuth(auth.Username, auth.Password)
	}

	resp, err := r.Get(routeFiles)
	if err != nil {
		return nil, fmt.Errorf("http request error: list files %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}

	if err := handleAPIError(resp, nil, "list files"); err != nil {
		return nil, err
	}

	if root == nil || !root.IsDir() {
		return nil, fmt.Errorf("list files: malformed listing from %s", c.baseURL)
	}

	return root, nil
}

// DeleteFile removes one file by its relative path. A 404 means the file is
// already gone and reports (false, nil), so deletes are idempotent.
func (c *Client) DeleteFile(ctx context.Context, path string, auth *Credentials) (deleted bool, err error) {
	r := c.http.R().
		SetContext(ctx)

	if auth != nil {
		r.SetBasicAuth(auth.Username, auth.Password)
	}

	resp, err := r.Delete(routeFiles + "/" + escapePath(path))
	if err != nil {
		return false, fmt.Errorf("http request error: delete %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}

	if err := handleAPIError(resp, nil, "delete"); err != nil {
		return false, err
	}

	return true, nil
}

// GetContent fetches the stored bytes of one file by its relative path. The
// dashboard serves JSON files verbatim and wraps everything else in a small
// JSON envelope; the body comes back as-is and interpretation is left to the
// caller.
func (c *Client) GetContent(ctx context.Context, path string, auth *Credentials) ([]byte, error) {
	r := c.http.R().
		SetContext(ctx)

	if auth != nil {
		r.SetBasicAuth(auth.Username, auth.Password)
	}

	resp, err := r.Get(routeContent + "/" + escapePath(path))
	if err != nil {
		return nil, fmt.Errorf("http request error: get content %w", err)
	}

	if err := handleAPIError(resp, nil, "get content"); err != nil {
		return nil, err
	}

	return resp.Bytes(), nil
}

// ListCollections fetches the journal-backed per-collection aggregates.
func (c *Client) ListCollections(ctx context.Context) (apiResp *CollectionsResponse, err error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&apiResp).
		Get(routeCollections)

	if err := handleAPIError(resp, err, "list collections"); err != nil {
		return nil, err
	}

	return apiResp, nil
}

// FlattenTree walks a listing tree depth-first and returns the sorted
// slash-joined paths of every file node reachable from the root's children.
// The root directory name itself is not part of the paths, matching how
// relative storage keys are built on upload.
func FlattenTree(root *FileNode) []string {
	if root == nil {
		return nil
	}

	var files []string
	var walk func(node *FileNode, prefix string)
	walk = func(node *FileNode, prefix string) {
		path := node.Name
		if prefix != "" {
			path = prefix + "/" + node.Name
		}
		if node.IsDir() {
			for _, child := range node.Children {
				walk(child, path)
			}
			return
		}
		files = append(files, path)
	}

	for _, child := range root.Children {
		walk(child, "")
	}

	sort.Strings(files)
	return files
}
