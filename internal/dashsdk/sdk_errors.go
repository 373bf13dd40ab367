package dashsdk

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	ErrNoTargetURL  = errors.New("sdk: target url missing")
	ErrFileNotFound = errors.New("sdk: file not found")
	ErrUnauthorized = errors.New("sdk: unauthorized")
)

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error

	// File errors
	CodeFileNotFound  = "E_FILE_NOT_FOUND" // the requested file does not exist on the target
	CodeFileInvalid   = "E_FILE_INVALID"   // the uploaded file part is missing or empty
	CodePathInvalid   = "E_PATH_INVALID"   // the storage path is malformed or escapes the data root
	CodeStorageFailed = "E_STORAGE_FAILED" // a failure while writing, reading or deleting stored bytes
	CodeListingFailed = "E_LISTING_FAILED" // a failure while building the file tree
	CodeJournalFailed = "E_JOURNAL_FAILED" // a failure while querying the upload journal
	CodeUnknownError  = "E_UNKNOWN_ERR"    // unknown error
)

// APIError is the structured error body returned by the dashboard.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// handleAPIError is a helper function that handles the common error pattern
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	// got a response, but api returned an error
	if resp.IsErrorState() {
		if err, ok := resp.ErrorResult().(*APIError); ok && err.Message != "" {
			return fmt.Errorf("%s: %w", operation, err)
		}

		return fmt.Errorf("api error: %s %s", operation, resp.Status)
	}

	return nil
}
