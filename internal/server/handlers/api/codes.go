package api

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error

	// File errors
	CodeFileNotFound  = "E_FILE_NOT_FOUND" // the requested file does not exist in the store
	CodeFileInvalid   = "E_FILE_INVALID"   // the uploaded file part is missing or empty
	CodePathInvalid   = "E_PATH_INVALID"   // the storage path is malformed or escapes the data root
	CodeStorageFailed = "E_STORAGE_FAILED" // a failure while writing, reading or deleting stored bytes
	CodeListingFailed = "E_LISTING_FAILED" // a failure while building the file tree
	CodeJournalFailed = "E_JOURNAL_FAILED" // a failure while querying the upload journal
)
