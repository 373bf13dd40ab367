package files

type UploadResponse struct {
	Status     string `json:"status"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	Collection string `json:"collection"`
	Timestamp  string `json:"timestamp"`
}

type DeleteResponse struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Message string `json:"message"`
}
