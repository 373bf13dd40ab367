package dashsdk

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// UploadParams describe one multipart upload. Timestamp is the RFC3339 UTC
// capture time and is echoed back by the target unchanged.
type UploadParams struct {
	// FilePath is the absolute local path read for the file part.
	FilePath string
	// Path is the relative storage key on the target.
	Path       string
	Collection string
	Timestamp  string
	// Auth carries optional basic-auth credentials for protected content.
	Auth *Credentials
}

// UploadResponse is the body of a successful POST /upload.
type UploadResponse struct {
	Status     string `json:"status"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	Collection string `json:"collection"`
	Timestamp  string `json:"timestamp"`
}

// FileNode is one node of the listing tree returned by GET /api/files.
// Directories carry Children; files carry Size, Modified and Extension.
type FileNode struct {
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Path      string      `json:"path"`
	Children  []*FileNode `json:"children,omitempty"`
	Size      int64       `json:"size,omitempty"`
	Modified  string      `json:"modified,omitempty"`
	Extension string      `json:"extension,omitempty"`
}

func (n *FileNode) IsDir() bool {
	return n.Type == NodeTypeDirectory
}

// CollectionStat is one aggregate row of GET /api/collections.
type CollectionStat struct {
	Collection string `json:"collection"`
	Files      int64  `json:"files"`
	TotalSize  int64  `json:"total_size"`
	LastUpload string `json:"last_upload"`
}

// CollectionsResponse is the body of GET /api/collections.
type CollectionsResponse struct {
	Collections []*CollectionStat `json:"collections"`
}
