package dashsdk

import (
	"context"

	"github.com/watchdeck/watchdeck/internal/utils"
)

// UploadFile sends one file as a multipart POST /upload. The file is
// re-checked right before the request because the event that scheduled the
// upload may be long stale.
func (c *Client) UploadFile(ctx context.Context, params *UploadParams) (apiResp *UploadResponse, err error) {
	if !utils.FileExists(params.FilePath) {
		return nil, ErrFileNotFound
	}

	r := c.http.R().
		SetContext(ctx).
		SetFile("file", params.FilePath).
		SetFormData(map[string]string{
			"path":       params.Path,
			"collection": params.Collection,
			"timestamp":  params.Timestamp,
		}).
		SetSuccessResult(&apiResp)

	if params.Auth != nil {
		r.SetBasicAuth(params.Auth.Username, params.Auth.Password)
	}

	resp, err := r.Post(routeUpload)
	if err := handleAPIError(resp, err, "upload"); err != nil {
		return nil, err
	}

	return apiResp, nil
}
