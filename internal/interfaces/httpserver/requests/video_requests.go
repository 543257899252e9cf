package requests

// UploadForm carries the optional metadata fields accompanying the
// multipart video upload.
type UploadForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
}
