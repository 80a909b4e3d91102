package model

// ConvertRequest is the body of POST /api/convert.
type ConvertRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ConvertFromStreamRequest is the body of POST /api/convert-from-stream.
// The browser-side collaborator supplies a direct media URL it extracted
// from the watch page, plus the title it read from the player response.
type ConvertFromStreamRequest struct {
	StreamURL string `json:"streamUrl" validate:"required,url"`
	Title     string `json:"title" validate:"required"`
	VideoID   string `json:"videoId" validate:"required"`
}

// ConvertResponse is returned by both conversion endpoints on success.
// Method names the strategy that produced the artifact.
type ConvertResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Method   string `json:"method"`
}

// FetchPageRequest is the body of POST /api/fetch-youtube.
type FetchPageRequest struct {
	VideoID string `json:"videoId" validate:"required"`
}

// FetchPageResponse carries raw watch-page markup back to the browser so it
// can parse the player response without tripping cross-origin restrictions.
type FetchPageResponse struct {
	HTML string `json:"html"`
}
