package models

// File is a stored upload as returned to the dashboard.
type File struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	Original    string `json:"originalName"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}
