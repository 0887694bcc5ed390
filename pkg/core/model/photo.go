package model

import "io"

type Photo struct {
	ID               int64     `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"originalFilename"`
	Caption          string    `json:"caption"`
	FileSize         int64     `json:"fileSize"`
	ContentType      string    `json:"contentType"`
	UploadedAt       LocalTime `json:"uploadedAt"`
	EventID          int64     `json:"eventId"`
	UploadedBy       *Identity `json:"uploadedBy,omitempty"`
}

// FileDescriptor is one user-selected file. Open may be called more than once.
type FileDescriptor struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadBatch is the ordered set of files waiting to be uploaded.
type UploadBatch struct {
	Files   []FileDescriptor
	Caption string
}

func (b UploadBatch) Empty() bool {
	return len(b.Files) == 0
}
