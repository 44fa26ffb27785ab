package domain

import (
	"bytes"
	"io"
	"time"
)

// FileInput is a file the user selected or dropped, before it is staged
type FileInput struct {
	Name     string
	MimeType string
	ModTime  time.Time
	Data     []byte
}

// PreviewHandle identifies a locally generated preview of an attachment.
// The zero value means no preview exists.
type PreviewHandle struct {
	ID   string
	Path string
}

// IsZero reports whether the handle refers to no preview
func (h PreviewHandle) IsZero() bool {
	return h.ID == "" && h.Path == ""
}

// AttachedFile represents one file staged for analysis
type AttachedFile struct {
	Name           string
	Size           int64
	MimeType       string
	LastModifiedAt time.Time
	Preview        PreviewHandle

	content []byte
}

// NewAttachedFile builds an attachment from an input, taking its own copy of the bytes
func NewAttachedFile(in FileInput, preview PreviewHandle) AttachedFile {
	content := make([]byte, len(in.Data))
	copy(content, in.Data)

	return AttachedFile{
		Name:           in.Name,
		Size:           int64(len(content)),
		MimeType:       in.MimeType,
		LastModifiedAt: in.ModTime,
		Preview:        preview,
		content:        content,
	}
}

// Reader returns a read-only view over the attachment's bytes
func (f AttachedFile) Reader() io.Reader {
	return bytes.NewReader(f.content)
}

// Content returns a copy of the attachment's bytes, for comparing a staged
// file against a newer version on disk
func (f AttachedFile) Content() []byte {
	out := make([]byte, len(f.content))
	copy(out, f.content)
	return out
}

// Info returns the display metadata of the attachment
func (f AttachedFile) Info() AttachmentInfo {
	return AttachmentInfo{
		Name:           f.Name,
		Size:           f.Size,
		MimeType:       f.MimeType,
		LastModifiedAt: f.LastModifiedAt,
		HasPreview:     !f.Preview.IsZero(),
		PreviewPath:    f.Preview.Path,
	}
}

// AttachmentInfo is the lightweight view of an attachment used for listings
type AttachmentInfo struct {
	Name           string
	Size           int64
	MimeType       string
	LastModifiedAt time.Time
	HasPreview     bool
	PreviewPath    string
}

// SizeKB returns the size in kilobytes for display
func (i AttachmentInfo) SizeKB() float64 {
	return float64(i.Size) / 1024
}
