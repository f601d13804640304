package model

import "time"

type DocumentType string

const (
	DocumentTypePrescription  DocumentType = "prescription"
	DocumentTypeLabResult     DocumentType = "lab_result"
	DocumentTypeMedicalRecord DocumentType = "medical_record"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypePrescription, DocumentTypeLabResult, DocumentTypeMedicalRecord:
		return true
	}
	return false
}

// Document references stored content owned by a user. The URL is opaque.
type Document struct {
	ID         int64        `json:"id" db:"id"`
	UserID     int64        `json:"userId" db:"user_id"`
	Title      string       `json:"title" db:"title"`
	Type       DocumentType `json:"type" db:"type"`
	URL        string       `json:"url" db:"url"`
	UploadDate time.Time    `json:"uploadDate" db:"upload_date"`
}

type CreateDocumentRequest struct {
	UserID int64        `json:"userId" binding:"required,gt=0"`
	Title  string       `json:"title" binding:"required,notblank"`
	Type   DocumentType `json:"type" binding:"required,document_type"`
	URL    string       `json:"url" binding:"required,notblank"`
}

func (r *CreateDocumentRequest) ToDocument() *Document {
	return &Document{
		UserID: r.UserID,
		Title:  r.Title,
		Type:   r.Type,
		URL:    r.URL,
	}
}
