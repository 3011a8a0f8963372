package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated document owner.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents an uploaded document and its processing state.
// Status moves UPLOADED -> PROCESSING -> COMPLETED/FAILED and never
// backward; ExtractedData is non-nil iff Status is StatusCompleted.
type Document struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	OwnerID        uuid.UUID       `db:"owner_id" json:"owner_id"`
	FileName       string          `db:"file_name" json:"file_name"`
	ContentType    string          `db:"content_type" json:"content_type"`
	FileSize       int64           `db:"file_size" json:"file_size"`
	S3Bucket       string          `db:"s3_bucket" json:"-"`
	S3Key          string          `db:"s3_key" json:"-"`
	Status         DocumentStatus  `db:"status" json:"status"`
	ExtractedData  json.RawMessage `db:"extracted_data" json:"extracted_data,omitempty"`
	ProcessedPages int             `db:"processed_pages" json:"processed_pages"`
	TotalPages     int             `db:"total_pages" json:"total_pages"`
	UploadedAt     time.Time       `db:"uploaded_at" json:"uploaded_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}
