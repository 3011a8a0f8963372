package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"papyr/internal/domain"
	"papyr/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = now
	}
	doc.UpdatedAt = now

	query := `INSERT INTO documents (
		id, owner_id, file_name, content_type, file_size,
		s3_bucket, s3_key, status, extracted_data,
		processed_pages, total_pages, uploaded_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.OwnerID, doc.FileName, doc.ContentType, doc.FileSize,
		doc.S3Bucket, doc.S3Key, doc.Status, doc.ExtractedData,
		doc.ProcessedPages, doc.TotalPages, doc.UploadedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1 AND owner_id = $2", docID, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE owner_id = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByOwner count: %w", err)
	}

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents WHERE owner_id = $1
		 ORDER BY uploaded_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByOwner: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) UpdateStatus(ctx context.Context, docID uuid.UUID, status domain.DocumentStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), docID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateResult records a terminal status together with the extracted
// payload and page counts in a single statement, so a reader never
// observes COMPLETED without its data.
func (r *documentRepo) UpdateResult(ctx context.Context, docID uuid.UUID, status domain.DocumentStatus, extracted json.RawMessage, processedPages, totalPages int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents
		 SET status = $1, extracted_data = $2, processed_pages = $3, total_pages = $4, updated_at = $5
		 WHERE id = $6`,
		status, extracted, processedPages, totalPages, time.Now().UTC(), docID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateResult: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
