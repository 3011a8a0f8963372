package port

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"papyr/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// DocumentRepository defines the contract for document persistence.
// All reads are scoped to the owning user; the pipeline performs
// exactly one UpdateStatus(PROCESSING) and one terminal write
// (UpdateResult or UpdateStatus(FAILED)) per run.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	UpdateStatus(ctx context.Context, docID uuid.UUID, status domain.DocumentStatus) error
	UpdateResult(ctx context.Context, docID uuid.UUID, status domain.DocumentStatus, extracted json.RawMessage, processedPages, totalPages int) error
}
