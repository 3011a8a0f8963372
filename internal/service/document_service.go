package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"papyr/internal/classify"
	"papyr/internal/config"
	"papyr/internal/domain"
	"papyr/internal/port"
)

// UploadDocumentInput is the DTO for document upload requests.
type UploadDocumentInput struct {
	OwnerID     uuid.UUID
	FileName    string
	ContentType string // declared by the client; dispatch key for the pipeline
	Data        []byte
}

// DocumentService owns the document lifecycle: it creates records,
// stores raw bytes, and drives the UPLOADED -> PROCESSING ->
// COMPLETED/FAILED state machine around pipeline runs.
type DocumentService interface {
	Upload(ctx context.Context, input *UploadDocumentInput) (*domain.Document, error)
	GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	GetDownloadURL(ctx context.Context, ownerID, docID uuid.UUID) (string, error)
	ProcessDocument(ctx context.Context, doc *domain.Document)
}

type documentService struct {
	docRepo   port.DocumentRepository
	storage   port.ObjectStorage
	processor port.DocumentProcessor
	queue     *ProcessQueue
	s3cfg     *config.S3Config
	maxBytes  int64
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	storage port.ObjectStorage,
	processor port.DocumentProcessor,
	queue *ProcessQueue,
	s3cfg *config.S3Config,
	uploadCfg *config.UploadConfig,
) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		storage:   storage,
		processor: processor,
		queue:     queue,
		s3cfg:     s3cfg,
		maxBytes:  uploadCfg.MaxFileSizeMB * 1024 * 1024,
	}
}

// Upload validates the file, persists the UPLOADED record and the raw
// bytes, and submits the document for asynchronous processing. The
// caller always gets the created record back; processing outcomes are
// observable only through the document's status afterwards.
func (s *documentService) Upload(ctx context.Context, input *UploadDocumentInput) (*domain.Document, error) {
	if len(input.Data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if int64(len(input.Data)) > s.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	contentType := input.ContentType
	if contentType == "" {
		// Some clients omit the part content type; fall back to the extension.
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.FileName), "."))
		contentType = domain.AllowedExtensions[ext]
	}
	if _, ok := domain.SupportedContentTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, contentType)
	}

	// A mismatch here is not fatal; the pipeline dispatches on the
	// declared type and logs the discrepancy again at run time.
	if meta, err := classify.Classify(input.Data, input.FileName); err == nil && meta.MIMEType != contentType {
		log.Printf("documentService.Upload: declared type %q but sniffed %q for %s",
			contentType, meta.MIMEType, input.FileName)
	}

	docID := uuid.New()
	doc := &domain.Document{
		ID:          docID,
		OwnerID:     input.OwnerID,
		FileName:    input.FileName,
		ContentType: contentType,
		FileSize:    int64(len(input.Data)),
		S3Bucket:    s.s3cfg.Bucket,
		S3Key:       fmt.Sprintf("users/%s/documents/%s/%s", input.OwnerID, docID, input.FileName),
		Status:      domain.StatusUploaded,
		UploadedAt:  time.Now().UTC(),
	}

	log.Printf("documentService.Upload: creating document %s (%s, %d bytes) for user %s",
		doc.ID, contentType, doc.FileSize, input.OwnerID)

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      doc.S3Bucket,
		Key:         doc.S3Key,
		Body:        bytes.NewReader(input.Data),
		ContentType: contentType,
		Size:        doc.FileSize,
	})
	if err != nil {
		log.Printf("documentService.Upload: blob upload failed for %s: %v", doc.ID, err)
		s.failProcessing(ctx, doc.ID, fmt.Errorf("uploading to blob store: %w", err))
		return nil, domain.ErrUploadFailed
	}

	// Copy before handing off so the caller's value is independent of
	// the background run.
	result := *doc

	if _, err := s.queue.Submit(doc); err != nil {
		// Backpressure: the queue is full. The record stays observable,
		// but this run will never start, so it fails terminally now.
		log.Printf("documentService.Upload: submit failed for %s: %v", doc.ID, err)
		s.failProcessing(ctx, doc.ID, err)
		result.Status = domain.StatusFailed
	}

	return &result, nil
}

// ProcessDocument executes one pipeline run for doc. It is the single
// point where stage failures are caught: exactly one PROCESSING write
// on entry and exactly one terminal write on exit, COMPLETED with data
// or FAILED with the cause logged.
func (s *documentService) ProcessDocument(ctx context.Context, doc *domain.Document) {
	log.Printf("documentService.ProcessDocument: starting document %s (%s)", doc.ID, doc.ContentType)

	if err := s.docRepo.UpdateStatus(ctx, doc.ID, domain.StatusProcessing); err != nil {
		log.Printf("documentService.ProcessDocument: failed to set processing status for %s: %v", doc.ID, err)
		return
	}

	data, err := s.storage.Download(ctx, doc.S3Bucket, doc.S3Key)
	if err != nil {
		s.failProcessing(ctx, doc.ID, fmt.Errorf("downloading document: %w", err))
		return
	}

	result, err := s.processor.Process(ctx, data, doc.ContentType, doc.FileName)
	if err != nil {
		s.failProcessing(ctx, doc.ID, err)
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.failProcessing(ctx, doc.ID, fmt.Errorf("encoding extraction result: %w", err))
		return
	}

	pages := result.Metadata.PagesProcessed
	if err := s.docRepo.UpdateResult(ctx, doc.ID, domain.StatusCompleted, payload, pages, pages); err != nil {
		log.Printf("documentService.ProcessDocument: failed to save result for %s: %v", doc.ID, err)
		return
	}

	log.Printf("documentService.ProcessDocument: document %s completed (%d pages)", doc.ID, pages)
}

// failProcessing writes the FAILED terminal status. The cause is
// logged with the document id but never persisted on the record.
func (s *documentService) failProcessing(ctx context.Context, docID uuid.UUID, cause error) {
	log.Printf("documentService.failProcessing: document %s failed: %v", docID, cause)
	if err := s.docRepo.UpdateStatus(ctx, docID, domain.StatusFailed); err != nil {
		log.Printf("documentService.failProcessing: failed to update status for %s: %v", docID, err)
	}
}

func (s *documentService) GetByID(ctx context.Context, ownerID, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, ownerID, docID)
}

func (s *documentService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.ListByOwner(ctx, ownerID, offset, limit)
}

func (s *documentService) GetDownloadURL(ctx context.Context, ownerID, docID uuid.UUID) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, ownerID, docID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, doc.S3Bucket, doc.S3Key, s.s3cfg.PresignExpiry)
}
