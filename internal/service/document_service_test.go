package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"papyr/internal/config"
	"papyr/internal/domain"
	"papyr/internal/port"
	"papyr/internal/service"
	"papyr/mocks"
)

func setupDocumentService(queueSize int) (
	service.DocumentService,
	*mocks.MockDocumentRepo,
	*mocks.MockObjectStorage,
	*mocks.MockDocumentProcessor,
	*service.ProcessQueue,
) {
	docRepo := new(mocks.MockDocumentRepo)
	storage := new(mocks.MockObjectStorage)
	processor := new(mocks.MockDocumentProcessor)
	queue := service.NewProcessQueue(&config.QueueConfig{Workers: 1, Size: queueSize})
	s3cfg := &config.S3Config{Bucket: "test-bucket", PresignExpiry: 900}
	uploadCfg := &config.UploadConfig{MaxFileSizeMB: 1}
	svc := service.NewDocumentService(docRepo, storage, processor, queue, s3cfg, uploadCfg)
	return svc, docRepo, storage, processor, queue
}

// --- Upload ---

func TestDocumentService_Upload_Success(t *testing.T) {
	svc, docRepo, storage, _, queue := setupDocumentService(4)

	ownerID := uuid.New()
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "s3://test-bucket/key"}, nil)

	doc, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		OwnerID:     ownerID,
		FileName:    "invoice.pdf",
		ContentType: domain.ContentTypePDF,
		Data:        []byte("%PDF-1.4 content"),
	})

	assert.NoError(t, err)
	assert.Equal(t, ownerID, doc.OwnerID)
	assert.Equal(t, domain.StatusUploaded, doc.Status)
	assert.Equal(t, domain.ContentTypePDF, doc.ContentType)
	assert.Empty(t, doc.ExtractedData)
	assert.Contains(t, doc.S3Key, ownerID.String())
	assert.Contains(t, doc.S3Key, "invoice.pdf")
	assert.Equal(t, 1, queue.Depth())

	docRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestDocumentService_Upload_EmptyFile(t *testing.T) {
	svc, _, _, _, _ := setupDocumentService(4)

	doc, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		OwnerID:     uuid.New(),
		FileName:    "empty.pdf",
		ContentType: domain.ContentTypePDF,
	})

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
}

func TestDocumentService_Upload_FileTooLarge(t *testing.T) {
	svc, _, _, _, _ := setupDocumentService(4)

	doc, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		OwnerID:     uuid.New(),
		FileName:    "big.pdf",
		ContentType: domain.ContentTypePDF,
		Data:        make([]byte, 2<<20),
	})

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestDocumentService_Upload_UnsupportedType(t *testing.T) {
	svc, _, _, _, _ := setupDocumentService(4)

	doc, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		OwnerID:     uuid.New(),
		FileName:    "archive.zip",
		ContentType: "application/zip",
		Data:        []byte("PK payload"),
	})

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestDocumentService_Upload_ContentTypeFromExtension(t *testing.T) {
	svc, docRepo, storage, _, _ := setupDocumentService(4)

	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{}, nil)

	doc, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		OwnerID:  uuid.New(),
		FileName: "notes.TXT",
		Data:     []byte("Customer: Acme"),
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.ContentTypeText, doc.ContentType)
}

func TestDocumentService_Upload_StorageFailure(t *testing.T) {
	svc, docRepo, storage, _, _ := setupDocumentService(4)

	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, errors.New("s3 unreachable"))
	docRepo.On("UpdateStatus", mock.Anything, mock.Anything, domain.StatusFailed).Return(nil)

	doc, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		OwnerID:     uuid.New(),
		FileName:    "invoice.pdf",
		ContentType: domain.ContentTypePDF,
		Data:        []byte("%PDF-1.4 content"),
	})

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	docRepo.AssertExpectations(t)
}

func TestDocumentService_Upload_QueueSaturated(t *testing.T) {
	svc, docRepo, storage, _, queue := setupDocumentService(1)

	// Occupy the only queue slot; workers are not running.
	_, err := queue.Submit(&domain.Document{ID: uuid.New()})
	assert.NoError(t, err)

	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{}, nil)
	docRepo.On("UpdateStatus", mock.Anything, mock.Anything, domain.StatusFailed).Return(nil)

	doc, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		OwnerID:     uuid.New(),
		FileName:    "invoice.pdf",
		ContentType: domain.ContentTypePDF,
		Data:        []byte("%PDF-1.4 content"),
	})

	// The record survives; the run fails terminally before it starts.
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, doc.Status)
	docRepo.AssertExpectations(t)
}

// --- ProcessDocument ---

func processableDoc() *domain.Document {
	return &domain.Document{
		ID:          uuid.New(),
		OwnerID:     uuid.New(),
		FileName:    "invoice.pdf",
		ContentType: domain.ContentTypePDF,
		S3Bucket:    "test-bucket",
		S3Key:       "users/x/documents/y/invoice.pdf",
		Status:      domain.StatusUploaded,
	}
}

func TestDocumentService_ProcessDocument_Completed(t *testing.T) {
	svc, docRepo, storage, processor, _ := setupDocumentService(4)

	doc := processableDoc()
	result := &domain.ExtractionResult{
		FullText:  "\n--- PAGE 1 ---\nTotal: $45.00\n",
		KeyValues: domain.FieldMap{"Total": domain.TextValue("$45.00")},
		Metadata:  domain.ExtractionMetadata{ProcessedAt: time.Now().UTC(), PagesProcessed: 1},
	}

	docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.StatusProcessing).Return(nil)
	storage.On("Download", mock.Anything, doc.S3Bucket, doc.S3Key).Return([]byte("%PDF-1.4"), nil)
	processor.On("Process", mock.Anything, []byte("%PDF-1.4"), doc.ContentType, doc.FileName).
		Return(result, nil)
	docRepo.On("UpdateResult", mock.Anything, doc.ID, domain.StatusCompleted,
		mock.AnythingOfType("json.RawMessage"), 1, 1).Return(nil)

	svc.ProcessDocument(context.Background(), doc)

	docRepo.AssertExpectations(t)

	// The persisted payload decodes back to the pipeline result.
	payload := docRepo.Calls[len(docRepo.Calls)-1].Arguments.Get(3).(json.RawMessage)
	var decoded domain.ExtractionResult
	assert.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, result.FullText, decoded.FullText)
	assert.Equal(t, "$45.00", decoded.KeyValues["Total"].Text())
}

func TestDocumentService_ProcessDocument_PipelineFailure(t *testing.T) {
	svc, docRepo, storage, processor, _ := setupDocumentService(4)

	doc := processableDoc()
	docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.StatusProcessing).Return(nil)
	storage.On("Download", mock.Anything, doc.S3Bucket, doc.S3Key).Return([]byte("%PDF-1.4"), nil)
	processor.On("Process", mock.Anything, mock.Anything, doc.ContentType, doc.FileName).
		Return(nil, errors.New("rasterizing pdf: corrupt xref"))
	docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.StatusFailed).Return(nil)

	svc.ProcessDocument(context.Background(), doc)

	docRepo.AssertExpectations(t)
	docRepo.AssertNotCalled(t, "UpdateResult",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_ProcessDocument_DownloadFailure(t *testing.T) {
	svc, docRepo, storage, processor, _ := setupDocumentService(4)

	doc := processableDoc()
	docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.StatusProcessing).Return(nil)
	storage.On("Download", mock.Anything, doc.S3Bucket, doc.S3Key).
		Return(nil, errors.New("blob missing"))
	docRepo.On("UpdateStatus", mock.Anything, doc.ID, domain.StatusFailed).Return(nil)

	svc.ProcessDocument(context.Background(), doc)

	docRepo.AssertExpectations(t)
	processor.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Reads ---

func TestDocumentService_GetByID_ScopedToOwner(t *testing.T) {
	svc, docRepo, _, _, _ := setupDocumentService(4)

	ownerID := uuid.New()
	docID := uuid.New()
	docRepo.On("GetByID", mock.Anything, ownerID, docID).Return(nil, domain.ErrNotFound)

	doc, err := svc.GetByID(context.Background(), ownerID, docID)

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_GetDownloadURL(t *testing.T) {
	svc, docRepo, storage, _, _ := setupDocumentService(4)

	ownerID := uuid.New()
	doc := processableDoc()
	doc.OwnerID = ownerID

	docRepo.On("GetByID", mock.Anything, ownerID, doc.ID).Return(doc, nil)
	storage.On("GetPresignedURL", mock.Anything, doc.S3Bucket, doc.S3Key, int64(900)).
		Return("https://signed.example/doc", nil)

	url, err := svc.GetDownloadURL(context.Background(), ownerID, doc.ID)

	assert.NoError(t, err)
	assert.Equal(t, "https://signed.example/doc", url)
}
