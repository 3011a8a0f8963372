package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"papyr/internal/config"
	"papyr/internal/domain"
	"papyr/internal/service"
)

func TestProcessQueue_SubmitAndRun(t *testing.T) {
	queue := service.NewProcessQueue(&config.QueueConfig{Workers: 2, Size: 8})

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	go func() {
		close(started)
		queue.Start(ctx, func(ctx context.Context, doc *domain.Document) {})
	}()
	<-started

	doc := &domain.Document{ID: uuid.New()}
	handle, err := queue.Submit(doc)
	assert.NoError(t, err)
	assert.Equal(t, doc.ID, handle.DocumentID)

	select {
	case <-handle.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("job never reached a terminal state")
	}

	cancel()
}

func TestProcessQueue_DoneClosesAfterProcessing(t *testing.T) {
	queue := service.NewProcessQueue(&config.QueueConfig{Workers: 1, Size: 8})

	var mu sync.Mutex
	processed := make(map[uuid.UUID]bool)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go queue.Start(ctx, func(ctx context.Context, doc *domain.Document) {
		mu.Lock()
		processed[doc.ID] = true
		mu.Unlock()
	})

	doc := &domain.Document{ID: uuid.New()}
	handle, err := queue.Submit(doc)
	assert.NoError(t, err)

	select {
	case <-handle.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("job never finished")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, processed[doc.ID], "Done closed before the run executed")
}

func TestProcessQueue_Saturation(t *testing.T) {
	// One slot, no running workers: the second submit must be refused.
	queue := service.NewProcessQueue(&config.QueueConfig{Workers: 1, Size: 1})

	_, err := queue.Submit(&domain.Document{ID: uuid.New()})
	assert.NoError(t, err)

	handle, err := queue.Submit(&domain.Document{ID: uuid.New()})
	assert.Nil(t, handle)
	assert.ErrorIs(t, err, domain.ErrQueueSaturated)
	assert.Equal(t, 1, queue.Depth())
}

func TestProcessQueue_StartReturnsAfterShutdown(t *testing.T) {
	queue := service.NewProcessQueue(&config.QueueConfig{Workers: 2, Size: 8})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		queue.Start(ctx, func(ctx context.Context, doc *domain.Document) {})
		close(done)
	}()

	handle, err := queue.Submit(&domain.Document{ID: uuid.New()})
	assert.NoError(t, err)
	select {
	case <-handle.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("job never finished")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}

func TestProcessQueue_Defaults(t *testing.T) {
	queue := service.NewProcessQueue(&config.QueueConfig{})

	// Zero-valued config falls back to usable defaults.
	_, err := queue.Submit(&domain.Document{ID: uuid.New()})
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Depth())
}
