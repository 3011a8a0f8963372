package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papyr/internal/config"
	"papyr/internal/handler"
	"papyr/internal/ocr"
	"papyr/internal/pipeline"
	"papyr/internal/raster"
	"papyr/internal/repository/postgres"
	"papyr/internal/router"
	"papyr/internal/service"
	s3storage "papyr/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	docRepo := postgres.NewDocumentRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize the processing pipeline
	recognizer := ocr.NewTesseract(ocr.Config{
		Language: cfg.OCR.Language,
		DPI:      cfg.OCR.DPI,
	})
	rasterizer := raster.New(raster.Config{
		Pdftoppm: cfg.OCR.Pdftoppm,
		TempDir:  cfg.OCR.TempDir,
	})
	processor := pipeline.New(rasterizer, recognizer, pipeline.Config{
		DPI:             cfg.OCR.DPI,
		PageConcurrency: cfg.OCR.PageConcurrency,
		TempDir:         cfg.OCR.TempDir,
	})

	// Initialize services
	queue := service.NewProcessQueue(&cfg.Queue)
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	docSvc := service.NewDocumentService(docRepo, s3Client, processor, queue, &cfg.S3, &cfg.Upload)

	queueDone := make(chan struct{})
	go func() {
		defer close(queueDone)
		queue.Start(ctx, docSvc.ProcessDocument)
	}()

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	documentH := handler.NewDocumentHandler(docSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, authSvc, authH, documentH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	// Wait for in-flight processing runs to reach a terminal status.
	<-queueDone

	return nil
}
