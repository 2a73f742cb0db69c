package services

import (
	"context"

	"github.com/huangang/venturelink/internal/models"
	"github.com/huangang/venturelink/pkg/logger"
	"github.com/huangang/venturelink/pkg/response"
	"gorm.io/gorm"
)

// StartupDocumentService stores the files a founder shares with investors.
type StartupDocumentService struct {
	db    *gorm.DB
	store BlobStore
}

func NewStartupDocumentService(db *gorm.DB, store BlobStore) *StartupDocumentService {
	return &StartupDocumentService{db: db, store: store}
}

func (s *StartupDocumentService) Upload(ctx context.Context, founderUserID string, docType models.DocumentType, file UploadedFile) (*models.StartupDocument, error) {
	if !docType.Valid() {
		return nil, response.NewBadRequest("Invalid document type.")
	}
	if len(file.Data) == 0 {
		return nil, response.NewBadRequest("File is empty.")
	}
	db := s.db.WithContext(ctx)
	startup, err := startupForFounder(db, founderUserID)
	if err != nil {
		return nil, err
	}

	ref, err := storeUpload(ctx, s.store, file)
	if err != nil {
		return nil, err
	}
	doc := models.StartupDocument{
		StartupID:    startup.ID,
		DocumentType: docType,
		FileName:     ref.FileName,
		FilePath:     ref.FilePath,
		ContentType:  ref.ContentType,
		Size:         int64(len(file.Data)),
	}
	if err := db.Create(&doc).Error; err != nil {
		removeBlobs(ctx, s.store, ref)
		return nil, err
	}
	logger.Infof("[Document] %s uploaded %s (%s)", startup.Name, doc.FileName, doc.DocumentType)
	return &doc, nil
}

// List returns the founder's documents, optionally of one type only.
func (s *StartupDocumentService) List(ctx context.Context, founderUserID string, docType models.DocumentType) ([]models.StartupDocument, error) {
	if docType != "" && !docType.Valid() {
		return nil, response.NewBadRequest("Invalid document type.")
	}
	db := s.db.WithContext(ctx)
	startup, err := startupForFounder(db, founderUserID)
	if err != nil {
		return nil, err
	}

	q := db.Where("startup_id = ?", startup.ID)
	if docType != "" {
		q = q.Where("document_type = ?", docType)
	}
	docs := []models.StartupDocument{}
	if err := q.Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *StartupDocumentService) Delete(ctx context.Context, founderUserID, documentID string) error {
	db := s.db.WithContext(ctx)
	startup, err := startupForFounder(db, founderUserID)
	if err != nil {
		return err
	}

	var doc models.StartupDocument
	if err := first(db, &doc, "Document not found.", "id = ? AND startup_id = ?", documentID, startup.ID); err != nil {
		return err
	}
	if err := db.Delete(&doc).Error; err != nil {
		return err
	}
	removeBlobs(ctx, s.store, models.FileRef{FilePath: doc.FilePath})
	return nil
}
