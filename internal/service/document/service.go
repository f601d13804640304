package document

import (
	"context"
	"fmt"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

type Service struct {
	repo repository.DocumentRepository
}

func NewService(repo repository.DocumentRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*model.Document, error) {
	documents, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if documents == nil {
		documents = []*model.Document{}
	}
	return documents, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateDocumentRequest) (*model.Document, error) {
	document := req.ToDocument()
	if err := s.repo.Create(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return document, nil
}
