package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Document, error) {
	query := `
		SELECT id, user_id, title, "type", url, upload_date
		FROM documents
		WHERE user_id = $1
		ORDER BY id
	`

	var documents []*model.Document
	if err := r.db.SelectContext(ctx, &documents, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, nil
}

func (r *documentRepository) Create(ctx context.Context, document *model.Document) error {
	query := `
		INSERT INTO documents (user_id, title, "type", url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, upload_date
	`

	err := r.db.QueryRowxContext(ctx, query, document.UserID, document.Title, document.Type, document.URL).
		Scan(&document.ID, &document.UploadDate)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}
