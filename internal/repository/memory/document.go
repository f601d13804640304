package memory

import (
	"context"
	"time"

	"github.com/doctaba/telehealth-api/internal/model"
)

type documentRepository struct {
	s *Store
}

func (r *documentRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Document, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Document
	for _, d := range r.s.documents {
		if d.UserID == userID {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (r *documentRepository) Create(ctx context.Context, document *model.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	document.ID = int64(len(r.s.documents)) + 1
	document.UploadDate = time.Now()
	r.s.documents = append(r.s.documents, clone(document))
	return nil
}
