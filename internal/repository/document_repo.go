package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roxaimboy784-wq/AdCashy/internal/domain"
)

// ключ документа по умолчанию
const DefaultDocumentKey = "earn_ads_app_data"

var ErrCorruptDocument = errors.New("stored document is corrupt")

// DocumentRepository читает и пишет корневой документ целиком
type DocumentRepository struct {
	backend Backend
	key     string
}

func NewDocumentRepository(backend Backend, key string) *DocumentRepository {
	if key == "" {
		key = DefaultDocumentKey
	}
	return &DocumentRepository{backend: backend, key: key}
}

func (r *DocumentRepository) Key() string { return r.key }

// Load возвращает ErrNotFound, если документа ещё нет,
// и ErrCorruptDocument, если его не удалось разобрать
func (r *DocumentRepository) Load(ctx context.Context) (*domain.Document, error) {
	data, err := r.backend.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	doc.Normalize()
	return &doc, nil
}

// Save перезаписывает документ целиком
func (r *DocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return r.backend.Put(ctx, r.key, data)
}
