package port

import (
	"context"

	"moxbot/internal/core/domain"
)

type DocumentStore interface {
	// LoadDocument fetches one document by kind and ID, returning
	// domain.ErrDocumentNotFound if absent.
	LoadDocument(ctx context.Context, kind, id string) (*domain.Document, error)
	// ListDocuments returns all documents of a kind, ordered by ID.
	ListDocuments(ctx context.Context, kind string) ([]domain.Document, error)
	// SaveDocument inserts or replaces a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error
}
