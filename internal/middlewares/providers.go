package middlewares

import (
	"context"
	"time"

	"batch-release/internal/models"
	"batch-release/internal/records"
)

//go:generate mockgen -source=providers.go -destination=../mocks/providers.go -package=mocks

// RecordProvider looks up certificate records in the tracking system.
type RecordProvider interface {
	FetchRecord(ctx context.Context, batchNumber string) (models.CertificateRecord, error)
	Search(ctx context.Context, q records.SearchQuery) (*records.SearchResult, error)
}

type DocumentProvider interface {
	Open(handle string) ([]byte, error)
}

// URLSigner scopes a document handle to a short lived token that can travel
// in a query string.
type URLSigner interface {
	Sign(handle string) (string, error)
	Verify(token, handle string) error
	TTL() time.Duration
}

type PrintTicketProvider interface {
	Redeem(ctx context.Context, token string) ([]byte, error)
	TTL() time.Duration
}
