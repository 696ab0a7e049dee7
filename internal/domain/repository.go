package domain

import "context"

// UploadRepository persists upload records.
type UploadRepository interface {
	Create(ctx context.Context, in NewUpload) (*Upload, error)
	GetByID(ctx context.Context, id string) (*Upload, error)
	ListRecent(ctx context.Context, limit int) ([]Upload, error)
	Delete(ctx context.Context, id string) error
	AttachStorefrontInfo(ctx context.Context, id, productKey, productID, productURL string) (*Upload, error)
}

// MockupJobQueue exposes upload records as a work queue for the background worker.
// ClaimNext returns ErrNotFound when nothing is queued.
type MockupJobQueue interface {
	Enqueue(ctx context.Context, in NewUpload) (*Upload, error)
	ClaimNext(ctx context.Context) (*Upload, error)
	Complete(ctx context.Context, id string, mockups, failures map[string]string) error
	Fail(ctx context.Context, id, message string, failures map[string]string) error
}
