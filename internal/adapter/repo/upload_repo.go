package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LDFINA01/Jokester-Merch-Generator/internal/domain"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/infra"
	"github.com/LDFINA01/Jokester-Merch-Generator/internal/sqlinline"
)

// UploadRepositoryPG implements domain.UploadRepository and domain.MockupJobQueue.
type UploadRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUploadRepository creates a new upload repository backed by PostgreSQL.
func NewUploadRepository(sql infra.SQLExecutor) *UploadRepositoryPG {
	return &UploadRepositoryPG{sql: sql}
}

var (
	_ domain.UploadRepository = (*UploadRepositoryPG)(nil)
	_ domain.MockupJobQueue   = (*UploadRepositoryPG)(nil)
)

// Create inserts a finished upload record.
func (r *UploadRepositoryPG) Create(ctx context.Context, in domain.NewUpload) (*domain.Upload, error) {
	return r.insert(ctx, in, domain.UploadStatusSucceeded)
}

// Enqueue inserts an upload record for the worker to fill in.
func (r *UploadRepositoryPG) Enqueue(ctx context.Context, in domain.NewUpload) (*domain.Upload, error) {
	return r.insert(ctx, in, domain.UploadStatusQueued)
}

func (r *UploadRepositoryPG) insert(ctx context.Context, in domain.NewUpload, status domain.UploadStatus) (*domain.Upload, error) {
	requested, err := marshalJSON(in.RequestedProducts, "[]")
	if err != nil {
		return nil, err
	}
	mockups, err := marshalJSON(in.MockupURLs, "{}")
	if err != nil {
		return nil, err
	}
	failures, err := marshalJSON(in.MockupErrors, "{}")
	if err != nil {
		return nil, err
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertUpload,
		in.OriginalImageURL,
		requested,
		mockups,
		failures,
		in.UserIdentifier,
		in.Theme,
		in.Country,
		string(status),
	)
	upload, err := scanUpload(row)
	if err != nil {
		return nil, fmt.Errorf("repo: insert upload: %w", err)
	}
	return upload, nil
}

// GetByID fetches an upload by its identifier.
func (r *UploadRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Upload, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	upload, err := scanUpload(r.sql.QueryRow(ctx, sqlinline.QSelectUploadByID, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("repo: get upload: %w", err)
	}
	return upload, nil
}

// ListRecent returns at most limit uploads, newest first.
func (r *UploadRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.Upload, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListRecentUploads, limit)
	if err != nil {
		return nil, fmt.Errorf("repo: list uploads: %w", err)
	}
	defer rows.Close()

	uploads := make([]domain.Upload, 0, limit)
	for rows.Next() {
		upload, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("repo: scan upload: %w", err)
		}
		uploads = append(uploads, *upload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo: list uploads: %w", err)
	}
	return uploads, nil
}

// Delete removes an upload. Missing records yield domain.ErrNotFound.
func (r *UploadRepositoryPG) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteUpload, id)
	if err != nil {
		return fmt.Errorf("repo: delete upload: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AttachStorefrontInfo records the storefront product for productKey in a
// single update so concurrent attachments for other keys are preserved.
func (r *UploadRepositoryPG) AttachStorefrontInfo(ctx context.Context, id, productKey, productID, productURL string) (*domain.Upload, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	upload, err := scanUpload(r.sql.QueryRow(ctx, sqlinline.QAttachStorefrontInfo, id, productKey, productID, productURL))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("repo: attach storefront info: %w", err)
	}
	return upload, nil
}

// ClaimNext marks the oldest queued upload as running and returns it.
func (r *UploadRepositoryPG) ClaimNext(ctx context.Context) (*domain.Upload, error) {
	upload, err := scanUpload(r.sql.QueryRow(ctx, sqlinline.QClaimQueuedUpload))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("repo: claim upload: %w", err)
	}
	return upload, nil
}

// Complete stores the generated mockups and per-product failures.
func (r *UploadRepositoryPG) Complete(ctx context.Context, id string, mockups, failures map[string]string) error {
	mockupsJSON, err := marshalJSON(mockups, "{}")
	if err != nil {
		return err
	}
	failuresJSON, err := marshalJSON(failures, "{}")
	if err != nil {
		return err
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QCompleteUpload, id, mockupsJSON, failuresJSON); err != nil {
		return fmt.Errorf("repo: complete upload: %w", err)
	}
	return nil
}

// Fail marks the upload as failed with message. Nil failures keep the stored ones.
func (r *UploadRepositoryPG) Fail(ctx context.Context, id, message string, failures map[string]string) error {
	var failuresJSON []byte
	if failures != nil {
		raw, err := marshalJSON(failures, "{}")
		if err != nil {
			return err
		}
		failuresJSON = raw
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QFailUpload, id, message, failuresJSON); err != nil {
		return fmt.Errorf("repo: fail upload: %w", err)
	}
	return nil
}

func scanUpload(row pgx.Row) (*domain.Upload, error) {
	var (
		u                                      domain.Upload
		status                                 string
		userIdentifier, theme, country, errMsg *string
		requested, mockups, failures           []byte
		productIDs, productURLs                []byte
	)
	if err := row.Scan(
		&u.ID,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.OriginalImageURL,
		&requested,
		&mockups,
		&failures,
		&userIdentifier,
		&theme,
		&country,
		&status,
		&errMsg,
		&productIDs,
		&productURLs,
	); err != nil {
		return nil, err
	}
	u.Status = domain.UploadStatus(status)
	u.UserIdentifier = deref(userIdentifier)
	u.Theme = deref(theme)
	u.Country = deref(country)
	u.ErrorMessage = deref(errMsg)
	if err := unmarshalJSON(requested, &u.RequestedProducts); err != nil {
		return nil, fmt.Errorf("requested_products: %w", err)
	}
	for _, field := range []struct {
		raw []byte
		dst *map[string]string
	}{
		{mockups, &u.MockupURLs},
		{failures, &u.MockupErrors},
		{productIDs, &u.StorefrontProductIDs},
		{productURLs, &u.StorefrontProductURLs},
	} {
		if err := unmarshalJSON(field.raw, field.dst); err != nil {
			return nil, err
		}
	}
	if u.MockupURLs == nil {
		u.MockupURLs = map[string]string{}
	}
	return &u, nil
}

func marshalJSON(v any, empty string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("repo: encode json: %w", err)
	}
	if string(raw) == "null" {
		return []byte(empty), nil
	}
	return raw, nil
}

func unmarshalJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
