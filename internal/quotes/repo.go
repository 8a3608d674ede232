package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weldpoly/quotecart-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateQuoteRequest inserts the request and its line items atomically.
func (r *repository) CreateQuoteRequest(ctx context.Context, request *models.QuoteRequest) (*models.QuoteRequest, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindQuoteRequestByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	var request models.QuoteRequest
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListQuoteRequestsBySession(ctx context.Context, sessionID string, limit, offset int) ([]models.QuoteRequest, error) {
	var requests []models.QuoteRequest
	query := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("session_id = ?", sessionID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	err := query.Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) UpdateQuoteRequestStatus(ctx context.Context, id uuid.UUID, status models.QuoteRequestStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.QuoteRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
