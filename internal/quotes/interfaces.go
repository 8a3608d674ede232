package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weldpoly/quotecart-backend/pkg/db/models"
)

// Repository defines persistence operations for submitted quote requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateQuoteRequest(ctx context.Context, request *models.QuoteRequest) (*models.QuoteRequest, error)
	FindQuoteRequestByID(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error)
	ListQuoteRequestsBySession(ctx context.Context, sessionID string, limit, offset int) ([]models.QuoteRequest, error)
	UpdateQuoteRequestStatus(ctx context.Context, id uuid.UUID, status models.QuoteRequestStatus) error
}
