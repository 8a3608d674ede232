package quotes

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weldpoly/quotecart-backend/internal/cart"
	"github.com/weldpoly/quotecart-backend/pkg/db/models"
	pkgerrors "github.com/weldpoly/quotecart-backend/pkg/errors"
	"github.com/weldpoly/quotecart-backend/pkg/logger"
)

type cartStore interface {
	Load(ctx context.Context, sessionID string) cart.Cart
	Save(ctx context.Context, sessionID string, c cart.Cart)
}

// Service defines quote submission and retrieval operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.QuoteRequest, error)
	GetQuoteRequest(ctx context.Context, sessionID string, id uuid.UUID) (*models.QuoteRequest, error)
	ListQuoteRequests(ctx context.Context, sessionID string, limit, offset int) ([]models.QuoteRequest, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error)
}

type service struct {
	repo  Repository
	store cartStore
	logg  *logger.Logger
}

// ServiceParams bundles the service dependencies.
type ServiceParams struct {
	Repo   Repository
	Store  cartStore
	Logger *logger.Logger
}

// NewService builds the quotes service.
func NewService(params ServiceParams) Service {
	return &service{
		repo:  params.Repo,
		store: params.Store,
		logg:  params.Logger,
	}
}

// Submit snapshots the session's cart into a quote request and clears the
// cart. Line items keep the display order, so a spare part stays attached to
// its parent product in the persisted request.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.QuoteRequest, error) {
	if strings.TrimSpace(input.ContactName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact name is required")
	}
	if strings.TrimSpace(input.ContactEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact email is required")
	}

	c := s.store.Load(ctx, input.SessionID)
	if len(c) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	request := &models.QuoteRequest{
		ID:           uuid.New(),
		SessionID:    input.SessionID,
		ContactName:  strings.TrimSpace(input.ContactName),
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Company:      strings.TrimSpace(input.Company),
		Message:      strings.TrimSpace(input.Message),
		Status:       models.QuoteRequestStatusPending,
	}
	for position, entry := range cart.Order(c) {
		request.LineItems = append(request.LineItems, models.QuoteLineItem{
			ID:                 uuid.New(),
			QuoteRequestID:     request.ID,
			Title:              entry.Item.Title,
			Description:        entry.Item.Description,
			Qty:                entry.Item.Qty,
			IsSparePart:        entry.Item.IsSparePart,
			ParentProductTitle: entry.Item.ParentProductTitle,
			ParentProductSlug:  entry.Item.ParentProductSlug,
			ProductSlug:        entry.Item.ProductSlug,
			ProductSizeRange:   entry.Item.ProductSizeRange,
			Position:           position,
		})
	}

	created, err := s.repo.CreateQuoteRequest(ctx, request)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting quote request")
	}

	// The submitted cart is spent. Saving the empty cart also notifies every
	// open instance of the session.
	s.store.Save(ctx, input.SessionID, cart.Cart{})

	if s.logg != nil {
		logCtx := s.logg.WithSessionID(ctx, input.SessionID)
		logCtx = s.logg.WithField(logCtx, "quote_request_id", created.ID.String())
		s.logg.Info(logCtx, "quote request submitted")
	}
	return created, nil
}

// GetQuoteRequest fetches one request, scoped to the owning session.
func (s *service) GetQuoteRequest(ctx context.Context, sessionID string, id uuid.UUID) (*models.QuoteRequest, error) {
	request, err := s.repo.FindQuoteRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching quote request")
	}
	if request.SessionID != sessionID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
	}
	return request, nil
}

// ListQuoteRequests returns a page of the session's submissions, newest first.
func (s *service) ListQuoteRequests(ctx context.Context, sessionID string, limit, offset int) ([]models.QuoteRequest, error) {
	requests, err := s.repo.ListQuoteRequestsBySession(ctx, sessionID, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing quote requests")
	}
	return requests, nil
}

// MarkProcessed advances a pending request to processed and returns the
// updated record.
func (s *service) MarkProcessed(ctx context.Context, id uuid.UUID) (*models.QuoteRequest, error) {
	if err := s.repo.UpdateQuoteRequestStatus(ctx, id, models.QuoteRequestStatusProcessed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating quote request status")
	}

	request, err := s.repo.FindQuoteRequestByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching quote request")
	}

	if s.logg != nil {
		logCtx := s.logg.WithField(ctx, "quote_request_id", id.String())
		s.logg.Info(logCtx, "quote request processed")
	}
	return request, nil
}
