package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/weldpoly/quotecart-backend/api/middleware"
	"github.com/weldpoly/quotecart-backend/api/responses"
	"github.com/weldpoly/quotecart-backend/api/validators"
	"github.com/weldpoly/quotecart-backend/internal/quotes"
	"github.com/weldpoly/quotecart-backend/pkg/db/models"
	pkgerrors "github.com/weldpoly/quotecart-backend/pkg/errors"
	"github.com/weldpoly/quotecart-backend/pkg/logger"
)

type submitQuoteRequest struct {
	ContactName  string `json:"contactName" validate:"required,max=256"`
	ContactEmail string `json:"contactEmail" validate:"required,email,max=256"`
	Company      string `json:"company" validate:"max=256"`
	Message      string `json:"message" validate:"max=4096"`
}

type quoteLineItemResponse struct {
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	Qty                int    `json:"qty"`
	IsSparePart        bool   `json:"isSparePart"`
	ParentProductTitle string `json:"parentProductTitle,omitempty"`
	ProductSlug        string `json:"productSlug,omitempty"`
	ProductSizeRange   string `json:"productSizeRange,omitempty"`
	Position           int    `json:"position"`
}

type quoteRequestResponse struct {
	ID           string                  `json:"id"`
	ContactName  string                  `json:"contactName"`
	ContactEmail string                  `json:"contactEmail"`
	Company      string                  `json:"company,omitempty"`
	Message      string                  `json:"message,omitempty"`
	Status       string                  `json:"status"`
	LineItems    []quoteLineItemResponse `json:"lineItems"`
	CreatedAt    string                  `json:"createdAt"`
}

func newQuoteRequestResponse(request *models.QuoteRequest) quoteRequestResponse {
	resp := quoteRequestResponse{
		ID:           request.ID.String(),
		ContactName:  request.ContactName,
		ContactEmail: request.ContactEmail,
		Company:      request.Company,
		Message:      request.Message,
		Status:       string(request.Status),
		CreatedAt:    request.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, item := range request.LineItems {
		resp.LineItems = append(resp.LineItems, quoteLineItemResponse{
			Title:              item.Title,
			Description:        item.Description,
			Qty:                item.Qty,
			IsSparePart:        item.IsSparePart,
			ParentProductTitle: item.ParentProductTitle,
			ProductSlug:        item.ProductSlug,
			ProductSizeRange:   item.ProductSizeRange,
			Position:           item.Position,
		})
	}
	return resp
}

// QuoteSubmit snapshots the session's cart into a persisted quote request.
func QuoteSubmit(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}

		var payload submitQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		created, err := svc.Submit(ctx, quotes.SubmitInput{
			SessionID:    sessionID,
			ContactName:  payload.ContactName,
			ContactEmail: payload.ContactEmail,
			Company:      payload.Company,
			Message:      payload.Message,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newQuoteRequestResponse(created))
	}
}

// QuoteList returns a page of the session's submitted quote requests, newest
// first. Pagination is bounded so a session cannot request the whole table.
func QuoteList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 100000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		requests, err := svc.ListQuoteRequests(ctx, sessionID, limit, offset)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]quoteRequestResponse, 0, len(requests))
		for i := range requests {
			out = append(out, newQuoteRequestResponse(&requests[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// QuoteGet returns one of the session's quote requests by id.
func QuoteGet(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote request id"))
			return
		}

		request, err := svc.GetQuoteRequest(ctx, sessionID, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newQuoteRequestResponse(request))
	}
}

// QuoteMarkProcessed advances a quote request to processed. Mounted on the
// admin surface only.
func QuoteMarkProcessed(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quote request id"))
			return
		}

		request, err := svc.MarkProcessed(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newQuoteRequestResponse(request))
	}
}
