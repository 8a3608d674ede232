package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weldpoly/quotecart-backend/api/middleware"
	"github.com/weldpoly/quotecart-backend/api/responses"
	"github.com/weldpoly/quotecart-backend/api/validators"
	"github.com/weldpoly/quotecart-backend/internal/cart"
	cartsync "github.com/weldpoly/quotecart-backend/internal/sync"
	pkgerrors "github.com/weldpoly/quotecart-backend/pkg/errors"
	"github.com/weldpoly/quotecart-backend/pkg/logger"
)

const maxFieldLen = 512

type addProductRequest struct {
	Title       string `json:"title" validate:"required,max=512"`
	Description string `json:"description" validate:"max=2048"`
	ProductSlug string `json:"productSlug" validate:"max=512"`
	SizeRange   string `json:"productSizeRange" validate:"max=512"`
}

type toggleSparePartRequest struct {
	Title       string `json:"title" validate:"required,max=512"`
	Description string `json:"description" validate:"max=2048"`
	ParentTitle string `json:"parentProductTitle" validate:"max=512"`
	ParentSlug  string `json:"parentProductSlug" validate:"max=512"`
}

type changeQtyRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type cartMutationResponse struct {
	Added    bool              `json:"added"`
	Snapshot cartsync.Snapshot `json:"snapshot"`
}

// CartAddProduct handles an add-to-quote action. Adding a product the cart
// does not have yet opens the modal; re-adding only bumps the quantity.
func CartAddProduct(store *cart.Store, syncer *cartsync.Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}

		var payload addProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		_, added := store.AddProduct(ctx, sessionID, cart.ProductInput{
			Title:       validators.SanitizeString(payload.Title, maxFieldLen),
			Description: validators.SanitizeString(payload.Description, 2048),
			Slug:        validators.SanitizeString(payload.ProductSlug, maxFieldLen),
			SizeRange:   validators.SanitizeString(payload.SizeRange, maxFieldLen),
		})

		var snapshot cartsync.Snapshot
		if added {
			snapshot = syncer.OpenCart(ctx, sessionID)
		} else {
			snapshot = syncer.Refresh(ctx, sessionID)
		}
		responses.WriteSuccess(w, cartMutationResponse{Added: added, Snapshot: snapshot})
	}
}

// CartToggleSparePart flips a spare part's membership. Toggling a part in
// opens the modal; toggling it out leaves visibility alone.
func CartToggleSparePart(store *cart.Store, syncer *cartsync.Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}

		var payload toggleSparePartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		_, added := store.ToggleSparePart(ctx, sessionID, cart.SparePartInput{
			Title:       validators.SanitizeString(payload.Title, maxFieldLen),
			Description: validators.SanitizeString(payload.Description, 2048),
			ParentTitle: validators.SanitizeString(payload.ParentTitle, maxFieldLen),
			ParentSlug:  validators.SanitizeString(payload.ParentSlug, maxFieldLen),
		})

		var snapshot cartsync.Snapshot
		if added {
			snapshot = syncer.OpenCart(ctx, sessionID)
		} else {
			snapshot = syncer.Refresh(ctx, sessionID)
		}
		responses.WriteSuccess(w, cartMutationResponse{Added: added, Snapshot: snapshot})
	}
}

// CartChangeQty applies a signed quantity delta to the item addressed by the
// encoded identity key in the path.
func CartChangeQty(store *cart.Store, syncer *cartsync.Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}

		key, err := cart.DecodeKey(chi.URLParam(r, "key"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item key"))
			return
		}

		var payload changeQtyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		store.ChangeQty(ctx, sessionID, key, payload.Delta)
		responses.WriteSuccess(w, syncer.Refresh(ctx, sessionID))
	}
}

// CartRemoveItem removes the addressed item. Removing a product also removes
// its spare parts.
func CartRemoveItem(store *cart.Store, syncer *cartsync.Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}

		key, err := cart.DecodeKey(chi.URLParam(r, "key"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item key"))
			return
		}

		store.Remove(ctx, sessionID, key)
		responses.WriteSuccess(w, syncer.Refresh(ctx, sessionID))
	}
}

// CartView returns the session's rendered cart snapshot.
func CartView(syncer *cartsync.Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}
		responses.WriteSuccess(w, syncer.Snapshot(ctx, sessionID))
	}
}

// CartCount returns the badge count without rendering anything.
func CartCount(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}
		responses.WriteSuccess(w, map[string]int{"count": store.Count(ctx, sessionID)})
	}
}

// CartSpareParts returns the spare-part membership set toggle buttons paint
// their checked state from.
func CartSpareParts(syncer *cartsync.Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}
		snapshot := syncer.Snapshot(ctx, sessionID)
		responses.WriteSuccess(w, map[string]any{"spare_parts": snapshot.SpareParts})
	}
}

// CartOpen opens the modal and returns a freshly rendered snapshot.
func CartOpen(syncer *cartsync.Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}
		responses.WriteSuccess(w, syncer.OpenCart(ctx, sessionID))
	}
}

// CartClose closes the modal.
func CartClose(syncer *cartsync.Syncer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}
		syncer.CloseCart(sessionID)
		responses.WriteSuccess(w, map[string]string{"visibility": string(cartsync.Closed)})
	}
}
