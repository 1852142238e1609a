package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/listing/usecase"
	"github.com/go-chi/chi/v5"
)

type resultsResponse struct {
	Results []*domain.Listing  `json:"results"`
	Filter  domain.FilterState `json:"filter"`
}

// filterRequest selects one facet. Value is a number for the count facets,
// a masked string for prices and "sale"/"rent" for modality.
type filterRequest struct {
	Kind  domain.FilterKind `json:"kind"`
	Value json.RawMessage   `json:"value"`
}

type searchRequest struct {
	City string `json:"city"`
}

type partialDeleteResponse struct {
	Toast  string   `json:"toast"`
	Failed []string `json:"failed"`
}

func results(e *usecase.QueryEngine) resultsResponse {
	return resultsResponse{Results: e.Results(), Filter: e.Filter()}
}

// ListListings returns the home results. ?reload=true runs the default
// query again first.
func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("reload") == "true" {
		if err := h.home.LoadAll(r.Context()); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, results(h.home))
}

func (h *Handler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.NewValidationError("body", "invalid request body"))
		return
	}
	if err := h.applyFilter(r, req); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results(h.home))
}

func (h *Handler) applyFilter(r *http.Request, req filterRequest) error {
	ctx := r.Context()
	switch req.Kind {
	case domain.FilterRooms, domain.FilterBathrooms, domain.FilterParkingSpaces:
		var n int
		if err := json.Unmarshal(req.Value, &n); err != nil {
			return domain.NewValidationError(string(req.Kind), "enter a valid number")
		}
		switch req.Kind {
		case domain.FilterRooms:
			return h.home.SelectRooms(ctx, n)
		case domain.FilterBathrooms:
			return h.home.SelectBathrooms(ctx, n)
		default:
			return h.home.SelectParkingSpaces(ctx, n)
		}
	case domain.FilterMinPrice, domain.FilterMaxPrice:
		var input string
		if err := json.Unmarshal(req.Value, &input); err != nil {
			return domain.NewValidationError(string(req.Kind), "enter a price")
		}
		if req.Kind == domain.FilterMinPrice {
			return h.home.SetMinPrice(ctx, input)
		}
		return h.home.SetMaxPrice(ctx, input)
	case domain.FilterModality:
		var m string
		if err := json.Unmarshal(req.Value, &m); err != nil {
			return domain.NewValidationError("modality", "select sale or rent")
		}
		return h.home.SelectModality(ctx, domain.Modality(m))
	case domain.FilterNone:
		return h.home.Clear(ctx)
	default:
		return domain.NewValidationError("kind", "unknown filter")
	}
}

func (h *Handler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	if err := h.home.Clear(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results(h.home))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.NewValidationError("body", "invalid request body"))
		return
	}
	if err := h.home.Search(r.Context(), req.City); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results(h.home))
}

func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.listings.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) ListOwned(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.LoadOwned(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results(h.dashboard))
}

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var draft domain.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.writeError(w, r, domain.NewValidationError("body", "invalid request body"))
		return
	}
	l, err := h.listings.Submit(r.Context(), draft, h.uploads, h.session.Identity())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// DeleteListing answers 200 with the failed image paths when the record is
// gone but some images could not be removed.
func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	err := h.listings.DeleteByID(r.Context(), chi.URLParam(r, "id"), h.session.Identity())
	var partial *domain.PartialDeleteError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &partial):
		h.logger.Warn("Handler.DeleteListing: images left behind", "listingID", partial.ListingID, "failed", len(partial.Failed))
		writeJSON(w, http.StatusOK, partialDeleteResponse{
			Toast:  "listing deleted, some images could not be removed",
			Failed: partial.Failed,
		})
	default:
		h.writeError(w, r, err)
	}
}
