package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/operman-code/petme/internal/listing/filter"
	"github.com/operman-code/petme/internal/listing/usecase"
	"github.com/operman-code/petme/internal/platform/logger"
)

const petNotFound = "Pet not found"

type ListingHandler struct {
	listings *usecase.ListingUsecase
	queries  *usecase.QueryUsecase
	logger   *logger.Logger
}

func NewListingHandler(listings *usecase.ListingUsecase, queries *usecase.QueryUsecase, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		queries:  queries,
		logger:   log.Named("ListingHandler"),
	}
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	criteria, err := filter.Compile(r.URL.Query())
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	page, err := h.queries.List(r.Context(), criteria)
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Pets:        toPetViews(page.Items),
		CurrentPage: page.Page,
		TotalPages:  page.TotalPages,
		Total:       page.Total,
	})
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.queries.GetOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toPet(view.Listing, view.Owner))
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, uploads, err := readBody(w, r)
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	draft, refs := body.toDraft()
	listing, err := h.listings.Create(r.Context(), callerID(r), usecase.CreateInput{
		Draft:     draft,
		ImageRefs: refs,
		Uploads:   uploads,
	})
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	view := h.queries.Attach(r.Context(), listing)
	writeJSON(w, http.StatusCreated, toPet(view.Listing, view.Owner))
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	body, uploads, err := readBody(w, r)
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	patch, err := body.toPatch()
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	listing, err := h.listings.Update(r.Context(), callerID(r), chi.URLParam(r, "id"), usecase.UpdateInput{
		Patch:   patch,
		Uploads: uploads,
	})
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	view := h.queries.Attach(r.Context(), listing)
	writeJSON(w, http.StatusOK, toPet(view.Listing, view.Owner))
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.listings.Delete(r.Context(), callerID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Pet listing removed")
}

func (h *ListingHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorited, err := h.listings.ToggleFavorite(r.Context(), callerID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{IsFavorited: favorited})
}

func (h *ListingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.ListMine(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toPets(listings))
}

func (h *ListingHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	views, err := h.queries.ListFavorites(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toPetViews(views))
}
