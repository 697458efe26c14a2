package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/operman-code/petme/internal/listing/usecase"
	"github.com/operman-code/petme/internal/platform/logger"
)

type UserHandler struct {
	queries *usecase.QueryUsecase
	logger  *logger.Logger
}

func NewUserHandler(queries *usecase.QueryUsecase, log *logger.Logger) *UserHandler {
	return &UserHandler{queries: queries, logger: log.Named("UserHandler")}
}

// Showcase serves a user's public page: profile plus newest available listings.
func (h *UserHandler) Showcase(w http.ResponseWriter, r *http.Request) {
	sc, err := h.queries.OwnerShowcase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, showcaseResponse{User: sc.Profile, Pets: toPets(sc.Listings)})
}
