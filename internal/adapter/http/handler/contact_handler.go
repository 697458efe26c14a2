package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/operman-code/petme/internal/listing/usecase"
	"github.com/operman-code/petme/internal/platform/logger"
)

type ContactHandler struct {
	contacts *usecase.ContactUsecase
	logger   *logger.Logger
}

func NewContactHandler(contacts *usecase.ContactUsecase, log *logger.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: log.Named("ContactHandler")}
}

func (h *ContactHandler) ContactOwner(w http.ResponseWriter, r *http.Request) {
	body, _, err := readBody(w, r)
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	in := usecase.ContactInput{}
	in.Subject, _ = body.str("subject")
	in.Message, _ = body.str("message")

	req, err := h.contacts.Contact(r.Context(), callerID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, h.logger, err, petNotFound)
		return
	}
	writeJSON(w, http.StatusOK, contactResponse{
		Message:     "Contact request sent successfully!",
		ContactInfo: req,
	})
}
