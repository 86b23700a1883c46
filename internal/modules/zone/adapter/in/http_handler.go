package in

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	zonedto "invsync/internal/modules/zone/dto"
	zonein "invsync/internal/modules/zone/port/in"
	apperrors "invsync/internal/platform/errors"
	"invsync/internal/platform/httpserver"
)

type HTTPHandler struct {
	usecase zonein.Usecase
}

func NewHTTPHandler(usecase zonein.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Mount(r chi.Router) {
	r.Get("/zones", h.List)
	r.Get("/zones/filters", h.Filters)
}

// List handles GET /zones?q=&state=
func (h HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	zones, err := h.usecase.Filter(zonedto.ZoneQuery{
		Search: r.URL.Query().Get("q"),
		State:  r.URL.Query().Get("state"),
	})
	if errors.Is(err, apperrors.ErrInvalidInput) {
		httpserver.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		httpserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, zones)
}

func (h HTTPHandler) Filters(w http.ResponseWriter, _ *http.Request) {
	httpserver.WriteJSON(w, http.StatusOK, h.usecase.DefaultFilters())
}
