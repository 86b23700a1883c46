package in

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	inventoryin "invsync/internal/modules/inventory/port/in"
	"invsync/internal/platform/httpserver"
)

type HTTPHandler struct {
	usecase inventoryin.Usecase
}

func NewHTTPHandler(usecase inventoryin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Mount(r chi.Router) {
	r.Get("/session", h.Status)
}

// Status handles GET /session
func (h HTTPHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.usecase.Status(r.Context())
	if err != nil {
		httpserver.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, status)
}
