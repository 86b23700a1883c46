package in

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	verificationin "invsync/internal/modules/verification/port/in"
	"invsync/internal/platform/httpserver"
)

type HTTPHandler struct {
	usecase verificationin.Usecase
}

func NewHTTPHandler(usecase verificationin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Mount(r chi.Router) {
	r.Get("/verifications", h.List)
}

// List handles GET /verifications
func (h HTTPHandler) List(w http.ResponseWriter, _ *http.Request) {
	httpserver.WriteJSON(w, http.StatusOK, map[string]any{
		"branchId": h.usecase.BranchID(),
		"entries":  h.usecase.Entries(),
	})
}
