package in

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	pushin "invsync/internal/modules/push/port/in"
	"invsync/internal/platform/httpserver"
)

type HTTPHandler struct {
	usecase pushin.Usecase
}

func NewHTTPHandler(usecase pushin.Usecase) HTTPHandler {
	return HTTPHandler{usecase: usecase}
}

func (h HTTPHandler) Mount(r chi.Router) {
	r.Get("/healthz", h.Health)
}

// Health reports the push channel. It answers 503 until the channel is
// connected so probes see a reconnect in progress.
func (h HTTPHandler) Health(w http.ResponseWriter, _ *http.Request) {
	status := h.usecase.Status()
	code := http.StatusOK
	if !status.Connected {
		code = http.StatusServiceUnavailable
	}
	httpserver.WriteJSON(w, code, status)
}
