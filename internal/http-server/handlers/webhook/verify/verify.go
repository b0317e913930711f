package verify

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
)

// New handles Meta's webhook subscription handshake. The challenge must be
// echoed back as a raw body, not JSON.
func New(log *slog.Logger, verifyToken string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.webhook.verify.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		mode := r.URL.Query().Get("hub.mode")
		token := r.URL.Query().Get("hub.verify_token")
		challenge := r.URL.Query().Get("hub.challenge")

		if mode != "subscribe" || token != verifyToken {
			log.Warn("Webhook verification rejected", slog.String("mode", mode))
			w.WriteHeader(http.StatusForbidden)
			return
		}

		log.Info("Webhook verified")

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
	}
}
