package get

import (
	"context"
	"log/slog"
	"net/http"

	"vani-service/internal/models"
	"vani-service/pkg/response"
	"vani-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ScheduleLister interface {
	ListSchedule(ctx context.Context) ([]models.ScheduleEntry, error)
}

type Response struct {
	response.Response
	Entries []models.ScheduleEntry `json:"entries"`
}

func New(log *slog.Logger, lister ScheduleLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		entries, err := lister.ListSchedule(r.Context())
		if err != nil {
			log.Error("Failed to list schedule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.STORAGE_ERROR), "failed to list schedule"))
			return
		}

		log.Info("Schedule listed", slog.Int("entries", len(entries)))

		render.JSON(w, r, Response{
			Entries: entries,
		})
	}
}
