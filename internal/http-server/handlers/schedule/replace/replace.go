package replace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"vani-service/api"
	"vani-service/internal/models"
	"vani-service/pkg/response"
	"vani-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ScheduleReplacer interface {
	ReplaceSchedule(ctx context.Context, entries []models.ScheduleEntry) error
}

type Request struct {
	api.ReplaceScheduleRequest
}

type Response struct {
	response.Response
	Saved int `json:"saved"`
}

func New(log *slog.Logger, replacer ScheduleReplacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule.replace.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Int("entries", len(req.Entries)))

		entries := make([]models.ScheduleEntry, 0, len(req.Entries))
		for _, payload := range req.Entries {
			if payload.DoctorName == "" {
				log.Error("doctor_name is empty")
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "doctor_name is required"))
				return
			}

			entries = append(entries, models.ScheduleEntry{
				DoctorName:    payload.DoctorName,
				Department:    payload.Department,
				Day:           payload.Day,
				ScheduleTime:  payload.ScheduleTime,
				CurrentStatus: payload.CurrentStatus,
			})
		}

		err := replacer.ReplaceSchedule(r.Context(), entries)

		if errors.Is(err, response.ErrLocked) {
			log.Error("schedule is locked by another replace")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "schedule is locked"))
			return
		}

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid schedule rows", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid schedule rows"))
			return
		}

		if err != nil {
			log.Error("Failed to replace schedule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.STORAGE_ERROR), "failed to replace schedule"))
			return
		}

		log.Info("Schedule replaced", slog.Int("saved", len(entries)))

		render.JSON(w, r, Response{
			Saved: len(entries),
		})
	}
}
