package status

import (
	"context"
	"log/slog"
	"net/http"

	"vani-service/api"
	"vani-service/pkg/response"
	"vani-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type StatusUpdater interface {
	UpdateDoctorStatus(ctx context.Context, doctorQuery, status, dayQuery string) (*api.UpdateResult, error)
}

type Request struct {
	api.StatusUpdateRequest
}

type Response struct {
	response.Response
	Result api.UpdateResult `json:"result"`
}

func New(log *slog.Logger, updater StatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule.status.New"

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

		if req.DoctorName == "" {
			log.Error("doctor_name is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "doctor_name is required"))
			return
		}

		if req.Status == "" {
			log.Error("status is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "status is required"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		// A doctor that does not resolve is reported in the result body, not
		// as an HTTP failure. The caller reads ok/message.
		result, err := updater.UpdateDoctorStatus(r.Context(), req.DoctorName, req.Status, req.Day)
		if err != nil {
			log.Error("Failed to update status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.STORAGE_ERROR), "failed to update status"))
			return
		}

		log.Info("Status update finished", slog.Bool("ok", result.OK), slog.String("message", result.Message))

		render.JSON(w, r, Response{
			Result: *result,
		})
	}
}
