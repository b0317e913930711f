package query

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

type ScheduleResolver interface {
	GetDoctorInfo(ctx context.Context, query string) (*api.ScheduleResult, error)
}

type Request struct {
	api.QueryRequest
}

type Response struct {
	response.Response
	Result api.ScheduleResult `json:"result"`
}

func New(log *slog.Logger, resolver ScheduleResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule.query.New"

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

		if req.Query == "" {
			log.Error("query is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "query is required"))
			return
		}

		log.Info("Request body decoded", slog.String("query", req.Query))

		result, err := resolver.GetDoctorInfo(r.Context(), req.Query)
		if err != nil {
			log.Error("Failed to resolve query", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.STORAGE_ERROR), "failed to resolve query"))
			return
		}

		log.Info("Query resolved", slog.String("kind", string(result.Kind)), slog.String("match", result.MatchKey))

		render.JSON(w, r, Response{
			Result: *result,
		})
	}
}
