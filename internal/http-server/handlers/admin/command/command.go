package command

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

type CommandRunner interface {
	AdminCommand(ctx context.Context, commandText string) (string, error)
}

type Request struct {
	api.AdminCommandRequest
}

type Response struct {
	response.Response
	Reply string `json:"reply"`
}

func New(log *slog.Logger, runner CommandRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.command.New"

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

		if req.Command == "" {
			log.Error("command is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "command is required"))
			return
		}

		log.Info("Request body decoded", slog.String("command", req.Command))

		reply, err := runner.AdminCommand(r.Context(), req.Command)
		if err != nil {
			log.Error("Failed to run admin command", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to run admin command"))
			return
		}

		log.Info("Admin command handled", slog.String("reply", reply))

		render.JSON(w, r, Response{
			Reply: reply,
		})
	}
}
