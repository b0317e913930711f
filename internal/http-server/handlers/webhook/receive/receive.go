package receive

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"vani-service/internal/speech"
	"vani-service/internal/whatsapp"
	"vani-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const voiceUnavailableReply = "Sorry, I could not listen to your voice note. Could you type your question instead?"

type Replier interface {
	Reply(ctx context.Context, senderID, userText string) (string, error)
}

type Messenger interface {
	SendText(ctx context.Context, to, body string) error
	SendAudio(ctx context.Context, to, mediaID string) error
	MediaURL(ctx context.Context, mediaID string) (string, error)
	DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error)
	UploadMedia(ctx context.Context, filePath, mimeType string) (string, error)
}

type Response struct {
	Status string `json:"status"`
}

// New handles inbound WhatsApp messages. Meta retries deliveries that do
// not get a 200, so every outcome past payload decoding acknowledges the
// event; processing failures are logged, never surfaced to Meta.
// Transcriber and synthesizer may be nil when voice support is disabled.
func New(log *slog.Logger, replier Replier, messenger Messenger, transcriber speech.Transcriber, synthesizer speech.Synthesizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.webhook.receive.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var payload whatsapp.WebhookPayload

		if err := render.DecodeJSON(r.Body, &payload); err != nil {
			log.Error("Failed to decode webhook payload", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		msg, ok := payload.FirstMessage()
		if !ok {
			// Delivery receipts and read statuses land here too.
			render.JSON(w, r, Response{Status: "ignored"})
			return
		}

		log = log.With(slog.String("sender", msg.From), slog.String("type", msg.Type))
		log.Info("Message received")

		switch msg.Type {
		case whatsapp.MessageTypeText:
			handleText(r.Context(), log, replier, messenger, msg)
		case whatsapp.MessageTypeAudio:
			handleAudio(r.Context(), log, replier, messenger, transcriber, synthesizer, msg)
		default:
			log.Info("Unsupported message type ignored")
		}

		render.JSON(w, r, Response{Status: "received"})
	}
}

func handleText(ctx context.Context, log *slog.Logger, replier Replier, messenger Messenger, msg *whatsapp.Message) {
	if msg.Text == nil || msg.Text.Body == "" {
		return
	}

	reply, err := replier.Reply(ctx, msg.From, msg.Text.Body)
	if err != nil {
		log.Error("Failed to build reply", sl.Err(err))
		return
	}

	if err := messenger.SendText(ctx, msg.From, reply); err != nil {
		log.Error("Failed to send reply", sl.Err(err))
	}
}

func handleAudio(ctx context.Context, log *slog.Logger, replier Replier, messenger Messenger, transcriber speech.Transcriber, synthesizer speech.Synthesizer, msg *whatsapp.Message) {
	if msg.Audio == nil {
		return
	}

	if transcriber == nil {
		if err := messenger.SendText(ctx, msg.From, voiceUnavailableReply); err != nil {
			log.Error("Failed to send voice fallback", sl.Err(err))
		}
		return
	}

	transcript, err := transcribeNote(ctx, messenger, transcriber, msg.Audio.ID)
	if err != nil {
		log.Error("Failed to transcribe voice note", sl.Err(err))
		if err := messenger.SendText(ctx, msg.From, voiceUnavailableReply); err != nil {
			log.Error("Failed to send voice fallback", sl.Err(err))
		}
		return
	}

	log.Info("Voice note transcribed", slog.String("transcript", transcript))

	reply, err := replier.Reply(ctx, msg.From, transcript)
	if err != nil {
		log.Error("Failed to build reply", sl.Err(err))
		return
	}

	// Voice in, voice out when possible. Any synthesis or upload failure
	// degrades to a text reply instead of silence.
	if synthesizer != nil {
		if sendVoiceReply(ctx, log, messenger, synthesizer, msg.From, reply) {
			return
		}
	}

	if err := messenger.SendText(ctx, msg.From, reply); err != nil {
		log.Error("Failed to send reply", sl.Err(err))
	}
}

func transcribeNote(ctx context.Context, messenger Messenger, transcriber speech.Transcriber, mediaID string) (string, error) {
	url, err := messenger.MediaURL(ctx, mediaID)
	if err != nil {
		return "", err
	}

	audio, err := messenger.DownloadMedia(ctx, url)
	if err != nil {
		return "", err
	}

	return transcriber.Transcribe(ctx, audio)
}

func sendVoiceReply(ctx context.Context, log *slog.Logger, messenger Messenger, synthesizer speech.Synthesizer, to, reply string) bool {
	path, err := synthesizer.Synthesize(ctx, reply, "en-IN")
	if err != nil {
		log.Warn("Failed to synthesize voice reply", sl.Err(err))
		return false
	}
	defer os.Remove(path)

	mediaID, err := messenger.UploadMedia(ctx, path, "audio/ogg")
	if err != nil {
		log.Warn("Failed to upload voice reply", sl.Err(err))
		return false
	}

	if err := messenger.SendAudio(ctx, to, mediaID); err != nil {
		log.Warn("Failed to send voice reply", sl.Err(err))
		return false
	}

	return true
}
