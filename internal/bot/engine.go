package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"vani-service/api"
	"vani-service/pkg/response"
	"vani-service/pkg/sl"
)

const (
	toolCheckDoctor    = "check_doctor"
	toolUpdateSchedule = "update_schedule"
)

// Scheduler is the slice of the service layer the dialogue engine consumes.
// The engine never sees raw fuzzy scores, only classified payloads.
type Scheduler interface {
	GetDoctorInfo(ctx context.Context, query string) (*api.ScheduleResult, error)
	UpdateDoctorStatus(ctx context.Context, doctorQuery, status, dayQuery string) (*api.UpdateResult, error)
	Overview(ctx context.Context) (string, error)
}

type History interface {
	Load(ctx context.Context, senderID string) ([]ChatMessage, error)
	Save(ctx context.Context, senderID string, history []ChatMessage) error
}

// Engine orchestrates the LLM conversation and the tool-call protocol. It
// owns the per-sender history; the resolver and store below it stay
// stateless.
type Engine struct {
	llm       LLMClient
	scheduler Scheduler
	history   History
	log       *slog.Logger
	now       func() time.Time
}

func NewEngine(llm LLMClient, scheduler Scheduler, history History, log *slog.Logger) *Engine {
	return &Engine{
		llm:       llm,
		scheduler: scheduler,
		history:   history,
		log:       log,
		now:       time.Now,
	}
}

// Reply handles one patient message: persona chat with tool-call detection.
// When the model emits a check_doctor call, the schedule result is fed back
// for a second completion that phrases the answer. Unparseable tool JSON is
// a logged, typed miss that degrades to a canned apology; it never panics
// the conversation.
func (e *Engine) Reply(ctx context.Context, senderID, userText string) (string, error) {
	const op = "bot.Engine.Reply"

	overview, err := e.scheduler.Overview(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	history, err := e.history.Load(ctx, senderID)
	if err != nil {
		// Degraded but answerable: start the turn without context.
		e.log.Warn("Failed to load history", sl.Err(err), slog.String("sender", senderID))
		history = nil
	}

	messages := append(append([]ChatMessage(nil), history...), ChatMessage{
		Role:    ChatRoleUser,
		Content: userText,
	})

	system := fmt.Sprintf(personaPrompt, overview)

	resp, err := e.llm.Complete(ctx, LLMRequest{
		System:      []string{system},
		Messages:    messages,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	reply := resp.Text

	if strings.Contains(reply, toolCheckDoctor) {
		call, err := parseToolCall(reply)
		if err != nil {
			e.log.Warn("Model produced unparseable tool call", sl.Err(err))
			return fallbackReply, nil
		}

		reply, err = e.runCheckDoctor(ctx, system, messages, resp.Text, call.Name)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	turn := append(messages, ChatMessage{Role: ChatRoleAssistant, Content: reply})
	if err := e.history.Save(ctx, senderID, turn); err != nil {
		e.log.Warn("Failed to save history", sl.Err(err), slog.String("sender", senderID))
	}

	return reply, nil
}

func (e *Engine) runCheckDoctor(ctx context.Context, system string, messages []ChatMessage, toolReply, name string) (string, error) {
	result, err := e.scheduler.GetDoctorInfo(ctx, name)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}

	final := append(append([]ChatMessage(nil), messages...),
		ChatMessage{Role: ChatRoleAssistant, Content: toolReply},
		ChatMessage{Role: ChatRoleUser, Content: fmt.Sprintf(toolResultPrompt, data)},
	)

	resp, err := e.llm.Complete(ctx, LLMRequest{
		System:   []string{system},
		Messages: final,
	})
	if err != nil {
		return "", err
	}

	return resp.Text, nil
}

// AdminCommand extracts an update_schedule call from free admin text and
// applies it, relaying the service's confirmation verbatim. Text without a
// tool call is returned as the model's own reply.
func (e *Engine) AdminCommand(ctx context.Context, commandText string) (string, error) {
	const op = "bot.Engine.AdminCommand"

	today := e.now().Weekday().String()

	resp, err := e.llm.Complete(ctx, LLMRequest{
		System:      []string{fmt.Sprintf(adminPrompt, today, today)},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: commandText}},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	call, err := parseToolCall(resp.Text)
	if err != nil {
		// The model answered in prose; relay it instead of forcing a tool.
		return resp.Text, nil
	}

	if call.Tool != toolUpdateSchedule {
		return resp.Text, nil
	}

	day := call.Day
	if day == "" {
		day = "ALL"
	}

	result, err := e.scheduler.UpdateDoctorStatus(ctx, call.Name, call.Status, day)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return result.Message, nil
}

type toolCall struct {
	Tool   string `json:"tool"`
	Name   string `json:"name"`
	Day    string `json:"day"`
	Status string `json:"status"`
}

var toolJSONPattern = regexp.MustCompile(`\{[\s\S]*?\}`)

// parseToolCall pulls the first JSON object out of the model text. Models
// wrap tool JSON in prose or code fences often enough that decoding the
// whole reply would fail constantly.
func parseToolCall(text string) (*toolCall, error) {
	raw := toolJSONPattern.FindString(text)
	if raw == "" {
		return nil, response.ErrNoToolCall
	}

	var call toolCall
	if err := json.Unmarshal([]byte(raw), &call); err != nil {
		return nil, fmt.Errorf("%w: %s", response.ErrBadToolJSON, err)
	}

	return &call, nil
}
