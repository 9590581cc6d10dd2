package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ramonehamilton/draft-claw/internal/api/response"
	"github.com/ramonehamilton/draft-claw/internal/commands"
)

// CommandHandler relays chat messages from an external bot to the command
// processor.
type CommandHandler struct {
	processor *commands.Processor
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(processor *commands.Processor) *CommandHandler {
	return &CommandHandler{processor: processor}
}

// CommandRequest is one relayed chat message.
type CommandRequest struct {
	User        string `json:"user"`
	Channel     string `json:"channel"`
	ChannelName string `json:"channel_name,omitempty"`
	Text        string `json:"text"`
}

// CommandResponse carries the reply to post back. Handled is false when
// the message should be ignored.
type CommandResponse struct {
	Reply   string `json:"reply"`
	Handled bool   `json:"handled"`
}

// Relay answers one chat message.
func (h *CommandHandler) Relay(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.User == "" || req.Text == "" {
		response.BadRequest(w, errors.New("user and text are required"))
		return
	}

	reply, handled := h.processor.Handle(r.Context(), commands.Request{
		ID:          middleware.GetReqID(r.Context()),
		User:        req.User,
		Channel:     req.Channel,
		ChannelName: req.ChannelName,
		Text:        req.Text,
	})
	response.Success(w, CommandResponse{Reply: reply, Handled: handled})
}
