// Package handlers holds the HTTP request handlers.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"draftpad-backend/interfaces/http/rest/middleware"
	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/service/automation"
	"draftpad-backend/internal/service/chat"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const heartbeatInterval = 15 * time.Second

// ChatHandler handles the chat-edit endpoint.
type ChatHandler struct {
	pipeline *chat.Pipeline
	validate *validator.Validate
	logger   *zap.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(pipeline *chat.Pipeline, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		pipeline: pipeline,
		validate: validator.New(),
		logger:   logger,
	}
}

// ChatRequest is the request body for POST /api/v1/chat.
type ChatRequest struct {
	Message             string            `json:"message" validate:"required"`
	History             []domain.ChatTurn `json:"history,omitempty"`
	AttachedDocumentIDs []string          `json:"attached_document_ids,omitempty"`
	ModelKey            string            `json:"model_key,omitempty"`
	DefaultOwnerScope   string            `json:"default_owner_scope,omitempty"`
	Mode                string            `json:"mode,omitempty" validate:"omitempty,oneof=ask create"`
	Stream              bool              `json:"stream"`
	// TaskID lets a reconnecting client resume the same logical task; the
	// server generates one when absent. Billing is keyed on it.
	TaskID string `json:"task_id,omitempty"`
}

// Chat handles POST /api/v1/chat. With stream=true the response is an SSE
// stream of pipeline events; otherwise the terminal event is returned as a
// single JSON payload.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	taskID := req.TaskID
	if taskID == "" {
		taskID = uuid.New().String()
	}
	ownerScope := req.DefaultOwnerScope
	if ownerScope == "" {
		ownerScope = "user:" + userID
	}

	pipelineReq := chat.Request{
		Message:             req.Message,
		History:             req.History,
		AttachedDocumentIDs: req.AttachedDocumentIDs,
		ModelKey:            req.ModelKey,
		DefaultOwnerScope:   ownerScope,
		Mode:                req.Mode,
		Stream:              req.Stream,
		TaskID:              taskID,
		UserID:              userID,
		Meta: automation.RequestMeta{
			Timezone: r.Header.Get("X-Timezone"),
			Country:  r.Header.Get("X-Country"),
		},
	}

	stream := chat.NewStream(64)
	go h.pipeline.Run(r.Context(), pipelineReq, stream)

	if req.Stream {
		h.serveSSE(w, r, stream)
		return
	}
	h.serveJSON(w, stream, taskID)
}

// serveSSE forwards every pipeline event as one SSE message.
func (h *ChatHandler) serveSSE(w http.ResponseWriter, r *http.Request, stream *chat.Stream) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stopHeartbeat := stream.StartHeartbeat(heartbeatInterval)
	defer stopHeartbeat()

	for ev := range stream.Events() {
		data, err := json.Marshal(ev)
		if err != nil {
			h.logger.Error("failed to encode stream event", zap.Error(err))
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
		flusher.Flush()
	}
}

// serveJSON drains the stream and returns only the terminal event.
func (h *ChatHandler) serveJSON(w http.ResponseWriter, stream *chat.Stream, taskID string) {
	var terminal *chat.Event
	for ev := range stream.Events() {
		if ev.Terminal() {
			copied := ev
			terminal = &copied
		}
	}

	switch {
	case terminal == nil:
		// The pipeline ended without a terminal event: the caller left.
		h.respondError(w, http.StatusServiceUnavailable, "request aborted")
	case terminal.Type == chat.EventError:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"error":          terminal.Message,
			"correlation_id": terminal.CorrelationID,
		})
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(terminal.Final)
	}
}

func (h *ChatHandler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
