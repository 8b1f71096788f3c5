package handlers

import (
	"errors"
	"io"
	"net/http"

	"tripwise/models"
	"tripwise/services/orchestrator"
	"tripwise/utils"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ChatHandler exposes the conversation endpoints.
type ChatHandler struct {
	Service orchestrator.ChatService
}

// NewChatHandler builds the chat endpoint handler.
func NewChatHandler(svc orchestrator.ChatService) *ChatHandler {
	return &ChatHandler{Service: svc}
}

// Chat handles POST /api/chat: one full turn, tool calls resolved,
// final answer returned as JSON.
func (h *ChatHandler) Chat(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	response, err := h.Service.Chat(c.Request.Context(), req.Messages)
	if err != nil {
		logger.Error("Chat turn failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Error processing your request", "")
		return
	}

	c.JSON(http.StatusOK, response)
}

// ChatStream handles POST /api/chat/stream. Turns that involve tool
// calls resolve synchronously and return JSON; plain turns relay the
// model's event stream.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	response, stream, err := h.Service.ChatStream(c.Request.Context(), req.Messages)
	if err != nil {
		logger.Error("Streaming chat turn failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Error processing your request", "")
		return
	}

	if response != nil {
		c.JSON(http.StatusOK, response)
		return
	}
	defer stream.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			c.SSEvent("", "[DONE]")
			return false
		}
		if err != nil {
			logger.Error("Stream relay failed", zap.Error(err))
			return false
		}
		relayChunk(c, chunk)
		return true
	})
}

func relayChunk(c *gin.Context, chunk openai.ChatCompletionStreamResponse) {
	if len(chunk.Choices) == 0 {
		return
	}
	c.SSEvent("", chunk)
}
