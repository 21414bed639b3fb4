package handler

import (
	"net/http"

	"leasebot/internal/model"
	"leasebot/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.chatService.Process(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process message: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Reset handles POST /reset
func (h *ChatHandler) Reset(c *gin.Context) {
	// Body is optional; a bare POST resets and returns a fresh id.
	var req model.ResetRequest
	_ = c.ShouldBindJSON(&req)

	record, err := h.chatService.Reset(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset conversation: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.ResetResponse{
		Message:        "Conversation reset successfully",
		ConversationID: record.ConversationID,
	})
}
