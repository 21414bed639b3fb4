package model

// ChatMessage is a single turn in the conversation history.
type ChatMessage struct {
	Role    string `json:"role" bson:"role"`
	Content string `json:"content" bson:"content"`
}

// ChatRequest represents a chat request
type ChatRequest struct {
	Message        string        `json:"message" binding:"required"`
	ConversationID string        `json:"conversation_id,omitempty"`
	History        []ChatMessage `json:"conversation_history,omitempty"`
}

// ChatResponse represents a chat result response
type ChatResponse struct {
	Response       string         `json:"response"`
	ConversationID string         `json:"conversation_id"`
	Fields         map[string]any `json:"collected_fields"`
	IsComplete     bool           `json:"is_complete"`
	MissingFields  []string       `json:"missing_fields,omitempty"`
	Took           int64          `json:"took_ms"`
}

// ResetRequest represents a conversation reset request
type ResetRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
}

// ResetResponse acknowledges a reset and carries the new conversation id.
type ResetResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}
