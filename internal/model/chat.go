package model

// ChatMessage is one turn of a prior conversation. Role is "user" or "model".
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest is the payload for the shopping assistant.
type ChatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []ChatMessage `json:"conversationHistory,omitempty"`
}

// ChatResponse is the assistant reply.
type ChatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}
