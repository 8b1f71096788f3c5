package models

// ChatMessage is a single conversation turn coming from the frontend.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload posted to /api/chat and /api/chat/stream.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required"`
}

// ChatResponse is what the chat handler returns to the frontend: the
// assistant's final text, the travel-API calls made during the turn, and
// the classified result sets for the sidebars.
type ChatResponse struct {
	Response string                               `json:"response"`
	APICalls []APICallRecord                      `json:"apiCalls,omitempty"`
	Results  map[ResultCategory]ClassifiedResults `json:"results,omitempty"`
}
