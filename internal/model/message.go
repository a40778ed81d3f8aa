package model

// Sender identifies the author of one chat turn.
type Sender string

const (
	SenderUser      = Sender("user")
	SenderAssistant = Sender("assistant")
)

// Message is one turn in a chat. Text may contain markdown. The ID is
// assigned by the repository at write time, never by the caller.
type Message struct {
	ID        string `json:"id"`
	ChatID    string `json:"chat_id" validate:"required"`
	Sender    Sender `json:"sender" validate:"required,oneof=user assistant"`
	Text      string `json:"text" validate:"required"`
	Timestamp string `json:"timestamp" validate:"required"`
}
