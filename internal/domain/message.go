package domain

// Role tags a conversational message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a conversation sent to the chat model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
