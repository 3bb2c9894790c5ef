package entity

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	Role    MessageRole
	Content string
	// ImageURL is an http(s) or data: URL sent alongside Content as a
	// multi-part message. Empty for text-only messages.
	ImageURL string
}
