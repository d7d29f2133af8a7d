package llm

import (
	"context"
	"strings"
)

// Provider is the chat-completion boundary: it takes the ranked retrieved
// chunks plus serialized conversation history and produces an answer. The
// completion protocol itself is entirely the provider's concern.
type Provider interface {
	Generate(ctx context.Context, query string, matches []string, messageHistory []string) (string, error)
}

// BuildContext serializes retrieved chunks and prior turns into the prompt
// context block shared by all providers.
func BuildContext(matches []string, messageHistory []string) string {
	var b strings.Builder
	if len(messageHistory) > 0 {
		b.WriteString("Conversation so far:\n")
		b.WriteString(strings.Join(messageHistory, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("Retrieved document context:\n")
	b.WriteString(strings.Join(matches, "\n"))
	return b.String()
}
