package generation

import (
	"context"
	"strings"
)

// Role is the author of a conversation turn.
type Role string

// Conversation roles
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleModel  Role = "model"
)

// Turn is one message of a prompt.
type Turn struct {
	Role Role
	Text string
}

// Options tunes a single generation call. Zero values leave the service default.
type Options struct {
	MaxTokens   int
	Temperature float32
	// JSON asks for a JSON document instead of prose.
	JSON bool
}

// TextGenerator produces text from a conversation.
type TextGenerator interface {
	// Generate returns the generated text, trimmed. An empty result is reported
	// as ErrInvalidResponse rather than as an empty string.
	Generate(ctx context.Context, turns []Turn, opts Options) (string, error)
}

// Unavailable is the TextGenerator used when no service is configured. Every
// call fails with ErrGenerationUnavailable.
type Unavailable struct{}

// Generate implements TextGenerator.
func (Unavailable) Generate(context.Context, []Turn, Options) (string, error) {
	return "", ErrGenerationUnavailable
}

// SystemAndUser builds the common two-turn prompt.
func SystemAndUser(system, user string) []Turn {
	turns := make([]Turn, 0, 2)
	if s := strings.TrimSpace(system); s != "" {
		turns = append(turns, Turn{Role: RoleSystem, Text: s})
	}
	return append(turns, Turn{Role: RoleUser, Text: user})
}
