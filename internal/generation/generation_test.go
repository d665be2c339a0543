package generation_test

import (
	"context"
	"testing"

	"github.com/phrazzld/studyplan-api/internal/generation"
	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	t.Parallel()
	var g generation.TextGenerator = generation.Unavailable{}
	text, err := g.Generate(context.Background(), generation.SystemAndUser("", "hi"), generation.Options{})
	assert.Empty(t, text)
	assert.ErrorIs(t, err, generation.ErrGenerationUnavailable)
}

func TestSystemAndUser(t *testing.T) {
	t.Parallel()
	turns := generation.SystemAndUser(" be brief ", "status?")
	assert.Equal(t, []generation.Turn{
		{Role: generation.RoleSystem, Text: "be brief"},
		{Role: generation.RoleUser, Text: "status?"},
	}, turns)

	assert.Equal(t, []generation.Turn{{Role: generation.RoleUser, Text: "status?"}},
		generation.SystemAndUser("  ", "status?"))
}
