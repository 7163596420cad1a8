package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausecheck-backend/resilience"
)

func TestGenerateRequiresGeminiClient(t *testing.T) {
	client := NewClient()

	_, err := client.generate(context.Background(), "Extract clauses.", 0.1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini client not initialized")
	// configuration errors must not be retried
	assert.False(t, resilience.IsTransient(err))
}
