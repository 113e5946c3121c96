package google

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvokeRequiresAPIKey(t *testing.T) {
	l := New("", "")
	_, err := l.Invoke(context.Background(), "hello")
	assert.Error(t, err)
}

func TestInvokeRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := New("key", "gemini-2.5-flash")
	_, err := l.Invoke(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDefaultsModelName(t *testing.T) {
	l := New("key", "")
	assert.Equal(t, defaultModel, l.modelName)
}
