package ocr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly-api/pkg/config"
)

func TestNewSelectsGeminiByDefault(t *testing.T) {
	engine, err := New(config.OCRConfig{APIKey: "key", Timeout: 30 * time.Second})
	require.NoError(t, err)

	gemini, ok := engine.(*GeminiEngine)
	require.True(t, ok)
	assert.Equal(t, "gemini-1.5-flash", gemini.model)
	assert.Equal(t, 30*time.Second, gemini.timeout)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(config.OCRConfig{Provider: "tesseract"})
	require.Error(t, err)
}

func TestGeminiRecognizeRequiresAPIKey(t *testing.T) {
	engine := NewGemini("", "", time.Second)
	_, err := engine.Recognize(context.Background(), []byte("img"), "image/png")
	require.Error(t, err)
}

func TestGeminiRecognizeHonorsTimeout(t *testing.T) {
	engine := NewGemini("key", "", time.Nanosecond)

	done := make(chan error, 1)
	go func() {
		_, err := engine.Recognize(context.Background(), []byte("img"), "image/png")
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err, "expired deadline must abort recognition")
	case <-time.After(5 * time.Second):
		t.Fatal("recognition did not respect the configured timeout")
	}
}
