package ocr

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const transcriptionPrompt = `You are a transcription engine. The image is a
photographed or scanned class timetable. Transcribe every piece of visible
text exactly as printed, one table row per line, preserving the reading
order. Do not interpret, summarise, translate or reformat anything, and do
not add any commentary. Output plain text only.`

// GeminiEngine performs text recognition through the Gemini API.
type GeminiEngine struct {
	apiKey  string
	model   string
	timeout time.Duration
}

// NewGemini constructs a Gemini-backed engine. The timeout bounds a whole
// Recognize call including retries; zero means no deadline beyond the
// caller's context.
func NewGemini(apiKey, model string, timeout time.Duration) *GeminiEngine {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiEngine{
		apiKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		timeout: timeout,
	}
}

// Recognize submits the image and returns the recognized text blob.
// Transient failures are retried a few times before giving up.
func (e *GeminiEngine) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	if e.apiKey == "" {
		return "", errors.New("ocr api key is empty")
	}
	if len(image) == 0 {
		return "", errors.New("empty image")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.model)
	m.GenerationConfig = genai.GenerationConfig{Temperature: ptrFloat32(0)}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(transcriptionPrompt)},
	}

	parts := []genai.Part{
		genai.Text("Transcribe this timetable image to plain text."),
		&genai.Blob{MIMEType: mimeType, Data: image},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}
		text := collectText(resp)
		if text == "" {
			return "", errors.New("gemini: empty recognition response")
		}
		return text, nil
	}
	return "", lastErr
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

func ptrFloat32(v float32) *float32 { return &v }
