package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"interview-prep/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type stubModel struct {
	reply string
	err   error
	calls int
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func newTestGenerator(t *testing.T, model *stubModel, built *int) *GeminiGenerator {
	t.Helper()
	g, err := NewGeminiGenerator("gemini-2.5-flash", 0, func(ctx context.Context, apiKey, name string) (llms.Model, error) {
		*built++
		assert.Equal(t, "gemini-2.5-flash", name)
		return model, nil
	})
	require.NoError(t, err)
	return g
}

func TestNewGeminiGenerator_RequiresModel(t *testing.T) {
	_, err := NewGeminiGenerator("", 0, nil)
	assert.Error(t, err)
}

func TestGeminiGenerator_Generate(t *testing.T) {
	model := &stubModel{reply: `[{"question":"Q","answer":"A"}]`}
	built := 0
	g := newTestGenerator(t, model, &built)

	out, err := g.Generate(context.Background(), "key-1", "prompt")
	require.NoError(t, err)
	assert.Equal(t, `[{"question":"Q","answer":"A"}]`, out)

	_, err = g.Generate(context.Background(), "key-1", "prompt again")
	require.NoError(t, err)
	assert.Equal(t, 1, built, "client is reused for the same key")

	_, err = g.Generate(context.Background(), "key-2", "prompt")
	require.NoError(t, err)
	assert.Equal(t, 2, built)
	assert.Equal(t, 3, model.calls)
}

func TestGeminiGenerator_MissingKey(t *testing.T) {
	built := 0
	g := newTestGenerator(t, &stubModel{}, &built)

	_, err := g.Generate(context.Background(), "", "prompt")
	assert.ErrorIs(t, err, domain.ErrAPIKeyMissing)
	assert.Zero(t, built)
}

func TestGeminiGenerator_ValidateKeyDropsRejectedClient(t *testing.T) {
	model := &stubModel{err: errors.New("googleapi: Error 400: API key not valid")}
	built := 0
	g := newTestGenerator(t, model, &built)

	err := g.ValidateKey(context.Background(), "bad-key")
	require.Error(t, err)
	assert.Equal(t, domain.CodeLLMKeyInvalid, domain.ClassifyLLMError(err).Code)

	_ = g.ValidateKey(context.Background(), "bad-key")
	assert.Equal(t, 2, built, "rejected key is not cached")
}

func TestGeminiGenerator_ClientsExpire(t *testing.T) {
	model := &stubModel{reply: "OK"}
	built := 0
	g := newTestGenerator(t, model, &built)
	defer g.Close()
	g.clientTTL = 20 * time.Millisecond

	_, err := g.Generate(context.Background(), "key-1", "prompt")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = g.Generate(context.Background(), "key-1", "prompt")
	require.NoError(t, err)
	assert.Equal(t, 2, built, "expired client is rebuilt")
}

func TestGeminiGenerator_Forget(t *testing.T) {
	model := &stubModel{reply: "OK"}
	built := 0
	g := newTestGenerator(t, model, &built)
	defer g.Close()

	_, err := g.Generate(context.Background(), "old-key", "prompt")
	require.NoError(t, err)
	g.Forget("old-key")
	_, err = g.Generate(context.Background(), "old-key", "prompt")
	require.NoError(t, err)
	assert.Equal(t, 2, built)
}
