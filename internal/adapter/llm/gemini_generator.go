package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/logger"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

const (
	keyCheckPrompt = "Reply with the single word OK."

	// Clients are rebuilt after clientTTL so rotated or removed keys age out.
	maxClients = 256
	clientTTL  = time.Hour
)

// ModelFactory builds a model client bound to one API key.
type ModelFactory func(ctx context.Context, apiKey, model string) (llms.Model, error)

// GoogleAIFactory builds Gemini clients through langchaingo.
func GoogleAIFactory(ctx context.Context, apiKey, model string) (llms.Model, error) {
	return googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
}

// GeminiGenerator implements domain.TextGenerator. Every user brings their own
// key, so a bounded set of clients is kept by key fingerprint.
type GeminiGenerator struct {
	modelName string
	timeout   time.Duration
	factory   ModelFactory
	clientTTL time.Duration

	mu      sync.Mutex
	clients *ristretto.Cache[string, llms.Model]
}

// NewGeminiGenerator creates a generator for modelName.
func NewGeminiGenerator(modelName string, timeout time.Duration, factory ModelFactory) (*GeminiGenerator, error) {
	if modelName == "" {
		return nil, fmt.Errorf("gemini model name cannot be empty")
	}
	if factory == nil {
		factory = GoogleAIFactory
	}
	clients, err := ristretto.NewCache(&ristretto.Config[string, llms.Model]{
		NumCounters:        maxClients * 10,
		MaxCost:            maxClients,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client cache: %w", err)
	}
	logger.Get().Info("Initializing Gemini generator", zap.String("model", modelName))
	return &GeminiGenerator{
		modelName: modelName,
		timeout:   timeout,
		factory:   factory,
		clientTTL: clientTTL,
		clients:   clients,
	}, nil
}

func fingerprint(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:8])
}

func (g *GeminiGenerator) clientFor(ctx context.Context, apiKey string) (llms.Model, error) {
	fp := fingerprint(apiKey)

	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients.Get(fp); ok {
		return c, nil
	}
	// The client outlives this request; don't bind it to the request context.
	c, err := g.factory(context.WithoutCancel(ctx), apiKey, g.modelName)
	if err != nil {
		return nil, err
	}
	g.clients.SetWithTTL(fp, c, 1, g.clientTTL)
	g.clients.Wait()
	return c, nil
}

// Forget drops the cached client for apiKey.
func (g *GeminiGenerator) Forget(apiKey string) {
	g.clients.Del(fingerprint(apiKey))
}

// Generate sends a single prompt and returns the text of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	if apiKey == "" {
		return "", domain.ErrAPIKeyMissing
	}
	client, err := g.clientFor(ctx, apiKey)
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := llms.GenerateFromSinglePrompt(ctx, client, prompt, llms.WithTemperature(0.7))
	if err != nil {
		logger.Get().Warn("Gemini generation failed",
			zap.String("model", g.modelName),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		if isKeyRejection(err) {
			g.Forget(apiKey)
		}
		return "", err
	}
	logger.Get().Debug("Gemini generation finished",
		zap.String("model", g.modelName),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(text)),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}

// ValidateKey issues a minimal prompt with the key.
func (g *GeminiGenerator) ValidateKey(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return domain.ErrAPIKeyMissing
	}
	_, err := g.Generate(ctx, apiKey, keyCheckPrompt)
	if err != nil {
		g.Forget(apiKey)
	}
	return err
}

func (g *GeminiGenerator) ModelName() string {
	return g.modelName
}

// Close drops every cached client.
func (g *GeminiGenerator) Close() {
	g.clients.Close()
}

func isKeyRejection(err error) bool {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return false
	}
	return domain.ClassifyLLMError(err).Code == domain.CodeLLMKeyInvalid
}

var (
	_ domain.TextGenerator = (*GeminiGenerator)(nil)
	_ domain.ClientEvicter = (*GeminiGenerator)(nil)
)
