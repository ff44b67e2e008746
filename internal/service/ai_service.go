package service

import (
	"context"
	"strings"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"
	"interview-prep/internal/metrics"
	"interview-prep/internal/prompt"
	"interview-prep/internal/util"

	"go.uber.org/zap"
)

// KeyResolver yields the caller's usable Gemini key.
type KeyResolver interface {
	GeminiKey(ctx context.Context, user *domain.User) (string, error)
}

// llmClient runs prompts with the requesting user's own key and maps upstream
// failures to user-facing errors. Calls are never retried.
type llmClient struct {
	generator domain.TextGenerator
	keys      KeyResolver
}

func (c llmClient) generate(ctx context.Context, user *domain.User, operation, text string) (string, error) {
	apiKey, err := c.keys.GeminiKey(ctx, user)
	if err != nil {
		return "", err
	}
	out, err := c.generator.Generate(ctx, apiKey, text)
	if err != nil {
		classified := domain.ClassifyLLMError(err)
		metrics.LLMRequestsTotal.WithLabelValues(operation, strings.ToLower(string(classified.Code))).Inc()
		logger.Get().Warn("LLM call failed",
			zap.String("operation", operation),
			zap.String("code", string(classified.Code)),
			zap.Error(err))
		return "", classified
	}
	metrics.LLMRequestsTotal.WithLabelValues(operation, "ok").Inc()
	return out, nil
}

// generateJSON runs the prompt and decodes the recovered JSON into out.
func (c llmClient) generateJSON(ctx context.Context, user *domain.User, operation, text string, out interface{}) error {
	raw, err := c.generate(ctx, user, operation, text)
	if err != nil {
		return err
	}
	if err := util.CleanAIJSON(raw, out); err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(operation, "bad_response").Inc()
		logger.Get().Warn("LLM response was not valid JSON",
			zap.String("operation", operation),
			zap.Int("response_chars", len(raw)),
			zap.Error(err))
		return domain.NewLLMBadResponseError(err)
	}
	return nil
}

// AIService generates interview content with the caller's Gemini key.
type AIService interface {
	GenerateQuestions(ctx context.Context, user *domain.User, req *dto.GenerateQuestionsRequest) ([]dto.QAPair, error)
	GenerateExplanation(ctx context.Context, user *domain.User, req *dto.ExplanationRequest) (*dto.ExplanationResponse, error)
	Followup(ctx context.Context, user *domain.User, req *dto.FollowupRequest) (*dto.FollowupResponse, error)
}

type aiServiceImpl struct {
	llm llmClient
}

func NewAIService(generator domain.TextGenerator, keys KeyResolver) AIService {
	return &aiServiceImpl{llm: llmClient{generator: generator, keys: keys}}
}

func (s *aiServiceImpl) GenerateQuestions(ctx context.Context, user *domain.User, req *dto.GenerateQuestionsRequest) ([]dto.QAPair, error) {
	text := prompt.QuestionAnswer(req.Role, req.Experience.String(), req.TopicsToFocus, req.NumberOfQuestions)
	var pairs []dto.QAPair
	if err := s.llm.generateJSON(ctx, user, "generate_questions", text, &pairs); err != nil {
		return nil, err
	}
	out := make([]dto.QAPair, 0, len(pairs))
	for _, p := range pairs {
		if strings.TrimSpace(p.Question) == "" {
			continue
		}
		p.Answer = util.FixEscapedNewlines(p.Answer)
		out = append(out, p)
	}
	return out, nil
}

func (s *aiServiceImpl) GenerateExplanation(ctx context.Context, user *domain.User, req *dto.ExplanationRequest) (*dto.ExplanationResponse, error) {
	text := prompt.Explanation(req.Question, req.Experience.String())
	var resp dto.ExplanationResponse
	if err := s.llm.generateJSON(ctx, user, "generate_explanation", text, &resp); err != nil {
		return nil, err
	}
	resp.Explanation = util.FixEscapedNewlines(resp.Explanation)
	return &resp, nil
}

func (s *aiServiceImpl) Followup(ctx context.Context, user *domain.User, req *dto.FollowupRequest) (*dto.FollowupResponse, error) {
	text := prompt.Followup(req.Context, req.Question)
	var resp dto.FollowupResponse
	if err := s.llm.generateJSON(ctx, user, "followup", text, &resp); err != nil {
		return nil, err
	}
	resp.Answer = util.FixEscapedNewlines(resp.Answer)
	return &resp, nil
}
