package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"interview-prep/internal/adapter/youtube"
	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"
	"interview-prep/internal/prompt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	fallbackModel       = "tavily_search_fallback"
	maxSearchQueries    = 3
	resultsPerQuery     = 3
	fallbackMaxResults  = 10
	fallbackKeywords    = 5
	defaultVideoLength  = "15-30 min"
	defaultPracticeHint = "medium"
)

// materialSelection is the model's pick of the best resources per bucket.
type materialSelection struct {
	domain.MaterialBuckets
	Keywords    []string `json:"keywords"`
	SearchQuery string   `json:"search_query"`
}

// StudyMaterialService finds, curates and caches learning resources per question.
type StudyMaterialService interface {
	GetOrCreate(ctx context.Context, user *domain.User, questionID primitive.ObjectID, req *dto.StudyMaterialRequest) (*dto.StudyMaterialResponse, error)
	ByQuestion(ctx context.Context, userID, questionID primitive.ObjectID) (*dto.StudyMaterialResponse, error)
	BySession(ctx context.Context, userID, sessionID primitive.ObjectID) ([]dto.QuestionMaterials, error)
	Refresh(ctx context.Context, user *domain.User, materialID primitive.ObjectID) (*dto.StudyMaterialResponse, error)
	Delete(ctx context.Context, userID, materialID primitive.ObjectID) error
}

type studyMaterialServiceImpl struct {
	materials domain.StudyMaterialRepository
	questions domain.QuestionRepository
	sessions  domain.SessionRepository
	searcher  domain.WebSearcher
	videos    domain.VideoMetadata
	llm       llmClient
	model     string
	freshFor  time.Duration
	now       func() time.Time
}

// NewStudyMaterialService builds the service. videos may be nil, in which
// case YouTube links keep their search metadata only.
func NewStudyMaterialService(
	materials domain.StudyMaterialRepository,
	questions domain.QuestionRepository,
	sessions domain.SessionRepository,
	searcher domain.WebSearcher,
	videos domain.VideoMetadata,
	generator domain.TextGenerator,
	keys KeyResolver,
	freshFor time.Duration,
) StudyMaterialService {
	return &studyMaterialServiceImpl{
		materials: materials,
		questions: questions,
		sessions:  sessions,
		searcher:  searcher,
		videos:    videos,
		llm:       llmClient{generator: generator, keys: keys},
		model:     generator.ModelName(),
		freshFor:  freshFor,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *studyMaterialServiceImpl) GetOrCreate(ctx context.Context, user *domain.User, questionID primitive.ObjectID, req *dto.StudyMaterialRequest) (*dto.StudyMaterialResponse, error) {
	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Question not found")
		}
		return nil, domain.NewInternalError("Failed to load question", err)
	}
	session, err := ownedSession(ctx, s.sessions, question.Session, user.ID)
	if err != nil {
		return nil, err
	}

	if !req.ForceRefresh {
		existing, err := s.materials.GetByQuestionAndUser(ctx, questionID.Hex(), user.ID.Hex())
		switch {
		case err == nil && existing.IsFresh(s.now(), s.freshFor):
			resp := toMaterialResponse(existing)
			return &resp, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, domain.NewInternalError("Failed to load study materials", err)
		}
	}

	text := strings.TrimSpace(req.Question)
	if text == "" {
		text = question.Question
	}
	material := &domain.StudyMaterial{
		SessionID:       session.ID.Hex(),
		QuestionID:      questionID.Hex(),
		UserID:          user.ID.Hex(),
		QuestionText:    question.Question,
		Role:            session.Role,
		ExperienceLevel: session.Experience,
	}
	if err := s.generate(ctx, user, text, material); err != nil {
		return nil, err
	}
	saved, err := s.materials.Upsert(ctx, material)
	if err != nil {
		return nil, domain.NewInternalError("Failed to save study materials", err)
	}
	resp := toMaterialResponse(saved)
	return &resp, nil
}

// generate fills the buckets and metadata of m for question. The AI pipeline
// is tried first; any failure after the key check falls back to a plain search.
func (s *studyMaterialServiceImpl) generate(ctx context.Context, user *domain.User, question string, m *domain.StudyMaterial) error {
	if _, err := s.llm.keys.GeminiKey(ctx, user); err != nil {
		return err
	}
	selection, err := s.curate(ctx, user, question, m.Role, m.ExperienceLevel)
	if err != nil {
		logger.Get().Warn("AI study material curation failed, using search fallback",
			zap.String("questionID", m.QuestionID), zap.Error(err))
		s.fallback(ctx, question, m)
		return nil
	}
	m.MaterialBuckets = selection.MaterialBuckets
	m.Keywords = selection.Keywords
	m.SearchQuery = selection.SearchQuery
	m.AIModelUsed = s.model
	m.TotalSources = m.MaterialBuckets.Total()
	m.UpdatedAt = s.now()
	return nil
}

func (s *studyMaterialServiceImpl) curate(ctx context.Context, user *domain.User, question, role, experience string) (*materialSelection, error) {
	var queries []string
	if err := s.llm.generateJSON(ctx, user, "study_queries", prompt.SearchQueries(question, role, experience), &queries); err != nil {
		return nil, err
	}
	if len(queries) > maxSearchQueries {
		queries = queries[:maxSearchQueries]
	}

	found := make([][]domain.SearchResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			found[i] = s.searcher.Search(gctx, fmt.Sprintf("%s %s interview preparation", q, role), resultsPerQuery)
			return nil
		})
	}
	_ = g.Wait()

	var all []domain.SearchResult
	for _, rs := range found {
		all = append(all, rs...)
	}
	buckets := s.categorize(ctx, all)

	text, err := prompt.Selection(question, role, experience, buckets)
	if err != nil {
		return nil, err
	}
	var selection materialSelection
	if err := s.llm.generateJSON(ctx, user, "study_selection", text, &selection); err != nil {
		return nil, err
	}
	return &selection, nil
}

func (s *studyMaterialServiceImpl) fallback(ctx context.Context, question string, m *domain.StudyMaterial) {
	results := s.searcher.Search(ctx, fmt.Sprintf("%s %s interview tutorial", question, m.Role), fallbackMaxResults)
	m.MaterialBuckets = s.categorize(ctx, results)
	words := strings.Fields(strings.ToLower(question))
	if len(words) > fallbackKeywords {
		words = words[:fallbackKeywords]
	}
	m.Keywords = words
	m.SearchQuery = fmt.Sprintf("%s %s interview", question, m.Role)
	m.AIModelUsed = fallbackModel
	m.TotalSources = m.MaterialBuckets.Total()
	m.UpdatedAt = s.now()
}

// categorize sorts results into buckets by URL and enriches YouTube links
// with video metadata when available.
func (s *studyMaterialServiceImpl) categorize(ctx context.Context, results []domain.SearchResult) domain.MaterialBuckets {
	var b domain.MaterialBuckets
	for _, r := range results {
		res := domain.Resource{
			Title:   r.Title,
			URL:     r.URL,
			Source:  r.SiteName,
			Content: r.Content,
			Score:   r.Score,
			Author:  r.Author,
		}
		kind := domain.ClassifyURL(r.URL)
		switch kind {
		case domain.KindYouTube:
			res.Duration = defaultVideoLength
			res.Platform = "YouTube"
		case domain.KindPractice:
			res.Difficulty = defaultPracticeHint
		}
		b.Add(kind, res)
	}
	s.enrichVideos(ctx, b.YouTubeLinks)
	b.Normalize()
	return b
}

func (s *studyMaterialServiceImpl) enrichVideos(ctx context.Context, links []domain.Resource) {
	if s.videos == nil || len(links) == 0 {
		return
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		if id := youtube.VideoID(l.URL); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	details, err := s.videos.Videos(ctx, ids)
	if err != nil {
		logger.Get().Warn("YouTube metadata lookup failed", zap.Int("videos", len(ids)), zap.Error(err))
		return
	}
	for i := range links {
		d, ok := details[youtube.VideoID(links[i].URL)]
		if !ok {
			continue
		}
		if d.Duration != "" {
			links[i].Duration = d.Duration
		}
		links[i].Channel = d.Channel
		links[i].Views = d.Views
		if links[i].Title == "" {
			links[i].Title = d.Title
		}
	}
}

func (s *studyMaterialServiceImpl) ByQuestion(ctx context.Context, userID, questionID primitive.ObjectID) (*dto.StudyMaterialResponse, error) {
	m, err := s.materials.GetByQuestionAndUser(ctx, questionID.Hex(), userID.Hex())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("No study materials found for this question")
		}
		return nil, domain.NewInternalError("Failed to load study materials", err)
	}
	resp := toMaterialResponse(m)
	return &resp, nil
}

func (s *studyMaterialServiceImpl) BySession(ctx context.Context, userID, sessionID primitive.ObjectID) ([]dto.QuestionMaterials, error) {
	ms, err := s.materials.ListBySessionAndUser(ctx, sessionID.Hex(), userID.Hex())
	if err != nil {
		return nil, domain.NewInternalError("Failed to list study materials", err)
	}
	return groupByQuestion(ms), nil
}

// groupByQuestion keeps the order in which questions first appear in ms.
func groupByQuestion(ms []*domain.StudyMaterial) []dto.QuestionMaterials {
	index := map[string]int{}
	out := make([]dto.QuestionMaterials, 0)
	for _, m := range ms {
		i, ok := index[m.QuestionID]
		if !ok {
			i = len(out)
			index[m.QuestionID] = i
			out = append(out, dto.QuestionMaterials{QuestionID: m.QuestionID, QuestionText: m.QuestionText})
		}
		out[i].Materials = append(out[i].Materials, toMaterialResponse(m))
	}
	return out
}

func (s *studyMaterialServiceImpl) Refresh(ctx context.Context, user *domain.User, materialID primitive.ObjectID) (*dto.StudyMaterialResponse, error) {
	existing, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Study material not found")
		}
		return nil, domain.NewInternalError("Failed to load study materials", err)
	}
	if existing.UserID != user.ID.Hex() {
		return nil, domain.NewNotFoundError("Study material not found")
	}
	if err := s.generate(ctx, user, existing.QuestionText, existing); err != nil {
		return nil, err
	}
	saved, err := s.materials.Upsert(ctx, existing)
	if err != nil {
		return nil, domain.NewInternalError("Failed to save study materials", err)
	}
	resp := toMaterialResponse(saved)
	return &resp, nil
}

func (s *studyMaterialServiceImpl) Delete(ctx context.Context, userID, materialID primitive.ObjectID) error {
	n, err := s.materials.DeleteOwned(ctx, materialID, userID.Hex())
	if err != nil {
		return domain.NewInternalError("Failed to delete study materials", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("Study material not found")
	}
	return nil
}
