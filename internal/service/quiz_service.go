package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"
	"interview-prep/internal/prompt"
	"interview-prep/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	quizContextQuestions = 10
	quizListLimit        = 20
	recentQuizCount      = 5
	dailyPerformanceDays = 30
	maxTopics            = 5
)

// quizEvaluation is the model's grading reply. Only feedback and
// explanations are trusted; the score is always recomputed.
type quizEvaluation struct {
	Score      *int    `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Questions  []struct {
		Explanation string `json:"explanation"`
	} `json:"questions"`
	Feedback string `json:"feedback"`
}

// QuizService generates, grades and reports on multiple-choice quizzes.
type QuizService interface {
	Generate(ctx context.Context, user *domain.User, sessionID primitive.ObjectID, count int) (*dto.GeneratedQuizResponse, error)
	Submit(ctx context.Context, user *domain.User, quizID primitive.ObjectID, req *dto.SubmitQuizRequest) (*dto.QuizResultResponse, error)
	Results(ctx context.Context, userID, quizID primitive.ObjectID) (*dto.QuizResponse, error)
	ListBySession(ctx context.Context, userID, sessionID primitive.ObjectID) ([]dto.QuizResponse, error)
	Delete(ctx context.Context, userID, quizID primitive.ObjectID) error
	Analytics(ctx context.Context, userID, sessionID primitive.ObjectID, timeRange string) (*dto.QuizAnalyticsResponse, error)
	TopicPerformance(ctx context.Context, userID, sessionID primitive.ObjectID) (*dto.TopicPerformanceResponse, error)
	TrackTime(ctx context.Context, userID, quizID primitive.ObjectID, questionIndex int) error
}

type quizServiceImpl struct {
	quizzes   domain.QuizRepository
	sessions  domain.SessionRepository
	questions domain.QuestionRepository
	llm       llmClient
	now       func() time.Time
}

func NewQuizService(
	quizzes domain.QuizRepository,
	sessions domain.SessionRepository,
	questions domain.QuestionRepository,
	generator domain.TextGenerator,
	keys KeyResolver,
) QuizService {
	return &quizServiceImpl{
		quizzes:   quizzes,
		sessions:  sessions,
		questions: questions,
		llm:       llmClient{generator: generator, keys: keys},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *quizServiceImpl) Generate(ctx context.Context, user *domain.User, sessionID primitive.ObjectID, count int) (*dto.GeneratedQuizResponse, error) {
	session, err := ownedSession(ctx, s.sessions, sessionID, user.ID)
	if err != nil {
		return nil, err
	}
	source, err := s.questions.FirstBySession(ctx, session.ID, quizContextQuestions)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load session questions", err)
	}
	if len(source) == 0 {
		return nil, domain.NewInvalidInputError("No questions found in session to generate quiz")
	}

	pairs := make([]prompt.ContextPair, 0, len(source))
	for _, q := range source {
		pairs = append(pairs, prompt.ContextPair{Question: q.Question, Answer: q.Answer})
	}
	text, err := prompt.Quiz(pairs, count, session.Experience)
	if err != nil {
		return nil, domain.NewInternalError("Failed to build quiz prompt", err)
	}

	var generated []domain.QuizItem
	if err := s.llm.generateJSON(ctx, user, "generate_quiz", text, &generated); err != nil {
		return nil, err
	}
	items := make([]domain.QuizItem, 0, count)
	for i, item := range generated {
		if err := item.Validate(); err != nil {
			logger.Get().Warn("Dropping invalid quiz item", zap.Int("index", i), zap.Error(err))
			continue
		}
		items = append(items, item)
		if len(items) == count {
			break
		}
	}
	if len(items) == 0 {
		return nil, domain.NewLLMBadResponseError(errors.New("no valid quiz questions in response"))
	}

	quiz := &domain.Quiz{
		SessionID:      session.ID,
		UserID:         user.ID,
		Questions:      items,
		TotalQuestions: len(items),
		SessionInfo: domain.QuizSessionInfo{
			Role:       session.Role,
			Experience: session.Experience,
			Topics:     session.TopicsToFocus,
		},
		Status:    domain.QuizStatusActive,
		CreatedAt: s.now(),
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("Failed to save quiz", err)
	}
	logger.Get().Info("Quiz generated",
		zap.String("quizID", quiz.ID.Hex()),
		zap.Int("requested", count),
		zap.Int("questions", len(items)))

	return &dto.GeneratedQuizResponse{
		QuizID:         quiz.ID.Hex(),
		Questions:      toQuizView(items),
		TotalQuestions: quiz.TotalQuestions,
		SessionInfo:    quiz.SessionInfo,
		CreatedAt:      quiz.CreatedAt,
	}, nil
}

// ownedQuiz loads a quiz and checks that userID took it.
func (s *quizServiceImpl) ownedQuiz(ctx context.Context, userID, quizID primitive.ObjectID) (*domain.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Quiz not found")
		}
		return nil, domain.NewInternalError("Failed to load quiz", err)
	}
	if quiz.UserID != userID {
		return nil, domain.NewForbiddenError("Not authorized to access this quiz")
	}
	return quiz, nil
}

func alreadySubmitted() *domain.DomainError {
	return domain.NewError(domain.CodeQuizAlreadySubmitted, "Quiz already submitted", nil)
}

func (s *quizServiceImpl) Submit(ctx context.Context, user *domain.User, quizID primitive.ObjectID, req *dto.SubmitQuizRequest) (*dto.QuizResultResponse, error) {
	quiz, err := s.ownedQuiz(ctx, user.ID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Status == domain.QuizStatusCompleted {
		return nil, alreadySubmitted()
	}
	if err := quiz.ValidateAnswers(req.Answers); err != nil {
		return nil, err
	}

	results, correct := quiz.Grade(req.Answers)
	feedback := s.evaluate(ctx, user, quiz, req.Answers, results)
	if feedback == "" {
		feedback = defaultFeedback(correct, quiz.TotalQuestions)
	}

	now := s.now()
	sub := domain.QuizSubmission{
		UserAnswers: req.Answers,
		Score:       correct,
		Percentage:  util.Percent(float64(correct), float64(quiz.TotalQuestions), 0),
		Results:     results,
		Feedback:    feedback,
		TimeSpent:   req.TimeSpent,
		At:          now,
	}
	if err := s.quizzes.Complete(ctx, quiz.ID, sub); err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, alreadySubmitted()
		}
		return nil, domain.NewInternalError("Failed to save quiz results", err)
	}

	return &dto.QuizResultResponse{
		QuizID:      quiz.ID.Hex(),
		Score:       sub.Score,
		Total:       quiz.TotalQuestions,
		Percentage:  sub.Percentage,
		Questions:   results,
		Feedback:    feedback,
		TimeSpent:   req.TimeSpent,
		CompletedAt: now,
	}, nil
}

// evaluate asks the model for feedback and per-question explanations and
// merges them into results. Failures are logged and leave results untouched.
func (s *quizServiceImpl) evaluate(ctx context.Context, user *domain.User, quiz *domain.Quiz, answers []int, results []domain.QuizResult) string {
	text, err := prompt.QuizEvaluation(quiz.Questions, answers)
	if err != nil {
		logger.Get().Warn("Failed to build evaluation prompt", zap.Error(err))
		return ""
	}
	var eval quizEvaluation
	if err := s.llm.generateJSON(ctx, user, "evaluate_quiz", text, &eval); err != nil {
		logger.Get().Warn("Quiz evaluation unavailable, using computed score only",
			zap.String("quizID", quiz.ID.Hex()), zap.Error(err))
		return ""
	}
	for i := range results {
		if i < len(eval.Questions) && strings.TrimSpace(eval.Questions[i].Explanation) != "" {
			results[i].Explanation = eval.Questions[i].Explanation
		}
	}
	return strings.TrimSpace(eval.Feedback)
}

func defaultFeedback(correct, total int) string {
	pct := util.Percent(float64(correct), float64(total), 0)
	switch {
	case pct >= 90:
		return fmt.Sprintf("Excellent work! You answered %d of %d correctly.", correct, total)
	case pct >= 70:
		return fmt.Sprintf("Good job! You answered %d of %d correctly. Review the explanations to close the remaining gaps.", correct, total)
	default:
		return fmt.Sprintf("You answered %d of %d correctly. Review the explanations and try again.", correct, total)
	}
}

func (s *quizServiceImpl) Results(ctx context.Context, userID, quizID primitive.ObjectID) (*dto.QuizResponse, error) {
	quiz, err := s.ownedQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	resp := toQuizResponse(quiz)
	return &resp, nil
}

func (s *quizServiceImpl) ListBySession(ctx context.Context, userID, sessionID primitive.ObjectID) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizzes.ListBySessionAndUser(ctx, sessionID, userID, quizListLimit)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list quizzes", err)
	}
	out := make([]dto.QuizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, toQuizResponse(q))
	}
	return out, nil
}

func (s *quizServiceImpl) Delete(ctx context.Context, userID, quizID primitive.ObjectID) error {
	quiz, err := s.ownedQuiz(ctx, userID, quizID)
	if err != nil {
		return err
	}
	if err := s.quizzes.Delete(ctx, quiz.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewNotFoundError("Quiz not found")
		}
		return domain.NewInternalError("Failed to delete quiz", err)
	}
	return nil
}

// rangeStart maps week|month|all to the earliest creation time included.
func rangeStart(timeRange string, now time.Time) time.Time {
	switch timeRange {
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

func scoreBucket(pct float64) int {
	switch {
	case pct >= 90:
		return 4
	case pct >= 80:
		return 3
	case pct >= 70:
		return 2
	case pct >= 60:
		return 1
	default:
		return 0
	}
}

func (s *quizServiceImpl) Analytics(ctx context.Context, userID, sessionID primitive.ObjectID, timeRange string) (*dto.QuizAnalyticsResponse, error) {
	if timeRange == "" {
		timeRange = "all"
	}
	completed, err := s.quizzes.ListCompleted(ctx, sessionID, userID, time.Time{})
	if err != nil {
		return nil, domain.NewInternalError("Failed to load quizzes", err)
	}
	if len(completed) == 0 {
		return nil, domain.NewNotFoundError("No completed quizzes found for analytics")
	}

	start := rangeStart(timeRange, s.now())
	quizzes := make([]*domain.Quiz, 0, len(completed))
	for _, q := range completed {
		if !q.CreatedAt.Before(start) {
			quizzes = append(quizzes, q)
		}
	}
	if len(quizzes) == 0 {
		return nil, domain.NewNotFoundError(fmt.Sprintf("No quizzes found in the %s time range", timeRange))
	}
	// Oldest first.
	sort.SliceStable(quizzes, func(i, j int) bool { return quizzes[i].CreatedAt.Before(quizzes[j].CreatedAt) })

	resp := &dto.QuizAnalyticsResponse{TimeRange: timeRange, TotalQuizzes: len(quizzes)}
	var correct int
	daily := map[string][]float64{}
	var days []string
	for _, q := range quizzes {
		resp.TotalQuestions += q.TotalQuestions
		resp.TotalTimeSpent += q.TimeSpent
		if q.Score != nil {
			correct += *q.Score
		}
		if q.Percentage > resp.BestScore {
			resp.BestScore = q.Percentage
		}
		resp.ScoreDistribution[scoreBucket(q.Percentage)]++

		day := q.CreatedAt.Format("2006-01-02")
		if _, ok := daily[day]; !ok {
			days = append(days, day)
		}
		daily[day] = append(daily[day], q.Percentage)
	}

	if len(days) > dailyPerformanceDays {
		days = days[len(days)-dailyPerformanceDays:]
	}
	resp.DailyPerformance = make([]dto.DailyScore, 0, len(days))
	for _, day := range days {
		var sum float64
		for _, p := range daily[day] {
			sum += p
		}
		resp.DailyPerformance = append(resp.DailyPerformance, dto.DailyScore{
			Date:  day,
			Score: util.Round(sum/float64(len(daily[day])), 1),
		})
	}

	if len(quizzes) >= 2 {
		resp.ImprovementRate = util.Round(quizzes[len(quizzes)-1].Percentage-quizzes[0].Percentage, 1)
	}
	resp.AverageScore = util.Round(util.Percent(float64(correct), float64(resp.TotalQuestions), 0), 1)
	resp.BestScore = util.Round(resp.BestScore, 1)

	attempts, err := s.quizzes.CountBySessionAndUser(ctx, sessionID, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to count quizzes", err)
	}
	resp.CompletionRate = util.Round(util.Percent(float64(len(quizzes)), float64(attempts), 100), 1)

	resp.RecentQuizzes = make([]dto.RecentQuiz, 0, recentQuizCount)
	for i := len(quizzes) - 1; i >= 0 && len(resp.RecentQuizzes) < recentQuizCount; i-- {
		q := quizzes[i]
		score := 0
		if q.Score != nil {
			score = *q.Score
		}
		resp.RecentQuizzes = append(resp.RecentQuizzes, dto.RecentQuiz{
			ID:         q.ID.Hex(),
			Date:       q.CreatedAt,
			Score:      score,
			Total:      q.TotalQuestions,
			Percentage: q.Percentage,
			TimeSpent:  q.TimeSpent,
		})
	}
	return resp, nil
}

// sessionTopics returns up to five comma-separated topics, or General.
func sessionTopics(raw string) []string {
	topics := make([]string, 0, maxTopics)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
		if len(topics) == maxTopics {
			break
		}
	}
	if len(topics) == 0 {
		return []string{"General"}
	}
	return topics
}

// TopicPerformance scores each session topic by the correctness of graded
// questions that mention it. Topics never mentioned take the overall score.
func (s *quizServiceImpl) TopicPerformance(ctx context.Context, userID, sessionID primitive.ObjectID) (*dto.TopicPerformanceResponse, error) {
	session, err := ownedSession(ctx, s.sessions, sessionID, userID)
	if err != nil {
		return nil, err
	}
	topics := sessionTopics(session.TopicsToFocus)

	completed, err := s.quizzes.ListCompleted(ctx, sessionID, userID, time.Time{})
	if err != nil {
		return nil, domain.NewInternalError("Failed to load quizzes", err)
	}

	out := make([]dto.TopicScore, 0, len(topics))
	if len(completed) == 0 {
		for _, t := range topics {
			out = append(out, dto.TopicScore{Topic: t, Score: 0})
		}
		return &dto.TopicPerformanceResponse{TopicPerformance: out}, nil
	}

	var allCorrect, allTotal int
	hits := make([]int, len(topics))
	seen := make([]int, len(topics))
	for _, q := range completed {
		for _, r := range q.Results {
			allTotal++
			if r.IsCorrect {
				allCorrect++
			}
			text := strings.ToLower(r.Question)
			for i, t := range topics {
				if strings.Contains(text, strings.ToLower(t)) {
					seen[i]++
					if r.IsCorrect {
						hits[i]++
					}
				}
			}
		}
	}
	overall := util.Percent(float64(allCorrect), float64(allTotal), 0)
	for i, t := range topics {
		score := overall
		if seen[i] > 0 {
			score = util.Percent(float64(hits[i]), float64(seen[i]), 0)
		}
		out = append(out, dto.TopicScore{Topic: t, Score: util.Round(score, 1)})
	}
	return &dto.TopicPerformanceResponse{TopicPerformance: out}, nil
}

func (s *quizServiceImpl) TrackTime(ctx context.Context, userID, quizID primitive.ObjectID, questionIndex int) error {
	quiz, err := s.ownedQuiz(ctx, userID, quizID)
	if err != nil {
		return err
	}
	if questionIndex < 0 || questionIndex >= quiz.TotalQuestions {
		return domain.ValidationErrors{domain.NewOutOfRangeError("questionIndex", questionIndex, 0, quiz.TotalQuestions-1)}
	}
	if quiz.Status == domain.QuizStatusCompleted {
		return alreadySubmitted()
	}
	err = s.quizzes.AppendTiming(ctx, quiz.ID, domain.QuestionTiming{QuestionIndex: questionIndex, Timestamp: s.now()})
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		return alreadySubmitted()
	}
	if err != nil {
		return domain.NewInternalError("Failed to record timing", err)
	}
	return nil
}
