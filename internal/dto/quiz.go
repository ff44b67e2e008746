package dto

import (
	"time"

	"interview-prep/internal/domain"
)

type GenerateQuizRequest struct {
	SessionID         string `json:"sessionId" validate:"required"`
	NumberOfQuestions int    `json:"numberOfQuestions" validate:"required,min=1,max=50"`
}

// QuizQuestionView is a quiz item without its answer key.
type QuizQuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// @Description Newly generated quiz
type GeneratedQuizResponse struct {
	QuizID         string                 `json:"quizId"`
	Questions      []QuizQuestionView     `json:"questions"`
	TotalQuestions int                    `json:"totalQuestions"`
	SessionInfo    domain.QuizSessionInfo `json:"sessionInfo"`
	CreatedAt      time.Time              `json:"createdAt"`
}

type SubmitQuizRequest struct {
	Answers   []int `json:"answers" validate:"required,min=1"`
	TimeSpent int   `json:"timeSpent" validate:"min=0"`
}

// @Description Graded quiz
type QuizResultResponse struct {
	QuizID      string              `json:"quizId"`
	Score       int                 `json:"score"`
	Total       int                 `json:"total"`
	Percentage  float64             `json:"percentage"`
	Questions   []domain.QuizResult `json:"questions"`
	Feedback    string              `json:"feedback"`
	TimeSpent   int                 `json:"timeSpent"`
	CompletedAt time.Time           `json:"completedAt"`
}

// QuizResponse is a stored quiz. Answer keys are only present once the
// quiz is completed.
type QuizResponse struct {
	ID              string                  `json:"_id"`
	SessionID       string                  `json:"sessionId"`
	UserID          string                  `json:"userId"`
	Status          string                  `json:"status"`
	Questions       interface{}             `json:"questions"`
	TotalQuestions  int                     `json:"totalQuestions"`
	SessionInfo     domain.QuizSessionInfo  `json:"sessionInfo"`
	UserAnswers     []int                   `json:"userAnswers,omitempty"`
	Score           *int                    `json:"score"`
	Percentage      float64                 `json:"percentage"`
	Results         []domain.QuizResult     `json:"results,omitempty"`
	Feedback        string                  `json:"feedback,omitempty"`
	TimeSpent       int                     `json:"timeSpent"`
	QuestionTimings []domain.QuestionTiming `json:"questionTimings,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	SubmittedAt     *time.Time              `json:"submittedAt"`
	CompletedAt     *time.Time              `json:"completedAt"`
}

type DailyScore struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

type RecentQuiz struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
	TimeSpent  int       `json:"timeSpent"`
}

// @Description Quiz analytics for one session
type QuizAnalyticsResponse struct {
	TimeRange         string       `json:"timeRange"`
	TotalQuizzes      int          `json:"totalQuizzes"`
	TotalQuestions    int          `json:"totalQuestions"`
	TotalTimeSpent    int          `json:"totalTimeSpent"`
	AverageScore      float64      `json:"averageScore"`
	BestScore         float64      `json:"bestScore"`
	ImprovementRate   float64      `json:"improvementRate"`
	CompletionRate    float64      `json:"completionRate"`
	ScoreDistribution [5]int       `json:"scoreDistribution"`
	DailyPerformance  []DailyScore `json:"dailyPerformance"`
	RecentQuizzes     []RecentQuiz `json:"recentQuizzes"`
}

type TopicScore struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

type TopicPerformanceResponse struct {
	TopicPerformance []TopicScore `json:"topicPerformance"`
}

type TrackTimeRequest struct {
	QuestionIndex int `json:"questionIndex" validate:"min=0"`
}
