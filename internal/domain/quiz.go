package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	QuizStatusActive    = "active"
	QuizStatusCompleted = "completed"

	// OptionsPerQuestion is the fixed number of choices for every quiz item.
	OptionsPerQuestion = 4
)

// QuizItem is one multiple-choice question with its answer key.
type QuizItem struct {
	Question      string   `bson:"question" json:"question"`
	Options       []string `bson:"options" json:"options"`
	CorrectAnswer int      `bson:"correctAnswer" json:"correctAnswer"`
	Explanation   string   `bson:"explanation" json:"explanation"`
}

// Validate checks the shape an item must have before it is stored.
func (q QuizItem) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("must have exactly %d options, got %d", OptionsPerQuestion, len(q.Options))
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= OptionsPerQuestion {
		return fmt.Errorf("correctAnswer %d out of range", q.CorrectAnswer)
	}
	return nil
}

type QuizSessionInfo struct {
	Role       string `bson:"role" json:"role"`
	Experience string `bson:"experience" json:"experience"`
	Topics     string `bson:"topics" json:"topics"`
}

// QuizResult is the graded view of one item after submission.
type QuizResult struct {
	Question      string   `bson:"question" json:"question"`
	Options       []string `bson:"options" json:"options"`
	UserAnswer    int      `bson:"userAnswer" json:"userAnswer"`
	CorrectAnswer int      `bson:"correctAnswer" json:"correctAnswer"`
	IsCorrect     bool     `bson:"isCorrect" json:"isCorrect"`
	Explanation   string   `bson:"explanation" json:"explanation"`
}

type QuestionTiming struct {
	QuestionIndex int       `bson:"questionIndex" json:"questionIndex"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
}

// Quiz is frozen once Status is completed.
type Quiz struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	SessionID       primitive.ObjectID `bson:"sessionId"`
	UserID          primitive.ObjectID `bson:"userId"`
	Questions       []QuizItem         `bson:"questions"`
	TotalQuestions  int                `bson:"totalQuestions"`
	SessionInfo     QuizSessionInfo    `bson:"sessionInfo"`
	Status          string             `bson:"status"`
	UserAnswers     []int              `bson:"userAnswers,omitempty"`
	Score           *int               `bson:"score,omitempty"`
	Percentage      float64            `bson:"percentage"`
	Results         []QuizResult       `bson:"results,omitempty"`
	Feedback        string             `bson:"feedback,omitempty"`
	TimeSpent       int                `bson:"timeSpent"`
	QuestionTimings []QuestionTiming   `bson:"questionTimings,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	SubmittedAt     *time.Time         `bson:"submittedAt,omitempty"`
	CompletedAt     *time.Time         `bson:"completedAt,omitempty"`
}

// ValidateAnswers rejects submissions whose length differs from the declared
// question count or that contain an index outside the option range.
func (q *Quiz) ValidateAnswers(answers []int) error {
	if len(answers) != q.TotalQuestions {
		return NewInvalidAnswerError(fmt.Sprintf("Invalid number of answers. Expected %d, got %d", q.TotalQuestions, len(answers)))
	}
	for i, a := range answers {
		if a < 0 || a >= OptionsPerQuestion {
			return NewInvalidAnswerError(fmt.Sprintf("Invalid answer index for question %d", i+1))
		}
	}
	return nil
}

// Grade compares answers with the stored key and returns the per-item results
// and the number of correct answers.
func (q *Quiz) Grade(answers []int) ([]QuizResult, int) {
	results := make([]QuizResult, len(q.Questions))
	correct := 0
	for i, item := range q.Questions {
		r := QuizResult{
			Question:      item.Question,
			Options:       item.Options,
			UserAnswer:    -1,
			CorrectAnswer: item.CorrectAnswer,
			Explanation:   item.Explanation,
		}
		if i < len(answers) {
			r.UserAnswer = answers[i]
			r.IsCorrect = answers[i] == item.CorrectAnswer
		}
		if r.IsCorrect {
			correct++
		}
		results[i] = r
	}
	return results, correct
}

// QuizSubmission is the frozen state written on first successful submit.
type QuizSubmission struct {
	UserAnswers []int
	Score       int
	Percentage  float64
	Results     []QuizResult
	Feedback    string
	TimeSpent   int
	At          time.Time
}

// QuizRepository persists quizzes.
type QuizRepository interface {
	Create(ctx context.Context, quiz *Quiz) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Quiz, error)
	// Complete writes the submission only if the quiz is still active and
	// returns ErrConcurrentUpdate otherwise.
	Complete(ctx context.Context, id primitive.ObjectID, sub QuizSubmission) error
	ListBySessionAndUser(ctx context.Context, sessionID, userID primitive.ObjectID, limit int64) ([]*Quiz, error)
	ListCompleted(ctx context.Context, sessionID, userID primitive.ObjectID, since time.Time) ([]*Quiz, error)
	CountBySessionAndUser(ctx context.Context, sessionID, userID primitive.ObjectID) (int64, error)
	AppendTiming(ctx context.Context, id primitive.ObjectID, timing QuestionTiming) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteBySessions(ctx context.Context, sessionIDs []primitive.ObjectID) (int64, error)
}
