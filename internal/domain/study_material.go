package domain

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource kinds produced by URL classification.
const (
	KindYouTube       = "youtube"
	KindArticle       = "article"
	KindDocumentation = "documentation"
	KindPractice      = "practice"
	KindCourse        = "course"
	KindBook          = "book"
)

// ClassifyURL assigns a search result to a resource kind by substring
// matching, checked in a fixed order; anything unmatched is an article.
func ClassifyURL(rawURL string) string {
	u := strings.ToLower(rawURL)
	switch {
	case strings.Contains(u, "youtube.com"), strings.Contains(u, "youtu.be"):
		return KindYouTube
	case strings.Contains(u, "medium.com"), strings.Contains(u, "dev.to"), strings.Contains(u, "blog"):
		return KindArticle
	case strings.Contains(u, "docs"), strings.Contains(u, "readthedocs"), strings.Contains(u, "developer"):
		return KindDocumentation
	case strings.Contains(u, "leetcode"), strings.Contains(u, "hackerrank"), strings.Contains(u, "codewars"):
		return KindPractice
	case strings.Contains(u, "udemy"), strings.Contains(u, "coursera"), strings.Contains(u, "edx"):
		return KindCourse
	case strings.Contains(u, "amazon"), strings.Contains(u, "goodreads"):
		return KindBook
	default:
		return KindArticle
	}
}

// Resource is one external learning link.
type Resource struct {
	Title      string  `bson:"title" json:"title"`
	URL        string  `bson:"url" json:"url"`
	Source     string  `bson:"source,omitempty" json:"source,omitempty"`
	Content    string  `bson:"content,omitempty" json:"content,omitempty"`
	Score      float64 `bson:"score,omitempty" json:"score,omitempty"`
	Duration   string  `bson:"duration,omitempty" json:"duration,omitempty"`
	Platform   string  `bson:"platform,omitempty" json:"platform,omitempty"`
	Difficulty string  `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Rating     float64 `bson:"rating,omitempty" json:"rating,omitempty"`
	Channel    string  `bson:"channel,omitempty" json:"channel,omitempty"`
	Views      int64   `bson:"views,omitempty" json:"views,omitempty"`
	Author     string  `bson:"author,omitempty" json:"author,omitempty"`
}

// MaterialBuckets groups resources by kind.
type MaterialBuckets struct {
	YouTubeLinks  []Resource `bson:"youtube_links" json:"youtube_links"`
	Articles      []Resource `bson:"articles" json:"articles"`
	Documentation []Resource `bson:"documentation" json:"documentation"`
	PracticeLinks []Resource `bson:"practice_links" json:"practice_links"`
	Books         []Resource `bson:"books" json:"books"`
	Courses       []Resource `bson:"courses" json:"courses"`
}

// Add places r in the bucket for kind.
func (b *MaterialBuckets) Add(kind string, r Resource) {
	switch kind {
	case KindYouTube:
		b.YouTubeLinks = append(b.YouTubeLinks, r)
	case KindDocumentation:
		b.Documentation = append(b.Documentation, r)
	case KindPractice:
		b.PracticeLinks = append(b.PracticeLinks, r)
	case KindCourse:
		b.Courses = append(b.Courses, r)
	case KindBook:
		b.Books = append(b.Books, r)
	default:
		b.Articles = append(b.Articles, r)
	}
}

func (b *MaterialBuckets) Total() int {
	return len(b.YouTubeLinks) + len(b.Articles) + len(b.Documentation) +
		len(b.PracticeLinks) + len(b.Books) + len(b.Courses)
}

// Normalize replaces nil buckets with empty slices so they encode as [].
func (b *MaterialBuckets) Normalize() {
	for _, s := range []*[]Resource{&b.YouTubeLinks, &b.Articles, &b.Documentation, &b.PracticeLinks, &b.Books, &b.Courses} {
		if *s == nil {
			*s = []Resource{}
		}
	}
}

// StudyMaterial caches categorized links per (question, user).
type StudyMaterial struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	SessionID       string             `bson:"session_id"`
	QuestionID      string             `bson:"question_id"`
	UserID          string             `bson:"user_id"`
	QuestionText    string             `bson:"question_text"`
	Role            string             `bson:"role"`
	ExperienceLevel string             `bson:"experience_level"`
	MaterialBuckets `bson:",inline"`
	AIModelUsed     string    `bson:"ai_model_used"`
	SearchQuery     string    `bson:"search_query,omitempty"`
	Keywords        []string  `bson:"keywords,omitempty"`
	TotalSources    int       `bson:"total_sources"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// IsFresh reports whether the entry was updated less than maxAge before now.
func (m *StudyMaterial) IsFresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(m.UpdatedAt) < maxAge
}

// StudyMaterialRepository persists study materials.
type StudyMaterialRepository interface {
	GetByQuestionAndUser(ctx context.Context, questionID, userID string) (*StudyMaterial, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*StudyMaterial, error)
	// Upsert writes by (question_id, user_id), keeping the original created_at.
	Upsert(ctx context.Context, material *StudyMaterial) (*StudyMaterial, error)
	ListBySessionAndUser(ctx context.Context, sessionID, userID string) ([]*StudyMaterial, error)
	ListBySession(ctx context.Context, sessionID string) ([]*StudyMaterial, error)
	ListByQuestion(ctx context.Context, questionID, sessionID string) ([]*StudyMaterial, error)
	DeleteOwned(ctx context.Context, id primitive.ObjectID, userID string) (int64, error)
	DeleteBySessions(ctx context.Context, sessionIDs []string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	CountBySession(ctx context.Context, sessionID string) (int64, error)
}
