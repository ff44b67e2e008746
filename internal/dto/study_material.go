package dto

import (
	"time"

	"interview-prep/internal/domain"
)

type StudyMaterialRequest struct {
	Question     string `json:"question"`
	ForceRefresh bool   `json:"force_refresh"`
}

// @Description Curated study resources for one question
type StudyMaterialResponse struct {
	ID              string `json:"_id"`
	SessionID       string `json:"session_id"`
	QuestionID      string `json:"question_id"`
	UserID          string `json:"user_id"`
	QuestionText    string `json:"question_text"`
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
	domain.MaterialBuckets
	AIModelUsed  string    `json:"ai_model_used"`
	SearchQuery  string    `json:"search_query"`
	Keywords     []string  `json:"keywords"`
	TotalSources int       `json:"total_sources"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// QuestionMaterials groups a session's materials by question.
type QuestionMaterials struct {
	QuestionID   string                  `json:"question_id"`
	QuestionText string                  `json:"question_text"`
	Materials    []StudyMaterialResponse `json:"materials"`
}
