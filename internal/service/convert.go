package service

import (
	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"

	"go.uber.org/zap"
)

// toUserResponse never exposes the stored key; a key that fails to decrypt
// is reported as present but unmasked.
func toUserResponse(u *domain.User, keys *KeyCipher) dto.UserResponse {
	resp := dto.UserResponse{
		ID:              u.ID.Hex(),
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
		Role:            u.Role,
		HasGeminiKey:    u.HasGeminiKey(),
		Notes:           u.Notes,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.HasGeminiKey() && keys != nil {
		plain, err := keys.Decrypt(u.GeminiAPIKey)
		if err != nil {
			logger.Get().Warn("Stored Gemini key could not be decrypted",
				zap.String("userID", u.ID.Hex()), zap.Error(err))
		} else {
			resp.GeminiKeyMasked = MaskKey(plain)
		}
	}
	return resp
}

func toQuestionResponse(q *domain.Question) dto.QuestionResponse {
	return dto.QuestionResponse{
		ID:        q.ID.Hex(),
		Session:   q.Session.Hex(),
		Question:  q.Question,
		Answer:    q.Answer,
		Topic:     q.Topic,
		IsPinned:  q.IsPinned,
		Note:      q.Note,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

func toQuestionResponses(qs []*domain.Question) []dto.QuestionResponse {
	out := make([]dto.QuestionResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, toQuestionResponse(q))
	}
	return out
}

func toSessionResponse(s *domain.Session, questions []*domain.Question) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:            s.ID.Hex(),
		User:          s.User.Hex(),
		Role:          s.Role,
		Experience:    s.Experience,
		TopicsToFocus: s.TopicsToFocus,
		Description:   s.Description,
		Status:        s.Status,
		Duration:      s.Duration,
		Questions:     toQuestionResponses(questions),
		QuestionCount: len(s.Questions),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if questions != nil && len(questions) > resp.QuestionCount {
		resp.QuestionCount = len(questions)
	}
	return resp
}

func toQuizView(items []domain.QuizItem) []dto.QuizQuestionView {
	out := make([]dto.QuizQuestionView, 0, len(items))
	for _, it := range items {
		out = append(out, dto.QuizQuestionView{Question: it.Question, Options: it.Options})
	}
	return out
}

// toQuizResponse hides the answer key of quizzes that are still active.
func toQuizResponse(q *domain.Quiz) dto.QuizResponse {
	resp := dto.QuizResponse{
		ID:              q.ID.Hex(),
		SessionID:       q.SessionID.Hex(),
		UserID:          q.UserID.Hex(),
		Status:          q.Status,
		TotalQuestions:  q.TotalQuestions,
		SessionInfo:     q.SessionInfo,
		UserAnswers:     q.UserAnswers,
		Score:           q.Score,
		Percentage:      q.Percentage,
		Results:         q.Results,
		Feedback:        q.Feedback,
		TimeSpent:       q.TimeSpent,
		QuestionTimings: q.QuestionTimings,
		CreatedAt:       q.CreatedAt,
		SubmittedAt:     q.SubmittedAt,
		CompletedAt:     q.CompletedAt,
	}
	if q.Status == domain.QuizStatusCompleted {
		resp.Questions = q.Questions
	} else {
		resp.Questions = toQuizView(q.Questions)
	}
	return resp
}

func toMaterialResponse(m *domain.StudyMaterial) dto.StudyMaterialResponse {
	buckets := m.MaterialBuckets
	buckets.Normalize()
	keywords := m.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return dto.StudyMaterialResponse{
		ID:              m.ID.Hex(),
		SessionID:       m.SessionID,
		QuestionID:      m.QuestionID,
		UserID:          m.UserID,
		QuestionText:    m.QuestionText,
		Role:            m.Role,
		ExperienceLevel: m.ExperienceLevel,
		MaterialBuckets: buckets,
		AIModelUsed:     m.AIModelUsed,
		SearchQuery:     m.SearchQuery,
		Keywords:        keywords,
		TotalSources:    m.TotalSources,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toMaterialResponses(ms []*domain.StudyMaterial) []dto.StudyMaterialResponse {
	out := make([]dto.StudyMaterialResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMaterialResponse(m))
	}
	return out
}
