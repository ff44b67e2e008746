package dto

type GenerateQuestionsRequest struct {
	Role              string     `json:"role" validate:"required"`
	Experience        FlexString `json:"experience" validate:"required"`
	TopicsToFocus     string     `json:"topicsToFocus" validate:"required"`
	NumberOfQuestions int        `json:"numberOfQuestions" validate:"required,min=1,max=20"`
}

// QAPair is one generated question with its answer.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ExplanationRequest struct {
	Question   string     `json:"question" validate:"required"`
	Experience FlexString `json:"experience"`
}

type ExplanationResponse struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

type FollowupRequest struct {
	Context  string `json:"context" validate:"required"`
	Question string `json:"question" validate:"required"`
}

type FollowupResponse struct {
	Answer string `json:"answer"`
}
