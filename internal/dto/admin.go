package dto

import "time"

type RoleCounts map[string]int64

type SystemSummary struct {
	Status          string  `json:"status"`
	APIResponseTime float64 `json:"apiResponseTime"`
	ErrorRate       float64 `json:"errorRate"`
	DatabaseUsage   float64 `json:"databaseUsage"`
	Uptime          string  `json:"uptime"`
}

type DaySessions struct {
	Date     string `json:"date"`
	Day      string `json:"day"`
	Sessions int64  `json:"sessions"`
}

type TopUserResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	ProfileImageURL string  `json:"profileImageUrl,omitempty"`
	Sessions        int     `json:"sessions"`
	Questions       int     `json:"questions"`
	Score           float64 `json:"score"`
}

type RecentUserResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	Role            string `json:"role"`
	Joined          string `json:"joined"`
	IsActive        bool   `json:"isActive"`
}

// @Description Admin dashboard statistics
type DashboardStatsResponse struct {
	Period              string               `json:"period"`
	TotalUsers          int64                `json:"totalUsers"`
	TotalSessions       int64                `json:"totalSessions"`
	TotalQuestions      int64                `json:"totalQuestions"`
	TotalStudyMaterials int64                `json:"totalStudyMaterials"`
	TotalQuizzes        int64                `json:"totalQuizzes"`
	NewUsers            int64                `json:"newUsers"`
	NewSessions         int64                `json:"newSessions"`
	ActiveUsersToday    int64                `json:"activeUsersToday"`
	AvgSessionTime      float64              `json:"avgSessionTime"`
	SessionsPerDay      []DaySessions        `json:"sessionsPerDay"`
	TopUsers            []TopUserResponse    `json:"topUsers"`
	RecentUsers         []RecentUserResponse `json:"recentUsers"`
	UsersByRole         RoleCounts           `json:"usersByRole"`
	SystemStatus        SystemSummary        `json:"systemStatus"`
}

type AdminUserListQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Search string `query:"search" validate:"max=100"`
	Role   string `query:"role" validate:"omitempty,oneof=user admin moderator"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive"`
}

type AdminUserRow struct {
	UserResponse
	SessionCount  int `json:"sessionCount"`
	QuestionCount int `json:"questionCount"`
	MaterialCount int `json:"materialCount"`
}

type AdminUserListResponse struct {
	Users      []AdminUserRow `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
}

type UserStatsResponse struct {
	TotalUsers          int64      `json:"totalUsers"`
	RoleDistribution    RoleCounts `json:"roleDistribution"`
	ActiveUsers         int64      `json:"activeUsers"`
	InactiveUsers       int64      `json:"inactiveUsers"`
	NewUsersThisWeek    int64      `json:"newUsersThisWeek"`
	AvgSessionsPerUser  float64    `json:"avgSessionsPerUser"`
	AvgQuestionsPerUser float64    `json:"avgQuestionsPerUser"`
	AvgMaterialsPerUser float64    `json:"avgMaterialsPerUser"`
}

type AdminCreateUserRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=128"`
	Role            string `json:"role" validate:"omitempty,oneof=user admin moderator"`
	ProfileImageURL string `json:"profileImageUrl" validate:"omitempty,url"`
	GeminiAPIKey    string `json:"geminiApiKey"`
	Notes           string `json:"notes" validate:"max=2000"`
}

// AdminUpdateUserRequest changes only the fields that are present. An empty
// geminiApiKey removes the stored key.
type AdminUpdateUserRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Role            *string `json:"role" validate:"omitempty,oneof=user admin moderator"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url"`
	Password        *string `json:"password" validate:"omitempty,min=6,max=128"`
	GeminiAPIKey    *string `json:"geminiApiKey"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
	IsActive        *bool   `json:"isActive"`
}

type UserSessionSummary struct {
	ID            string    `json:"_id"`
	Role          string    `json:"role"`
	Experience    string    `json:"experience"`
	TopicsToFocus string    `json:"topicsToFocus"`
	Status        string    `json:"status"`
	QuestionCount int       `json:"questionCount"`
	MaterialCount int64     `json:"materialCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type MonthActivity struct {
	Month     string `json:"month"`
	Sessions  int    `json:"sessions"`
	Questions int    `json:"questions"`
}

type UserDetailStats struct {
	TotalSessions          int       `json:"totalSessions"`
	TotalQuestions         int64     `json:"totalQuestions"`
	TotalMaterials         int64     `json:"totalMaterials"`
	AvgQuestionsPerSession float64   `json:"avgQuestionsPerSession"`
	CompletionRate         float64   `json:"completionRate"`
	LastLogin              time.Time `json:"lastLogin"`
	JoinedDate             time.Time `json:"joinedDate"`
}

// @Description Admin view of one user
type AdminUserDetailResponse struct {
	User     UserResponse         `json:"user"`
	Sessions []UserSessionSummary `json:"sessions"`
	Activity []MonthActivity      `json:"activity"`
	Stats    UserDetailStats      `json:"stats"`
}

type AdminSessionListQuery struct {
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Search string `query:"search" validate:"max=100"`
	Status string `query:"status" validate:"omitempty,oneof=active completed"`
}

type AdminSessionRow struct {
	ID            string    `json:"_id"`
	Role          string    `json:"role"`
	Experience    string    `json:"experience"`
	TopicsToFocus string    `json:"topicsToFocus"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	QuestionCount int       `json:"questionCount"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	UserID        string    `json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`
}

type AdminSessionListResponse struct {
	Sessions   []AdminSessionRow `json:"sessions"`
	Pagination PaginationInfo    `json:"pagination"`
}

type SessionStatsResponse struct {
	TotalSessions     int64      `json:"totalSessions"`
	ActiveSessions    int64      `json:"activeSessions"`
	CompletedSessions int64      `json:"completedSessions"`
	CompletionRate    float64    `json:"completionRate"`
	AvgDuration       float64    `json:"avgDuration"`
	AvgQuestions      float64    `json:"avgQuestions"`
	SessionsThisWeek  int64      `json:"sessionsThisWeek"`
	RoleDistribution  RoleCounts `json:"roleDistribution"`
}

// @Description Admin view of one session
type AdminSessionDetailResponse struct {
	Session       SessionResponse `json:"session"`
	Owner         *UserResponse   `json:"owner"`
	MaterialCount int64           `json:"materialCount"`
	QuizCount     int64           `json:"quizCount,omitempty"`
}
