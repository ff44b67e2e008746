package handler

import (
	"interview-prep/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every route handler the API serves.
type Handlers struct {
	Auth          *AuthHandler
	AI            *AIHandler
	Session       *SessionHandler
	Quiz          *QuizHandler
	StudyMaterial *StudyMaterialHandler
	Admin         *AdminHandler
	Analytics     *AnalyticsHandler
}

// RegisterRoutes mounts the API under router, normally the /api group.
// Health checks and the auth entry points are public; tracking accepts an
// optional token; everything else requires a bearer token and the admin
// group additionally requires the admin role.
func RegisterRoutes(router fiber.Router, h *Handlers, auth middleware.TokenAuthenticator) {
	protected := middleware.Protected(auth)
	ids := middleware.NewValidationMiddleware()
	id := ids.ObjectIDParams("id")
	sessionID := ids.ObjectIDParams("sessionId")
	questionID := ids.ObjectIDParams("questionId")

	authGroup := router.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/google", h.Auth.GoogleLogin)
	authGroup.Post("/forgot-password", h.Auth.ForgotPassword)
	authGroup.Post("/verify-otp", h.Auth.VerifyOTP)
	authGroup.Post("/reset-password", h.Auth.ResetPassword)
	authGroup.Get("/profile", protected, h.Auth.Profile)
	authGroup.Put("/profile", protected, h.Auth.UpdateProfile)
	authGroup.Delete("/account", protected, h.Auth.DeleteAccount)
	authGroup.Put("/gemini-key", protected, h.Auth.SetGeminiKey)
	authGroup.Delete("/gemini-key", protected, h.Auth.RemoveGeminiKey)

	ai := router.Group("/ai", protected)
	ai.Post("/generate-questions", h.AI.GenerateQuestions)
	ai.Post("/generate-explanation", h.AI.GenerateExplanation)
	ai.Post("/followup", h.AI.Followup)

	sessions := router.Group("/sessions", protected)
	sessions.Post("/create", h.Session.Create)
	sessions.Get("/my-sessions", h.Session.Mine)
	sessions.Get("/:id/export", id, h.Session.Export)
	sessions.Get("/:id", id, h.Session.Get)
	sessions.Delete("/:id", id, h.Session.Delete)

	questions := router.Group("/questions", protected)
	questions.Post("/add", h.Session.AddQuestions)
	questions.Post("/:id/pin", id, h.Session.TogglePin)
	questions.Post("/:id/note", id, h.Session.UpdateNote)

	quiz := router.Group("/quiz", protected)
	quiz.Post("/generate", h.Quiz.Generate)
	quiz.Get("/session/:sessionId/analytics", sessionID, h.Quiz.Analytics)
	quiz.Get("/session/:sessionId/topics", sessionID, h.Quiz.Topics)
	quiz.Get("/session/:sessionId", sessionID, h.Quiz.BySession)
	quiz.Post("/:id/submit", id, h.Quiz.Submit)
	quiz.Get("/:id/results", id, h.Quiz.Results)
	quiz.Post("/:id/track-time", id, h.Quiz.TrackTime)
	quiz.Delete("/:id", id, h.Quiz.Delete)

	materials := router.Group("/study-materials", protected)
	materials.Post("/question/:questionId", questionID, h.StudyMaterial.GetOrCreate)
	materials.Get("/question/:questionId", questionID, h.StudyMaterial.ByQuestion)
	materials.Get("/session/:sessionId", sessionID, h.StudyMaterial.BySession)
	materials.Post("/:id/refresh", id, h.StudyMaterial.Refresh)
	materials.Delete("/:id", id, h.StudyMaterial.Delete)

	admin := router.Group("/admin", protected, middleware.AdminOnly())
	admin.Get("/health", h.Admin.Health)
	admin.Get("/dashboard/stats", h.Admin.DashboardStats)
	admin.Get("/system/status", h.Admin.SystemStatus)
	admin.Get("/system/metrics", h.Admin.SystemMetrics)
	admin.Get("/users/stats", h.Admin.UserStats)
	admin.Get("/users", h.Admin.ListUsers)
	admin.Post("/users", h.Admin.CreateUser)
	admin.Get("/users/:id", id, h.Admin.GetUser)
	admin.Put("/users/:id", id, h.Admin.UpdateUser)
	admin.Delete("/users/:id", id, h.Admin.DeleteUser)
	admin.Get("/sessions/stats", h.Admin.SessionStats)
	admin.Get("/sessions", h.Admin.ListSessions)
	admin.Get("/sessions/:id/questions", id, h.Admin.SessionQuestions)
	admin.Get("/sessions/:id/study-materials", id, h.Admin.SessionMaterials)
	admin.Get("/sessions/:id", id, h.Admin.GetSession)
	admin.Delete("/sessions/:id", id, h.Admin.DeleteSession)
	admin.Get("/study-materials/question/:questionId", questionID, h.Admin.MaterialsByQuestion)

	router.Get("/analytics/health", h.Analytics.Health)
	analytics := router.Group("/analytics", protected)
	analytics.Get("/dashboard", h.Analytics.Dashboard)
	analytics.Get("/overview", h.Analytics.Overview)
	analytics.Get("/realtime", h.Analytics.Realtime)
	analytics.Get("/acquisition", h.Analytics.Acquisition)
	analytics.Get("/pages", h.Analytics.Pages)
	analytics.Get("/geographic", h.Analytics.Geographic)
	analytics.Get("/devices", h.Analytics.Devices)
	analytics.Get("/events", h.Analytics.Events)

	track := router.Group("/track")
	track.Post("/event", h.Analytics.TrackEvent)
	track.Post("/pageview", h.Analytics.TrackPageView)
	track.Get("/health", h.Analytics.TrackingHealth)
}
