package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"
	"interview-prep/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize     = 20
	dashboardListSize   = 5
	activeWindow        = 7 * 24 * time.Hour
	chartDays           = 7
	activityMonths      = 6
	fallbackSessionMins = 30.0
	fallbackQuestions   = 24.0
)

// inactiveMarker is written to updatedAt when an admin deactivates a user so
// the 7 day activity window reports them inactive.
var inactiveMarker = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// AdminService backs the admin dashboard and user/session management.
type AdminService interface {
	DashboardStats(ctx context.Context, period string) (*dto.DashboardStatsResponse, error)
	ListUsers(ctx context.Context, q *dto.AdminUserListQuery) (*dto.AdminUserListResponse, error)
	UserStats(ctx context.Context) (*dto.UserStatsResponse, error)
	CreateUser(ctx context.Context, req *dto.AdminCreateUserRequest) (*dto.UserResponse, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*dto.AdminUserDetailResponse, error)
	UpdateUser(ctx context.Context, actorID, id primitive.ObjectID, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actorID, id primitive.ObjectID) error
	ListSessions(ctx context.Context, q *dto.AdminSessionListQuery) (*dto.AdminSessionListResponse, error)
	SessionStats(ctx context.Context) (*dto.SessionStatsResponse, error)
	GetSession(ctx context.Context, id primitive.ObjectID) (*dto.AdminSessionDetailResponse, error)
	SessionQuestions(ctx context.Context, id primitive.ObjectID) ([]dto.QuestionResponse, error)
	SessionMaterials(ctx context.Context, id primitive.ObjectID) ([]dto.StudyMaterialResponse, error)
	DeleteSession(ctx context.Context, id primitive.ObjectID) error
	MaterialsByQuestion(ctx context.Context, questionID primitive.ObjectID, sessionID string) ([]dto.StudyMaterialResponse, error)
}

type adminServiceImpl struct {
	users     domain.UserRepository
	sessions  domain.SessionRepository
	questions domain.QuestionRepository
	quizzes   domain.QuizRepository
	materials domain.StudyMaterialRepository
	stats     domain.StatsRepository
	generator domain.TextGenerator
	keys      *KeyCipher
	purger    *Purger
	system    SystemService
	now       func() time.Time
}

func NewAdminService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	questions domain.QuestionRepository,
	quizzes domain.QuizRepository,
	materials domain.StudyMaterialRepository,
	stats domain.StatsRepository,
	generator domain.TextGenerator,
	keys *KeyCipher,
	purger *Purger,
	system SystemService,
) AdminService {
	return &adminServiceImpl{
		users:     users,
		sessions:  sessions,
		questions: questions,
		quizzes:   quizzes,
		materials: materials,
		stats:     stats,
		generator: generator,
		keys:      keys,
		purger:    purger,
		system:    system,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// periodStart maps 7d|30d|90d|year to the start of the window; anything
// else is treated as 7d.
func periodStart(period string, now time.Time) (string, time.Time) {
	switch period {
	case "30d":
		return period, now.AddDate(0, 0, -30)
	case "90d":
		return period, now.AddDate(0, 0, -90)
	case "year":
		return period, now.AddDate(-1, 0, 0)
	default:
		return "7d", now.AddDate(0, 0, -7)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// roleCounts folds unknown roles into user and reports every known role.
func roleCounts(rows []domain.LabelCount) dto.RoleCounts {
	out := dto.RoleCounts{}
	for _, r := range domain.ValidRoles {
		out[r] = 0
	}
	for _, row := range rows {
		label := row.Label
		if !domain.IsValidRole(label) {
			label = domain.RoleUser
		}
		out[label] += row.Count
	}
	return out
}

// sessionChart zero-fills the last chartDays days ending today.
func sessionChart(rows []domain.DayCount, today time.Time) []dto.DaySessions {
	byDate := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r.Count
	}
	out := make([]dto.DaySessions, 0, chartDays)
	for i := chartDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		date := day.Format("2006-01-02")
		out = append(out, dto.DaySessions{Date: date, Day: day.Format("Mon"), Sessions: byDate[date]})
	}
	return out
}

func (s *adminServiceImpl) DashboardStats(ctx context.Context, period string) (*dto.DashboardStatsResponse, error) {
	now := s.now()
	today := startOfDay(now)
	resp := &dto.DashboardStatsResponse{}
	var start time.Time
	resp.Period, start = periodStart(period, now)

	var (
		counts   domain.CollectionCounts
		perDay   []domain.DayCount
		top      []domain.TopUser
		recent   []*domain.User
		roles    []domain.LabelCount
		averages domain.SessionAverages
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { counts, err = s.stats.CollectionCounts(gctx); return })
	g.Go(func() (err error) { resp.NewUsers, err = s.stats.CountUsersCreatedSince(gctx, start); return })
	g.Go(func() (err error) { resp.NewSessions, err = s.stats.CountSessionsCreatedSince(gctx, start); return })
	g.Go(func() (err error) { resp.ActiveUsersToday, err = s.stats.CountUsersActiveSince(gctx, today); return })
	g.Go(func() (err error) { averages, err = s.stats.SessionAverages(gctx); return })
	g.Go(func() (err error) {
		perDay, err = s.stats.SessionsPerDay(gctx, today.AddDate(0, 0, -(chartDays-1)), today.AddDate(0, 0, 1))
		return
	})
	g.Go(func() (err error) { top, err = s.stats.TopUsers(gctx, dashboardListSize); return })
	g.Go(func() (err error) { recent, err = s.stats.RecentUsers(gctx, dashboardListSize); return })
	g.Go(func() (err error) { roles, err = s.stats.UsersByRole(gctx); return })
	g.Go(func() error { resp.SystemStatus = s.system.Summary(gctx); return nil })
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to load dashboard statistics", err)
	}

	resp.TotalUsers = counts.Users
	resp.TotalSessions = counts.Sessions
	resp.TotalQuestions = counts.Questions
	resp.TotalStudyMaterials = counts.StudyMaterials
	resp.TotalQuizzes = counts.Quizzes
	resp.AvgSessionTime = fallbackSessionMins
	if averages.Found && averages.AvgDuration > 0 {
		resp.AvgSessionTime = util.Round(averages.AvgDuration/60, 1)
	}
	resp.SessionsPerDay = sessionChart(perDay, today)
	resp.UsersByRole = roleCounts(roles)

	resp.TopUsers = make([]dto.TopUserResponse, 0, len(top))
	for _, u := range top {
		resp.TopUsers = append(resp.TopUsers, dto.TopUserResponse{
			ID:              u.ID.Hex(),
			Name:            u.Name,
			Email:           u.Email,
			ProfileImageURL: u.ProfileImageURL,
			Sessions:        u.Sessions,
			Questions:       u.Questions,
			Score:           util.Round(u.Score, 1),
		})
	}
	resp.RecentUsers = make([]dto.RecentUserResponse, 0, len(recent))
	for _, u := range recent {
		resp.RecentUsers = append(resp.RecentUsers, dto.RecentUserResponse{
			ID:              u.ID.Hex(),
			Name:            u.Name,
			Email:           u.Email,
			ProfileImageURL: u.ProfileImageURL,
			Role:            u.Role,
			Joined:          u.CreatedAt.Format("Jan 02"),
			IsActive:        now.Sub(u.UpdatedAt) <= activeWindow,
		})
	}
	return resp, nil
}

func pageOf(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	return page, limit
}

func (s *adminServiceImpl) ListUsers(ctx context.Context, q *dto.AdminUserListQuery) (*dto.AdminUserListResponse, error) {
	page, limit := pageOf(q.Page, q.Limit)
	rows, total, err := s.users.List(ctx, domain.UserFilter{
		Search:       strings.TrimSpace(q.Search),
		Role:         q.Role,
		Status:       q.Status,
		ActiveWindow: activeWindow,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to list users", err)
	}
	now := s.now()
	users := make([]dto.AdminUserRow, 0, len(rows))
	for _, row := range rows {
		u := toUserResponse(&row.User, s.keys)
		u.IsActive = now.Sub(row.UpdatedAt) <= activeWindow
		users = append(users, dto.AdminUserRow{
			UserResponse:  u,
			SessionCount:  row.SessionCount,
			QuestionCount: row.QuestionCount,
			MaterialCount: row.MaterialCount,
		})
	}
	return &dto.AdminUserListResponse{Users: users, Pagination: dto.NewPaginationInfo(page, limit, total)}, nil
}

func (s *adminServiceImpl) UserStats(ctx context.Context) (*dto.UserStatsResponse, error) {
	weekAgo := s.now().Add(-activeWindow)
	var (
		counts domain.CollectionCounts
		roles  []domain.LabelCount
		resp   dto.UserStatsResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { counts, err = s.stats.CollectionCounts(gctx); return })
	g.Go(func() (err error) { roles, err = s.stats.UsersByRole(gctx); return })
	g.Go(func() (err error) { resp.ActiveUsers, err = s.stats.CountUsersActiveSince(gctx, weekAgo); return })
	g.Go(func() (err error) { resp.NewUsersThisWeek, err = s.stats.CountUsersCreatedSince(gctx, weekAgo); return })
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to load user statistics", err)
	}

	resp.TotalUsers = counts.Users
	resp.RoleDistribution = roleCounts(roles)
	resp.InactiveUsers = counts.Users - resp.ActiveUsers
	if counts.Users > 0 {
		n := float64(counts.Users)
		resp.AvgSessionsPerUser = util.Round(float64(counts.Sessions)/n, 1)
		resp.AvgQuestionsPerUser = util.Round(float64(counts.Questions)/n, 1)
		resp.AvgMaterialsPerUser = util.Round(float64(counts.StudyMaterials)/n, 1)
	}
	return &resp, nil
}

func (s *adminServiceImpl) CreateUser(ctx context.Context, req *dto.AdminCreateUserRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewInvalidInputError("Email already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewInternalError("Failed to check existing user", err)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("Failed to hash password", err)
	}
	user := &domain.User{
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		Password:        string(hash),
		ProfileImageURL: req.ProfileImageURL,
		Role:            role,
		Notes:           req.Notes,
		IsActive:        true,
	}
	if strings.TrimSpace(req.GeminiAPIKey) != "" {
		if user.GeminiAPIKey, err = sealGeminiKey(ctx, s.generator, s.keys, req.GeminiAPIKey); err != nil {
			return nil, err
		}
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.NewInvalidInputError("Email already registered")
		}
		return nil, domain.NewInternalError("Failed to create user", err)
	}
	logger.Get().Info("Admin created user", zap.String("userID", user.ID.Hex()), zap.String("role", role))
	resp := toUserResponse(user, s.keys)
	return &resp, nil
}

func (s *adminServiceImpl) loadUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("User not found")
		}
		return nil, domain.NewInternalError("Failed to load user", err)
	}
	return user, nil
}

// monthlyActivity buckets sessions and their questions into the last
// activityMonths calendar months, oldest first.
func monthlyActivity(sessions []*domain.Session, now time.Time) []dto.MonthActivity {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(activityMonths - 1), 0)
	out := make([]dto.MonthActivity, activityMonths)
	for i := range out {
		out[i].Month = first.AddDate(0, i, 0).Format("Jan")
	}
	for _, s := range sessions {
		c := s.CreatedAt.UTC()
		i := (c.Year()-first.Year())*12 + int(c.Month()) - int(first.Month())
		if i < 0 || i >= activityMonths {
			continue
		}
		out[i].Sessions++
		out[i].Questions += len(s.Questions)
	}
	return out
}

func (s *adminServiceImpl) GetUser(ctx context.Context, id primitive.ObjectID) (*dto.AdminUserDetailResponse, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByUser(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list user sessions", err)
	}

	resp := &dto.AdminUserDetailResponse{
		User:     toUserResponse(user, s.keys),
		Sessions: make([]dto.UserSessionSummary, len(sessions)),
		Activity: monthlyActivity(sessions, s.now()),
	}
	ids := make([]primitive.ObjectID, len(sessions))
	g, gctx := errgroup.WithContext(ctx)
	for i, session := range sessions {
		ids[i] = session.ID
		resp.Sessions[i] = dto.UserSessionSummary{
			ID:            session.ID.Hex(),
			Role:          session.Role,
			Experience:    session.Experience,
			TopicsToFocus: session.TopicsToFocus,
			Status:        session.Status,
			QuestionCount: len(session.Questions),
			CreatedAt:     session.CreatedAt,
		}
		i, sid := i, session.ID.Hex()
		g.Go(func() (err error) {
			resp.Sessions[i].MaterialCount, err = s.materials.CountBySession(gctx, sid)
			return
		})
	}
	var completed int64
	g.Go(func() (err error) {
		resp.Stats.TotalQuestions, err = s.questions.CountBySessions(gctx, ids)
		return
	})
	g.Go(func() (err error) {
		completed, err = s.stats.CountUserSessionsByStatus(gctx, id, domain.SessionStatusCompleted)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to load user statistics", err)
	}

	stats := &resp.Stats
	stats.TotalSessions = len(sessions)
	for _, summary := range resp.Sessions {
		stats.TotalMaterials += summary.MaterialCount
	}
	if len(sessions) > 0 {
		stats.AvgQuestionsPerSession = util.Round(float64(stats.TotalQuestions)/float64(len(sessions)), 1)
		stats.CompletionRate = util.Round(float64(completed)/float64(len(sessions))*100, 1)
	}
	stats.LastLogin = user.UpdatedAt
	stats.JoinedDate = user.CreatedAt
	return resp, nil
}

func (s *adminServiceImpl) UpdateUser(ctx context.Context, actorID, id primitive.ObjectID, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	if actorID == id {
		return nil, domain.NewInvalidInputError("Cannot modify your own admin status")
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	update := domain.UserUpdate{
		Name:            req.Name,
		ProfileImageURL: req.ProfileImageURL,
		Notes:           req.Notes,
		IsActive:        req.IsActive,
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return nil, domain.NewInvalidInputError("Email already in use")
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewInternalError("Failed to check existing user", err)
			}
			update.Email = &email
		}
	}
	if req.Role != nil {
		if !domain.IsValidRole(*req.Role) {
			return nil, domain.NewInvalidInputError("Invalid role")
		}
		update.Role = req.Role
	}
	if req.IsActive != nil && !*req.IsActive {
		marker := inactiveMarker
		update.UpdatedAt = &marker
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, domain.NewInternalError("Failed to hash password", err)
		}
		hashed := string(hash)
		update.Password = &hashed
	}
	if req.GeminiAPIKey != nil {
		sealed := ""
		if strings.TrimSpace(*req.GeminiAPIKey) != "" {
			if sealed, err = sealGeminiKey(ctx, s.generator, s.keys, *req.GeminiAPIKey); err != nil {
				return nil, err
			}
		}
		update.GeminiAPIKey = &sealed
	}

	updated, err := s.users.Update(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.NewNotFoundError("User not found")
		case errors.Is(err, domain.ErrDuplicateKey):
			return nil, domain.NewInvalidInputError("Email already in use")
		}
		return nil, domain.NewInternalError("Failed to update user", err)
	}
	logger.Get().Info("Admin updated user", zap.String("actorID", actorID.Hex()), zap.String("userID", id.Hex()))
	resp := toUserResponse(updated, s.keys)
	return &resp, nil
}

func (s *adminServiceImpl) DeleteUser(ctx context.Context, actorID, id primitive.ObjectID) error {
	if actorID == id {
		return domain.NewInvalidInputError("Cannot delete your own account")
	}
	if _, err := s.loadUser(ctx, id); err != nil {
		return err
	}
	if err := s.purger.PurgeUser(ctx, id); err != nil {
		return domain.NewInternalError("Failed to delete user", err)
	}
	logger.Get().Info("Admin deleted user", zap.String("actorID", actorID.Hex()), zap.String("userID", id.Hex()))
	return nil
}

func (s *adminServiceImpl) ListSessions(ctx context.Context, q *dto.AdminSessionListQuery) (*dto.AdminSessionListResponse, error) {
	page, limit := pageOf(q.Page, q.Limit)
	rows, total, err := s.sessions.List(ctx, domain.SessionFilter{
		Search: strings.TrimSpace(q.Search),
		Status: q.Status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, domain.NewInternalError("Failed to list sessions", err)
	}
	out := make([]dto.AdminSessionRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.AdminSessionRow{
			ID:            row.ID.Hex(),
			Role:          row.Role,
			Experience:    row.Experience,
			TopicsToFocus: row.TopicsToFocus,
			Description:   row.Description,
			Status:        row.Status,
			QuestionCount: row.QuestionCount,
			UserName:      row.OwnerName,
			UserEmail:     row.OwnerEmail,
			UserID:        row.User.Hex(),
			CreatedAt:     row.CreatedAt,
		})
	}
	return &dto.AdminSessionListResponse{Sessions: out, Pagination: dto.NewPaginationInfo(page, limit, total)}, nil
}

func (s *adminServiceImpl) SessionStats(ctx context.Context) (*dto.SessionStatsResponse, error) {
	var (
		resp     dto.SessionStatsResponse
		averages domain.SessionAverages
		roles    []domain.LabelCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { resp.TotalSessions, err = s.stats.CountSessionsCreatedSince(gctx, time.Time{}); return })
	g.Go(func() (err error) {
		resp.ActiveSessions, err = s.stats.CountSessionsByStatus(gctx, domain.SessionStatusActive)
		return
	})
	g.Go(func() (err error) {
		resp.CompletedSessions, err = s.stats.CountSessionsByStatus(gctx, domain.SessionStatusCompleted)
		return
	})
	g.Go(func() (err error) {
		resp.SessionsThisWeek, err = s.stats.CountSessionsCreatedSince(gctx, s.now().Add(-activeWindow))
		return
	})
	g.Go(func() (err error) { averages, err = s.stats.SessionAverages(gctx); return })
	g.Go(func() (err error) { roles, err = s.stats.SessionsByRole(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to load session statistics", err)
	}

	resp.CompletionRate = util.Round(util.Percent(float64(resp.CompletedSessions), float64(resp.TotalSessions), 0), 1)
	resp.AvgDuration, resp.AvgQuestions = fallbackSessionMins, fallbackQuestions
	if averages.Found {
		resp.AvgDuration = util.Round(averages.AvgDuration/60, 1)
		resp.AvgQuestions = util.Round(averages.AvgQuestions, 1)
	}
	resp.RoleDistribution = dto.RoleCounts{}
	for _, r := range roles {
		resp.RoleDistribution[r.Label] += r.Count
	}
	return &resp, nil
}

func (s *adminServiceImpl) loadSession(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Session not found")
		}
		return nil, domain.NewInternalError("Failed to load session", err)
	}
	return session, nil
}

func (s *adminServiceImpl) GetSession(ctx context.Context, id primitive.ObjectID) (*dto.AdminSessionDetailResponse, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	var (
		questions []*domain.Question
		owner     *domain.User
		resp      dto.AdminSessionDetailResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { questions, err = s.questions.ListBySession(gctx, id); return })
	g.Go(func() (err error) { resp.MaterialCount, err = s.materials.CountBySession(gctx, id.Hex()); return })
	g.Go(func() (err error) { resp.QuizCount, err = s.quizzes.CountBySessionAndUser(gctx, id, session.User); return })
	g.Go(func() error {
		u, err := s.users.GetByID(gctx, session.User)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		owner = u
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("Failed to load session details", err)
	}

	resp.Session = toSessionResponse(session, questions)
	if owner != nil {
		o := toUserResponse(owner, s.keys)
		resp.Owner = &o
	}
	return &resp, nil
}

func (s *adminServiceImpl) SessionQuestions(ctx context.Context, id primitive.ObjectID) ([]dto.QuestionResponse, error) {
	if _, err := s.loadSession(ctx, id); err != nil {
		return nil, err
	}
	questions, err := s.questions.ListBySession(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load session questions", err)
	}
	return toQuestionResponses(questions), nil
}

func (s *adminServiceImpl) SessionMaterials(ctx context.Context, id primitive.ObjectID) ([]dto.StudyMaterialResponse, error) {
	if _, err := s.loadSession(ctx, id); err != nil {
		return nil, err
	}
	ms, err := s.materials.ListBySession(ctx, id.Hex())
	if err != nil {
		return nil, domain.NewInternalError("Failed to load study materials", err)
	}
	return toMaterialResponses(ms), nil
}

func (s *adminServiceImpl) DeleteSession(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.loadSession(ctx, id); err != nil {
		return err
	}
	if err := s.purger.PurgeSessions(ctx, []primitive.ObjectID{id}); err != nil {
		return domain.NewInternalError("Failed to delete session", err)
	}
	return nil
}

func (s *adminServiceImpl) MaterialsByQuestion(ctx context.Context, questionID primitive.ObjectID, sessionID string) ([]dto.StudyMaterialResponse, error) {
	ms, err := s.materials.ListByQuestion(ctx, questionID.Hex(), sessionID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load study materials", err)
	}
	return toMaterialResponses(ms), nil
}
