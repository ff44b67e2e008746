package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"interview-prep/internal/cache"
	"interview-prep/internal/config"
	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"
	"interview-prep/internal/metrics"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

const (
	otpFieldHash     = "code_hash"
	otpFieldAttempts = "attempts"
	otpFieldConsumed = "consumed"
	otpDigits        = 6
)

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// IDTokenValidator verifies a Google ID token for the given audience.
type IDTokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// AuthService covers accounts, tokens, stored Gemini keys and password reset.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.AuthResponse, error)
	CreateJWT(userID string) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	// CurrentUser loads the account a validated token refers to.
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	DeleteAccount(ctx context.Context, userID primitive.ObjectID) error
	SetGeminiKey(ctx context.Context, userID primitive.ObjectID, apiKey string) (*dto.GeminiKeyResponse, error)
	RemoveGeminiKey(ctx context.Context, userID primitive.ObjectID) error
	// GeminiKey returns the caller's decrypted key or domain.ErrAPIKeyMissing.
	GeminiKey(ctx context.Context, user *domain.User) (string, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.OTPStatusResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authServiceImpl struct {
	users     domain.UserRepository
	store     domain.Cache
	generator domain.TextGenerator
	keys      *KeyCipher
	sender    domain.OTPSender
	purger    *Purger
	validate  IDTokenValidator
	cfg       *config.Config
}

func NewAuthService(
	users domain.UserRepository,
	store domain.Cache,
	generator domain.TextGenerator,
	keys *KeyCipher,
	sender domain.OTPSender,
	purger *Purger,
	validate IDTokenValidator,
	cfg *config.Config,
) (AuthService, error) {
	if cfg == nil || cfg.JWT.SecretKey == "" {
		return nil, errors.New("jwt secret key is not configured")
	}
	if keys == nil {
		return nil, errors.New("key cipher is required")
	}
	if validate == nil {
		validate = idtoken.Validate
	}
	if sender == nil {
		sender = NewLogOTPSender()
	}
	return &authServiceImpl{
		users:     users,
		store:     store,
		generator: generator,
		keys:      keys,
		sender:    sender,
		purger:    purger,
		validate:  validate,
		cfg:       cfg,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) authResponse(u *domain.User) (*dto.AuthResponse, error) {
	token, err := s.CreateJWT(u.ID.Hex())
	if err != nil {
		return nil, domain.NewInternalError("Failed to issue token", err)
	}
	return &dto.AuthResponse{UserResponse: toUserResponse(u, s.keys), Token: token}, nil
}

// sealGeminiKey confirms the key works upstream and returns its ciphertext.
func sealGeminiKey(ctx context.Context, generator domain.TextGenerator, keys *KeyCipher, apiKey string) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if err := generator.ValidateKey(ctx, apiKey); err != nil {
		logger.Get().Warn("Gemini key rejected", zap.Error(err))
		return "", domain.NewError(domain.CodeInvalidInput, "Invalid Gemini API key", err)
	}
	sealed, err := keys.Encrypt(apiKey)
	if err != nil {
		return "", domain.NewInternalError("Failed to store Gemini API key", err)
	}
	return sealed, nil
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewInvalidInputError("User with this email already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewInternalError("Failed to check existing user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("Failed to hash password", err)
	}

	role := domain.RoleUser
	invite := s.cfg.Admin.InviteToken
	if invite != "" && req.AdminInviteToken != "" &&
		subtle.ConstantTimeCompare([]byte(invite), []byte(req.AdminInviteToken)) == 1 {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		Name:            strings.TrimSpace(req.Name),
		Email:           email,
		Password:        string(hash),
		ProfileImageURL: req.ProfileImageURL,
		Role:            role,
		IsActive:        true,
	}
	if req.GeminiAPIKey != "" {
		sealed, err := sealGeminiKey(ctx, s.generator, s.keys, req.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		user.GeminiAPIKey = sealed
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.NewInvalidInputError("User with this email already exists")
		}
		return nil, domain.NewInternalError("Failed to create user", err)
	}
	logger.Get().Info("User registered", zap.String("userID", user.ID.Hex()), zap.String("role", role))
	return s.authResponse(user)
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	invalid := domain.NewInvalidInputError("Invalid email or password")

	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, invalid
		}
		return nil, domain.NewInternalError("Failed to load user", err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, invalid
	}

	now := time.Now().UTC()
	if err := s.users.Touch(ctx, user.ID, now); err != nil {
		logger.Get().Warn("Failed to record login time", zap.String("userID", user.ID.Hex()), zap.Error(err))
	} else {
		user.UpdatedAt = now
	}
	return s.authResponse(user)
}

func (s *authServiceImpl) GoogleLogin(ctx context.Context, req *dto.GoogleLoginRequest) (*dto.AuthResponse, error) {
	if s.cfg.Google.ClientID == "" {
		return nil, domain.NewInternalError("Google sign-in is not configured", nil)
	}
	payload, err := s.validate(ctx, req.Token, s.cfg.Google.ClientID)
	if err != nil {
		return nil, domain.NewError(domain.CodeUnauthorized, "Invalid Google token", err)
	}
	claim := func(name string) string {
		v, _ := payload.Claims[name].(string)
		return v
	}
	email := normalizeEmail(claim("email"))
	if payload.Subject == "" || email == "" {
		return nil, domain.NewUnauthorizedError("Google token is missing required claims")
	}

	user, err := s.users.GetByGoogleID(ctx, payload.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		user, err = s.users.GetByEmail(ctx, email)
	}
	switch {
	case err == nil:
		update := domain.UserUpdate{}
		if user.GoogleID == "" {
			// Link an existing password account to the Google identity.
			update.GoogleID = &payload.Subject
		}
		if pic := claim("picture"); pic != "" && user.ProfileImageURL == "" {
			update.ProfileImageURL = &pic
		}
		if user, err = s.users.Update(ctx, user.ID, update); err != nil {
			return nil, domain.NewInternalError("Failed to update user", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		name := claim("name")
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		user = &domain.User{
			Name:            name,
			Email:           email,
			GoogleID:        payload.Subject,
			ProfileImageURL: claim("picture"),
			Role:            domain.RoleUser,
			IsActive:        true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, domain.NewInternalError("Failed to create user", err)
		}
		logger.Get().Info("New user created via Google sign-in", zap.String("userID", user.ID.Hex()))
	default:
		return nil, domain.NewInternalError("Failed to load user", err)
	}
	return s.authResponse(user)
}

func (s *authServiceImpl) CreateJWT(userID string) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.SecretKey))
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}
	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidJWTToken
	}
	return claims, nil
}

func (s *authServiceImpl) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.NewUnauthorizedError("Not authorized, token failed")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewUnauthorizedError("User not found")
		}
		return nil, domain.NewInternalError("Failed to load user", err)
	}
	return user, nil
}

func (s *authServiceImpl) loadUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("User not found")
		}
		return nil, domain.NewInternalError("Failed to load user", err)
	}
	return user, nil
}

func (s *authServiceImpl) GetProfile(ctx context.Context, userID primitive.ObjectID) (*dto.UserResponse, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user, s.keys)
	return &resp, nil
}

func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	update := domain.UserUpdate{ProfileImageURL: req.ProfileImageURL}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		update.Name = &name
	}
	user, err := s.users.Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("User not found")
		}
		return nil, domain.NewInternalError("Failed to update profile", err)
	}
	resp := toUserResponse(user, s.keys)
	return &resp, nil
}

func (s *authServiceImpl) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return err
	}
	if err := s.purger.PurgeUser(ctx, userID); err != nil {
		return domain.NewInternalError("Failed to delete account", err)
	}
	return nil
}

func (s *authServiceImpl) SetGeminiKey(ctx context.Context, userID primitive.ObjectID, apiKey string) (*dto.GeminiKeyResponse, error) {
	sealed, err := sealGeminiKey(ctx, s.generator, s.keys, apiKey)
	if err != nil {
		return nil, err
	}
	s.forgetStoredKey(ctx, userID)
	if _, err := s.users.Update(ctx, userID, domain.UserUpdate{GeminiAPIKey: &sealed}); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("User not found")
		}
		return nil, domain.NewInternalError("Failed to store Gemini API key", err)
	}
	return &dto.GeminiKeyResponse{HasGeminiKey: true, GeminiKeyMasked: MaskKey(strings.TrimSpace(apiKey))}, nil
}

func (s *authServiceImpl) RemoveGeminiKey(ctx context.Context, userID primitive.ObjectID) error {
	empty := ""
	s.forgetStoredKey(ctx, userID)
	if _, err := s.users.Update(ctx, userID, domain.UserUpdate{GeminiAPIKey: &empty}); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewNotFoundError("User not found")
		}
		return domain.NewInternalError("Failed to remove Gemini API key", err)
	}
	return nil
}

// forgetStoredKey evicts the generator's client for the key being replaced.
func (s *authServiceImpl) forgetStoredKey(ctx context.Context, userID primitive.ObjectID) {
	evicter, ok := s.generator.(domain.ClientEvicter)
	if !ok {
		return
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil || !user.HasGeminiKey() {
		return
	}
	if key, err := s.keys.Decrypt(user.GeminiAPIKey); err == nil {
		evicter.Forget(key)
	}
}

func (s *authServiceImpl) GeminiKey(ctx context.Context, user *domain.User) (string, error) {
	if user == nil || !user.HasGeminiKey() {
		return "", domain.ErrAPIKeyMissing
	}
	key, err := s.keys.Decrypt(user.GeminiAPIKey)
	if err != nil || key == "" {
		logger.Get().Error("Stored Gemini key could not be decrypted", zap.String("userID", user.ID.Hex()), zap.Error(err))
		return "", domain.ErrAPIKeyMissing
	}
	return key, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// ensureNotBlocked returns a 429 error while the email is locked out.
func (s *authServiceImpl) ensureNotBlocked(ctx context.Context, email string) error {
	ttl, err := s.store.TTL(ctx, cache.OTPBlockKey(email))
	if errors.Is(err, domain.ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return domain.NewInternalError("Failed to check reset state", err)
	}
	minutes := int(ttl.Minutes()) + 1
	if ttl < 0 {
		minutes = int(s.cfg.OTP.BlockDuration.Minutes())
	}
	return domain.NewTooManyRequestsError(
		fmt.Sprintf("Too many failed attempts. Please try again in %d minutes", minutes))
}

func (s *authServiceImpl) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if err := s.ensureNotBlocked(ctx, email); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		// Same response as a known email.
		logger.Get().Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return domain.NewInternalError("Failed to load user", err)
	}

	code, err := generateOTP()
	if err != nil {
		return domain.NewInternalError("Failed to generate code", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewInternalError("Failed to generate code", err)
	}

	key := cache.OTPKey(email)
	if err := s.store.Delete(ctx, key); err != nil {
		return domain.NewInternalError("Failed to store code", err)
	}
	for _, kv := range [][2]string{{otpFieldHash, string(hash)}, {otpFieldAttempts, "0"}, {otpFieldConsumed, "0"}} {
		if err := s.store.HSet(ctx, key, kv[0], kv[1]); err != nil {
			return domain.NewInternalError("Failed to store code", err)
		}
	}
	if err := s.store.Expire(ctx, key, s.cfg.OTP.TTL); err != nil {
		return domain.NewInternalError("Failed to store code", err)
	}

	if err := s.sender.SendOTP(ctx, user.Email, code, s.cfg.OTP.TTL); err != nil {
		return domain.NewInternalError("Failed to send code", err)
	}
	metrics.OTPEventsTotal.WithLabelValues("issued").Inc()
	return nil
}

// checkOTP validates code against the stored record. Each wrong code counts
// as an attempt; reaching the limit deletes the record and blocks the email.
func (s *authServiceImpl) checkOTP(ctx context.Context, email, code string, consume bool) (time.Duration, error) {
	if err := s.ensureNotBlocked(ctx, email); err != nil {
		return 0, err
	}

	key := cache.OTPKey(email)
	record, err := s.store.HGetAll(ctx, key)
	if errors.Is(err, domain.ErrCacheMiss) {
		return 0, domain.NewInvalidInputError("OTP expired or not found. Please request a new one")
	}
	if err != nil {
		return 0, domain.NewInternalError("Failed to read reset state", err)
	}
	if record[otpFieldConsumed] == "1" {
		return 0, domain.NewInvalidInputError("OTP has already been used. Please request a new one")
	}

	if bcrypt.CompareHashAndPassword([]byte(record[otpFieldHash]), []byte(code)) != nil {
		attempts, err := s.store.HIncrBy(ctx, key, otpFieldAttempts, 1)
		if err != nil {
			return 0, domain.NewInternalError("Failed to record attempt", err)
		}
		if int(attempts) >= s.cfg.OTP.MaxAttempts {
			if err := s.store.Set(ctx, cache.OTPBlockKey(email), "1", s.cfg.OTP.BlockDuration); err != nil {
				return 0, domain.NewInternalError("Failed to block reset", err)
			}
			_ = s.store.Delete(ctx, key)
			metrics.OTPEventsTotal.WithLabelValues("blocked").Inc()
			return 0, domain.NewTooManyRequestsError(fmt.Sprintf(
				"Too many failed attempts. Password reset is blocked for %d minutes", int(s.cfg.OTP.BlockDuration.Minutes())))
		}
		metrics.OTPEventsTotal.WithLabelValues("rejected").Inc()
		remaining := s.cfg.OTP.MaxAttempts - int(attempts)
		return 0, domain.NewInvalidInputError("Invalid OTP. " + strconv.Itoa(remaining) + " attempt(s) remaining").
			WithContext("remainingAttempts", remaining)
	}

	// Only consecutive failures count toward the lockout.
	if attempts := record[otpFieldAttempts]; attempts != "" && attempts != "0" {
		if err := s.store.HSet(ctx, key, otpFieldAttempts, "0"); err != nil {
			return 0, domain.NewInternalError("Failed to record attempt", err)
		}
	}
	if consume {
		if err := s.store.HSet(ctx, key, otpFieldConsumed, "1"); err != nil {
			return 0, domain.NewInternalError("Failed to consume code", err)
		}
	}
	ttl, err := s.store.TTL(ctx, key)
	if err != nil {
		ttl = 0
	}
	metrics.OTPEventsTotal.WithLabelValues("verified").Inc()
	return ttl, nil
}

func (s *authServiceImpl) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.OTPStatusResponse, error) {
	ttl, err := s.checkOTP(ctx, normalizeEmail(req.Email), req.OTP, false)
	if err != nil {
		return nil, err
	}
	return &dto.OTPStatusResponse{Valid: true, ExpiresIn: int(ttl.Seconds())}, nil
}

func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if _, err := s.checkOTP(ctx, email, req.OTP, true); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewInvalidInputError("OTP expired or not found. Please request a new one")
		}
		return domain.NewInternalError("Failed to load user", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewInternalError("Failed to hash password", err)
	}
	pw := string(hash)
	if _, err := s.users.Update(ctx, user.ID, domain.UserUpdate{Password: &pw}); err != nil {
		return domain.NewInternalError("Failed to reset password", err)
	}
	_ = s.store.Delete(ctx, cache.OTPKey(email))
	logger.Get().Info("Password reset", zap.String("userID", user.ID.Hex()))
	return nil
}
