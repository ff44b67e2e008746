package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"interview-prep/internal/cache"
	"interview-prep/internal/config"
	"interview-prep/internal/domain"
	"interview-prep/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef"

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT:   config.JWTConfig{SecretKey: "testsecretkeydontuseinproduction32bytes!", TTL: time.Hour},
		OTP:   config.OTPConfig{TTL: 10 * time.Minute, MaxAttempts: 3, BlockDuration: time.Hour},
		Admin: config.AdminConfig{InviteToken: "let-me-in"},
		Google: config.GoogleConfig{
			ClientID: "client-id.apps.googleusercontent.com",
		},
	}
}

type authFixture struct {
	users     *MockUserRepository
	store     *MockCache
	generator *MockTextGenerator
	sender    *MockOTPSender
	keys      *KeyCipher
	svc       AuthService
}

func newAuthFixture(t *testing.T, validate IDTokenValidator) *authFixture {
	t.Helper()
	keys, err := NewKeyCipher(testEncryptionKey)
	require.NoError(t, err)
	f := &authFixture{
		users:     new(MockUserRepository),
		store:     new(MockCache),
		generator: new(MockTextGenerator),
		sender:    new(MockOTPSender),
		keys:      keys,
	}
	f.svc, err = NewAuthService(f.users, f.store, f.generator, keys, f.sender, nil, validate, testAuthConfig())
	require.NoError(t, err)
	return f
}

func domainCode(t *testing.T, err error) domain.ErrorCode {
	t.Helper()
	var de *domain.DomainError
	require.True(t, errors.As(err, &de), "expected a DomainError, got %v", err)
	return de.Code
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	keys, _ := NewKeyCipher(testEncryptionKey)
	_, err := NewAuthService(nil, nil, nil, keys, nil, nil, nil, &config.Config{})
	assert.Error(t, err)
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"12345678", "********"},
		{"123456789", "1234*6789"},
		{"AIzaSyD-abcdefghijkl", "AIza************ijkl"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := MaskKey(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.in), len(got))
		})
	}
}

func TestKeyCipher_RoundTrip(t *testing.T) {
	keys, err := NewKeyCipher(testEncryptionKey)
	require.NoError(t, err)

	sealed, err := keys.Encrypt("AIzaSyD-secret")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "AIzaSyD-secret")

	again, err := keys.Encrypt("AIzaSyD-secret")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per encryption")

	plain, err := keys.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyD-secret", plain)

	_, err = keys.Decrypt("bm90LWEtY2lwaGVydGV4dA==")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestNewKeyCipher_RejectsShortKey(t *testing.T) {
	_, err := NewKeyCipher("short")
	assert.Error(t, err)
}

func TestAuthService_Register(t *testing.T) {
	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.users.On("GetByEmail", mock.Anything, "dup@example.com").Return(&domain.User{}, nil)

		_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{Name: "Dup", Email: " Dup@Example.com ", Password: "secret1"})
		require.Error(t, err)
		assert.Equal(t, domain.CodeInvalidInput, domainCode(t, err))
	})

	t.Run("invite token grants admin and key is sealed", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.users.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, domain.ErrNotFound)
		f.generator.On("ValidateKey", mock.Anything, "AIzaSyD-1234567890").Return(nil)
		var stored *domain.User
		f.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.User) }).
			Return(nil)

		resp, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
			Name:             "Ada",
			Email:            "ada@example.com",
			Password:         "secret1",
			AdminInviteToken: "let-me-in",
			GeminiAPIKey:     "AIzaSyD-1234567890",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, resp.Role)
		assert.True(t, resp.HasGeminiKey)
		assert.Equal(t, "AIza**********7890", resp.GeminiKeyMasked)
		assert.NotEmpty(t, resp.Token)

		require.NotNil(t, stored)
		assert.NotEqual(t, "AIzaSyD-1234567890", stored.GeminiAPIKey)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret1")))
	})

	t.Run("invalid gemini key is rejected before create", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.users.On("GetByEmail", mock.Anything, "bob@example.com").Return(nil, domain.ErrNotFound)
		f.generator.On("ValidateKey", mock.Anything, "bad-key-123").Return(errors.New("API key not valid"))

		_, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
			Name: "Bob", Email: "bob@example.com", Password: "secret1", GeminiAPIKey: "bad-key-123",
		})
		require.Error(t, err)
		assert.Equal(t, domain.CodeInvalidInput, domainCode(t, err))
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	user := &domain.User{ID: primitive.NewObjectID(), Email: "ada@example.com", Password: string(hash), Role: domain.RoleUser}

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)

		_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "ada@example.com", Password: "nope"})
		require.Error(t, err)
		assert.Equal(t, "Invalid email or password", err.Error())
	})

	t.Run("unknown email gets the same message", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

		_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "ghost@example.com", Password: "secret1"})
		require.Error(t, err)
		assert.Equal(t, "Invalid email or password", err.Error())
	})

	t.Run("success touches activity and issues a valid token", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)
		f.users.On("Touch", mock.Anything, user.ID, mock.AnythingOfType("time.Time")).Return(nil)

		resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "ada@example.com", Password: "secret1"})
		require.NoError(t, err)

		claims, err := f.svc.ValidateJWT(context.Background(), resp.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.UserID)
		f.users.AssertExpectations(t)
	})
}

func TestAuthService_ValidateJWT_Rejects(t *testing.T) {
	f := newAuthFixture(t, nil)

	_, err := f.svc.ValidateJWT(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	other, err := NewAuthService(nil, nil, nil, f.keys, nil, nil, nil, &config.Config{JWT: config.JWTConfig{SecretKey: "another-secret", TTL: time.Hour}})
	require.NoError(t, err)
	token, err := other.CreateJWT(primitive.NewObjectID().Hex())
	require.NoError(t, err)
	_, err = f.svc.ValidateJWT(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestAuthService_GoogleLogin_CreatesUser(t *testing.T) {
	validate := func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		assert.Equal(t, "client-id.apps.googleusercontent.com", audience)
		return &idtoken.Payload{Subject: "g-123", Claims: map[string]interface{}{"email": "New@Example.com", "name": "New User"}}, nil
	}
	f := newAuthFixture(t, validate)
	f.users.On("GetByGoogleID", mock.Anything, "g-123").Return(nil, domain.ErrNotFound)
	f.users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, domain.ErrNotFound)
	f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.GoogleID == "g-123" && u.Email == "new@example.com" && u.Password == ""
	})).Return(nil)

	resp, err := f.svc.GoogleLogin(context.Background(), &dto.GoogleLoginRequest{Token: "id-token"})
	require.NoError(t, err)
	assert.Equal(t, "New User", resp.Name)
	assert.Equal(t, domain.RoleUser, resp.Role)
}

func TestAuthService_GoogleLogin_InvalidToken(t *testing.T) {
	f := newAuthFixture(t, func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		return nil, errors.New("idtoken: invalid signature")
	})
	_, err := f.svc.GoogleLogin(context.Background(), &dto.GoogleLoginRequest{Token: "forged"})
	require.Error(t, err)
	assert.Equal(t, domain.CodeUnauthorized, domainCode(t, err))
}

func TestAuthService_GeminiKey(t *testing.T) {
	f := newAuthFixture(t, nil)

	_, err := f.svc.GeminiKey(context.Background(), &domain.User{})
	assert.Equal(t, domain.ErrAPIKeyMissing, err)

	sealed, err := f.keys.Encrypt("AIzaSyD-1234567890")
	require.NoError(t, err)
	key, err := f.svc.GeminiKey(context.Background(), &domain.User{GeminiAPIKey: sealed})
	require.NoError(t, err)
	assert.Equal(t, "AIzaSyD-1234567890", key)
}

func TestAuthService_SetGeminiKey(t *testing.T) {
	f := newAuthFixture(t, nil)
	userID := primitive.NewObjectID()
	f.generator.On("ValidateKey", mock.Anything, "AIzaSyD-1234567890").Return(nil)
	f.users.On("Update", mock.Anything, userID, mock.MatchedBy(func(u domain.UserUpdate) bool {
		return u.GeminiAPIKey != nil && *u.GeminiAPIKey != "" && *u.GeminiAPIKey != "AIzaSyD-1234567890"
	})).Return(&domain.User{ID: userID}, nil)

	resp, err := f.svc.SetGeminiKey(context.Background(), userID, " AIzaSyD-1234567890 ")
	require.NoError(t, err)
	assert.True(t, resp.HasGeminiKey)
	assert.Equal(t, "AIza**********7890", resp.GeminiKeyMasked)
}

func otpRecord(t *testing.T, code string, consumed bool) map[string]string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	c := "0"
	if consumed {
		c = "1"
	}
	return map[string]string{otpFieldHash: string(hash), otpFieldAttempts: "0", otpFieldConsumed: c}
}

func TestAuthService_ForgotPassword(t *testing.T) {
	email := "ada@example.com"

	t.Run("unknown email is a silent success", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.store.On("TTL", mock.Anything, cache.OTPBlockKey("ghost@example.com")).Return(time.Duration(0), domain.ErrCacheMiss)
		f.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

		err := f.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "ghost@example.com"})
		assert.NoError(t, err)
		f.sender.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blocked email gets 429", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.store.On("TTL", mock.Anything, cache.OTPBlockKey(email)).Return(30*time.Minute, nil)

		err := f.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: email})
		require.Error(t, err)
		assert.Equal(t, domain.CodeTooManyRequests, domainCode(t, err))
	})

	t.Run("issues a six digit code and stores only its hash", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		key := cache.OTPKey(email)
		f.store.On("TTL", mock.Anything, cache.OTPBlockKey(email)).Return(time.Duration(0), domain.ErrCacheMiss)
		f.users.On("GetByEmail", mock.Anything, email).Return(&domain.User{Email: email}, nil)
		f.store.On("Delete", mock.Anything, key).Return(nil)
		var storedHash string
		f.store.On("HSet", mock.Anything, key, otpFieldHash, mock.Anything).
			Run(func(args mock.Arguments) { storedHash = args.String(3) }).Return(nil)
		f.store.On("HSet", mock.Anything, key, otpFieldAttempts, "0").Return(nil)
		f.store.On("HSet", mock.Anything, key, otpFieldConsumed, "0").Return(nil)
		f.store.On("Expire", mock.Anything, key, 10*time.Minute).Return(nil)
		var sentCode string
		f.sender.On("SendOTP", mock.Anything, email, mock.Anything, 10*time.Minute).
			Run(func(args mock.Arguments) { sentCode = args.String(2) }).Return(nil)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: email}))
		assert.Len(t, sentCode, 6)
		assert.NotEqual(t, sentCode, storedHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(sentCode)))
	})
}

func TestAuthService_VerifyOTP(t *testing.T) {
	email := "ada@example.com"
	key := cache.OTPKey(email)

	t.Run("missing record", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.store.On("TTL", mock.Anything, cache.OTPBlockKey(email)).Return(time.Duration(0), domain.ErrCacheMiss)
		f.store.On("HGetAll", mock.Anything, key).Return(nil, domain.ErrCacheMiss)

		_, err := f.svc.VerifyOTP(context.Background(), &dto.VerifyOTPRequest{Email: email, OTP: "123456"})
		require.Error(t, err)
		assert.Equal(t, domain.CodeInvalidInput, domainCode(t, err))
	})

	t.Run("correct code does not consume", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.store.On("TTL", mock.Anything, cache.OTPBlockKey(email)).Return(time.Duration(0), domain.ErrCacheMiss)
		f.store.On("HGetAll", mock.Anything, key).Return(otpRecord(t, "123456", false), nil)
		f.store.On("TTL", mock.Anything, key).Return(5*time.Minute, nil)

		resp, err := f.svc.VerifyOTP(context.Background(), &dto.VerifyOTPRequest{Email: email, OTP: "123456"})
		require.NoError(t, err)
		assert.True(t, resp.Valid)
		assert.Equal(t, 300, resp.ExpiresIn)
		f.store.AssertNotCalled(t, "HSet", mock.Anything, key, otpFieldConsumed, "1")
	})

	t.Run("consumed record rejects even the correct code", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.store.On("TTL", mock.Anything, cache.OTPBlockKey(email)).Return(time.Duration(0), domain.ErrCacheMiss)
		f.store.On("HGetAll", mock.Anything, key).Return(otpRecord(t, "123456", true), nil)

		_, err := f.svc.VerifyOTP(context.Background(), &dto.VerifyOTPRequest{Email: email, OTP: "123456"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already been used")
	})

	t.Run("wrong code reports remaining attempts", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.store.On("TTL", mock.Anything, cache.OTPBlockKey(email)).Return(time.Duration(0), domain.ErrCacheMiss)
		f.store.On("HGetAll", mock.Anything, key).Return(otpRecord(t, "123456", false), nil)
		f.store.On("HIncrBy", mock.Anything, key, otpFieldAttempts, int64(1)).Return(int64(1), nil)

		_, err := f.svc.VerifyOTP(context.Background(), &dto.VerifyOTPRequest{Email: email, OTP: "654321"})
		require.Error(t, err)
		var de *domain.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, domain.CodeInvalidInput, de.Code)
		assert.Equal(t, 2, de.Context["remainingAttempts"])
	})

	t.Run("third wrong code blocks for an hour and deletes the record", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		f.store.On("TTL", mock.Anything, cache.OTPBlockKey(email)).Return(time.Duration(0), domain.ErrCacheMiss)
		f.store.On("HGetAll", mock.Anything, key).Return(otpRecord(t, "123456", false), nil)
		f.store.On("HIncrBy", mock.Anything, key, otpFieldAttempts, int64(1)).Return(int64(3), nil)
		f.store.On("Set", mock.Anything, cache.OTPBlockKey(email), "1", time.Hour).Return(nil)
		f.store.On("Delete", mock.Anything, key).Return(nil)

		_, err := f.svc.VerifyOTP(context.Background(), &dto.VerifyOTPRequest{Email: email, OTP: "000000"})
		require.Error(t, err)
		assert.Equal(t, domain.CodeTooManyRequests, domainCode(t, err))
		assert.True(t, strings.Contains(err.Error(), "60 minutes"))
		f.store.AssertExpectations(t)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	email := "ada@example.com"
	key := cache.OTPKey(email)
	f := newAuthFixture(t, nil)
	userID := primitive.NewObjectID()

	f.store.On("TTL", mock.Anything, cache.OTPBlockKey(email)).Return(time.Duration(0), domain.ErrCacheMiss)
	f.store.On("HGetAll", mock.Anything, key).Return(otpRecord(t, "123456", false), nil)
	f.store.On("HSet", mock.Anything, key, otpFieldConsumed, "1").Return(nil)
	f.store.On("TTL", mock.Anything, key).Return(4*time.Minute, nil)
	f.store.On("Delete", mock.Anything, key).Return(nil)
	f.users.On("GetByEmail", mock.Anything, email).Return(&domain.User{ID: userID, Email: email}, nil)
	var newHash string
	f.users.On("Update", mock.Anything, userID, mock.MatchedBy(func(u domain.UserUpdate) bool { return u.Password != nil })).
		Run(func(args mock.Arguments) { newHash = *args.Get(2).(domain.UserUpdate).Password }).
		Return(&domain.User{ID: userID}, nil)

	err := f.svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{Email: email, OTP: "123456", NewPassword: "brand-new"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("brand-new")))
	f.store.AssertCalled(t, "HSet", mock.Anything, key, otpFieldConsumed, "1")
}

// memoryStore is a map-backed domain.Cache for flows that touch the same
// keys many times.
type memoryStore struct {
	values  map[string]string
	hashes  map[string]map[string]string
	expires map[string]time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		values:  map[string]string{},
		hashes:  map[string]map[string]string{},
		expires: map[string]time.Time{},
	}
}

func (m *memoryStore) exists(key string) bool {
	_, v := m.values[key]
	_, h := m.hashes[key]
	return v || h
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string, expiration time.Duration) error {
	m.values[key] = value
	if expiration > 0 {
		m.expires[key] = time.Now().Add(expiration)
	}
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	delete(m.hashes, key)
	delete(m.expires, key)
	return nil
}

func (m *memoryStore) Ping(context.Context) error { return nil }

func (m *memoryStore) HGet(_ context.Context, key, field string) (string, error) {
	v, ok := m.hashes[key][field]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (m *memoryStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	h, ok := m.hashes[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

func (m *memoryStore) HSet(_ context.Context, key, field, value string) error {
	if m.hashes[key] == nil {
		m.hashes[key] = map[string]string{}
	}
	m.hashes[key][field] = value
	return nil
}

func (m *memoryStore) HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error) {
	cur, _ := strconv.ParseInt(m.hashes[key][field], 10, 64)
	cur += incr
	return cur, m.HSet(ctx, key, field, strconv.FormatInt(cur, 10))
}

func (m *memoryStore) Expire(_ context.Context, key string, expiration time.Duration) error {
	if m.exists(key) {
		m.expires[key] = time.Now().Add(expiration)
	}
	return nil
}

func (m *memoryStore) TTL(_ context.Context, key string) (time.Duration, error) {
	if !m.exists(key) {
		return 0, domain.ErrCacheMiss
	}
	at, ok := m.expires[key]
	if !ok {
		return -1, nil
	}
	return time.Until(at), nil
}

func TestAuthService_OTPLockoutCountsConsecutiveFailures(t *testing.T) {
	ctx := context.Background()
	email := "ada@example.com"
	keys, err := NewKeyCipher(testEncryptionKey)
	require.NoError(t, err)
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, email).Return(&domain.User{ID: primitive.NewObjectID(), Email: email}, nil)
	sender := new(MockOTPSender)
	var code string
	sender.On("SendOTP", mock.Anything, email, mock.Anything, 10*time.Minute).
		Run(func(args mock.Arguments) { code = args.String(2) }).Return(nil)
	store := newMemoryStore()
	svc, err := NewAuthService(users, store, nil, keys, sender, nil, nil, testAuthConfig())
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: email}))
	require.Len(t, code, 6)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < 2; i++ {
		_, err := svc.VerifyOTP(ctx, &dto.VerifyOTPRequest{Email: email, OTP: wrong})
		require.Error(t, err)
		assert.Equal(t, domain.CodeInvalidInput, domainCode(t, err))
	}

	resp, err := svc.VerifyOTP(ctx, &dto.VerifyOTPRequest{Email: email, OTP: code})
	require.NoError(t, err)
	assert.True(t, resp.Valid)

	_, err = svc.VerifyOTP(ctx, &dto.VerifyOTPRequest{Email: email, OTP: wrong})
	require.Error(t, err)
	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeInvalidInput, de.Code)
	assert.Equal(t, 2, de.Context["remainingAttempts"])

	_, err = store.Get(ctx, cache.OTPBlockKey(email))
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "email must not be blocked")
}

type evictingGenerator struct {
	*MockTextGenerator
	forgotten []string
}

func (g *evictingGenerator) Forget(apiKey string) {
	g.forgotten = append(g.forgotten, apiKey)
}

func TestAuthService_ReplacingKeyEvictsCachedClient(t *testing.T) {
	keys, err := NewKeyCipher(testEncryptionKey)
	require.NoError(t, err)
	oldSealed, err := keys.Encrypt("AIzaSyD-old-key-123")
	require.NoError(t, err)
	userID := primitive.NewObjectID()

	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID, GeminiAPIKey: oldSealed}, nil)
	users.On("Update", mock.Anything, userID, mock.Anything).Return(&domain.User{ID: userID}, nil)
	gen := &evictingGenerator{MockTextGenerator: new(MockTextGenerator)}
	gen.On("ValidateKey", mock.Anything, "AIzaSyD-new-key-456").Return(nil)
	svc, err := NewAuthService(users, nil, gen, keys, nil, nil, nil, testAuthConfig())
	require.NoError(t, err)

	_, err = svc.SetGeminiKey(context.Background(), userID, "AIzaSyD-new-key-456")
	require.NoError(t, err)
	require.NoError(t, svc.RemoveGeminiKey(context.Background(), userID))

	assert.Equal(t, []string{"AIzaSyD-old-key-123", "AIzaSyD-old-key-123"}, gen.forgotten)
}
