// Command seed_admin creates the first admin account, or promotes an existing
// account to admin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"interview-prep/internal/config"
	"interview-prep/internal/database"
	"interview-prep/internal/domain"
	"interview-prep/internal/logger"
	"interview-prep/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordEnv    = "SEED_ADMIN_PASSWORD"
	minPasswordLen = 6
)

type adminSeed struct {
	Name     string
	Email    string
	Password string
}

func (s adminSeed) validate() error {
	if strings.TrimSpace(s.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// seedAdmin promotes the account registered under the seed's email, or
// creates it when missing. A password is only needed for a new account.
func seedAdmin(ctx context.Context, users domain.UserRepository, seed adminSeed) (created bool, err error) {
	if err := seed.validate(); err != nil {
		return false, err
	}
	email := strings.ToLower(strings.TrimSpace(seed.Email))

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return false, nil
		}
		role := domain.RoleAdmin
		active := true
		_, err = users.Update(ctx, existing.ID, domain.UserUpdate{Role: &role, IsActive: &active})
		return false, err
	case !errors.Is(err, domain.ErrNotFound):
		return false, err
	}

	if len(seed.Password) < minPasswordLen {
		return false, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	err = users.Create(ctx, &domain.User{
		Name:      strings.TrimSpace(seed.Name),
		Email:     email,
		Password:  string(hash),
		Role:      domain.RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err == nil, err
}

func main() {
	name := flag.String("name", "Administrator", "display name for a new account")
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "password for a new account (or "+passwordEnv+")")
	flag.Parse()
	if *password == "" {
		*password = os.Getenv(passwordEnv)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	ctx := context.Background()
	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(ctx) }()

	users := repository.NewMongoUserRepository(client.Database(cfg.Mongo.Database))
	created, err := seedAdmin(ctx, users, adminSeed{Name: *name, Email: *email, Password: *password})
	if err != nil {
		log.Fatal("Failed to seed admin", zap.String("email", *email), zap.Error(err))
	}
	if created {
		log.Info("Admin account created", zap.String("email", *email))
		return
	}
	log.Info("Account has admin role", zap.String("email", *email))
}
