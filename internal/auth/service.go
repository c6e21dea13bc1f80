package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/launchlift/launchlift/internal/config"
	"github.com/launchlift/launchlift/internal/models"
	"github.com/launchlift/launchlift/pkg/database"
)

// Credentials is a password sign-in attempt for a specific role.
type Credentials struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// SignupPayload creates a new account.
type SignupPayload struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
}

// Result is a successful authentication outcome.
type Result struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

// Service implements the authentication collaborator over Postgres-backed
// accounts, Redis-held verification codes, and Kafka email events.
type Service struct {
	db       *database.Clients
	producer sarama.SyncProducer
	cfg      *config.Config
}

func NewService(db *database.Clients, producer sarama.SyncProducer, cfg *config.Config) *Service {
	return &Service{db: db, producer: producer, cfg: cfg}
}

// Login verifies credentials and mints a token. Accounts flagged otp_only
// are rejected with the RequiresOTP flag so the caller can fall back to
// email verification.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Result, error) {
	user, err := s.userByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &Error{Message: ErrInvalidCredentials.Error(), Err: ErrInvalidCredentials}
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if creds.Role.Valid() && user.Role != creds.Role {
		return nil, &Error{Message: ErrRoleMismatch.Error(), Err: ErrRoleMismatch}
	}
	if user.OTPOnly {
		return nil, &Error{Message: "email verification required for this account", RequiresOTP: true}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, &Error{Message: ErrInvalidCredentials.Error(), Err: ErrInvalidCredentials}
	}

	return s.mint(user)
}

// Signup creates an account and signs the new user in.
func (s *Service) Signup(ctx context.Context, payload SignupPayload) (*Result, error) {
	if !payload.Role.Valid() {
		return nil, &Error{Message: "a valid role is required", Err: ErrInvalidCredentials}
	}
	if payload.Email == "" || payload.Password == "" {
		return nil, &Error{Message: "email and password are required", Err: ErrInvalidCredentials}
	}

	var count int
	if err := s.db.DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM users WHERE email = $1", payload.Email); err != nil {
		return nil, fmt.Errorf("failed to check for existing account: %w", err)
	}
	if count > 0 {
		return nil, &Error{Message: ErrEmailTaken.Error(), Err: ErrEmailTaken}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        payload.Email,
		PasswordHash: string(hash),
		Role:         payload.Role,
		Name:         payload.Name,
		CreatedAt:    time.Now(),
	}
	if _, err := s.db.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, role, name) VALUES ($1, $2, $3, $4, $5)",
		user.ID, user.Email, user.PasswordHash, user.Role, user.Name,
	); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("Account created", "user_id", user.ID, "role", user.Role)
	return s.mint(user)
}

// FetchProfile resolves a token back to its current identity.
func (s *Service) FetchProfile(ctx context.Context, token string) (models.Identity, error) {
	claims, err := ParseToken(token, []byte(s.cfg.JWT.Secret))
	if err != nil {
		return models.Identity{}, err
	}

	var user models.User
	err = s.db.DB.GetContext(ctx, &user,
		"SELECT id, email, password_hash, role, name, otp_only, created_at FROM users WHERE id = $1",
		claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, ErrInvalidToken
		}
		return models.Identity{}, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return user.Identity(), nil
}

// SendVerificationEmail stores a single-use 6-digit code in Redis with a
// TTL and queues the email carrying it.
func (s *Service) SendVerificationEmail(ctx context.Context, email string, role models.Role) error {
	code, err := sixDigitCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := s.db.Redis.Set(ctx, verifyKey(email), code, s.cfg.Verify.CodeTTL).Err(); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	return s.publishEmail(models.EmailPayload{
		Recipient: email,
		Subject:   "Your Launch & Lift verification code",
		Body:      fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.cfg.Verify.CodeTTL.Minutes())),
	})
}

// VerifyCode consumes the stored code and signs the user in on a match.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (*Result, error) {
	stored, err := s.db.Redis.GetDel(ctx, verifyKey(email)).Result()
	if err != nil || stored == "" || stored != code {
		return nil, &Error{Message: ErrCodeInvalid.Error(), Err: ErrCodeInvalid}
	}

	user, err := s.userByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &Error{Message: ErrInvalidCredentials.Error(), Err: ErrInvalidCredentials}
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return s.mint(user)
}

// RequestPasswordReset stores a single-use reset token in Redis with a TTL
// and queues the email carrying it. Unknown emails are a silent no-op so
// the endpoint does not reveal which accounts exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token := uuid.NewString()
	if err := s.db.Redis.Set(ctx, resetKey(token), user.ID, s.cfg.Verify.ResetTTL).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	return s.publishEmail(models.EmailPayload{
		Recipient: email,
		Subject:   "Reset your Launch & Lift password",
		Body:      fmt.Sprintf("Use this token to reset your password: %s", token),
	})
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.db.Redis.GetDel(ctx, resetKey(token)).Result()
	if err != nil || userID == "" {
		return &Error{Message: ErrCodeInvalid.Error(), Err: ErrCodeInvalid}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.db.DB.ExecContext(ctx,
		"UPDATE users SET password_hash = $1 WHERE id = $2", string(hash), userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *Service) mint(user models.User) (*Result, error) {
	token, err := GenerateToken(user.ID, user.Role, []byte(s.cfg.JWT.Secret), s.cfg.JWT.Expiration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Result{Token: token, Identity: user.Identity()}, nil
}

func (s *Service) userByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.DB.GetContext(ctx, &user,
		"SELECT id, email, password_hash, role, name, otp_only, created_at FROM users WHERE email = $1",
		email)
	return user, err
}

func (s *Service) publishEmail(payload models.EmailPayload) error {
	event := models.WorkflowEvent{
		ID:        uuid.NewString(),
		Type:      models.EventSendEmail,
		CreatedAt: time.Now(),
		Email:     payload,
	}
	eventBytes, _ := json.Marshal(event)
	msg := &sarama.ProducerMessage{
		Topic: s.cfg.Kafka.Topic,
		Value: sarama.StringEncoder(eventBytes),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to queue email: %w", err)
	}
	return nil
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func verifyKey(email string) string { return fmt.Sprintf("verify:%s", email) }

func resetKey(token string) string { return fmt.Sprintf("pwreset:%s", token) }
