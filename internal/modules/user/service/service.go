package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/collegetrack/internal/entity"
	accessRepo "anoa.com/collegetrack/internal/modules/access/repository"
	"anoa.com/collegetrack/internal/modules/user/dto"
	"anoa.com/collegetrack/internal/modules/user/repository"
	"anoa.com/collegetrack/pkg/apperror"
	"anoa.com/collegetrack/pkg/logger"
	"anoa.com/collegetrack/pkg/ratelimiter"
	"anoa.com/collegetrack/pkg/token"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var errInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password", apperror.ErrUnauthorized)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest, clientIP string) (*dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.MeResponse, error)
	GoogleEnabled() bool
	GoogleLoginURL(state string) (string, error)
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
}

type Options struct {
	Redis            *redis.Client
	LoginMaxAttempts int
	LoginLockout     time.Duration
	RegisterCooldown time.Duration
	// Google is nil when sign-in with Google is disabled.
	Google            *oauth2.Config
	GoogleUserInfoURL string
	BcryptCost        int
}

type authService struct {
	users  repository.UserRepository
	links  accessRepo.LinkRepository
	tokens *token.Manager
	opts   Options
}

func NewAuthService(users repository.UserRepository, links accessRepo.LinkRepository, tokens *token.Manager, opts Options) AuthService {
	if opts.GoogleUserInfoURL == "" {
		opts.GoogleUserInfoURL = googleUserInfoURL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:  users,
		links:  links,
		tokens: tokens,
		opts:   opts,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest, clientIP string) (*dto.UserResponse, error) {
	if ttl, err := ratelimiter.GetRateLimitTTL(ctx, s.opts.Redis, clientIP, ratelimiter.ScopeRegister); err != nil {
		logger.Warn().Err(err).Msg("register cooldown check failed")
	} else if ttl > 0 {
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("please wait %d seconds before registering again", int(ttl.Seconds()+0.5)),
			RetryAfter: ttl,
		}
	}

	email := normalizeEmail(req.Email)
	role := entity.Role(req.Role)
	if role == "" {
		role = entity.RoleStudent
	}
	if !selfRegisterable(role) {
		return nil, fmt.Errorf("role %q cannot be chosen at sign-up: %w", req.Role, apperror.ErrBadRequest)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("a user with this email already exists: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:           email,
		PasswordHash:    string(hash),
		Name:            strings.TrimSpace(req.Name),
		Role:            role,
		GraduationYear:  req.GraduationYear,
		GPA:             req.GPA,
		SATScore:        req.SATScore,
		ACTScore:        req.ACTScore,
		TargetCountries: cleanList(req.TargetCountries),
		IntendedMajors:  cleanList(req.IntendedMajors),
	}

	studentEmail := normalizeEmail(req.StudentEmail)
	err = s.users.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		var student *entity.User
		if role == entity.RoleParent && studentEmail != "" {
			found, err := users.FindByEmail(ctx, studentEmail)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if found == nil || found.Role != entity.RoleStudent {
				return fmt.Errorf("studentEmail does not belong to a student account: %w", apperror.ErrBadRequest)
			}
			student = found
		}

		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("a user with this email already exists: %w", apperror.ErrConflict)
			}
			return err
		}

		if student != nil {
			return s.links.WithTx(tx).Create(ctx, &entity.ParentStudent{ParentID: user.ID, StudentID: student.ID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := ratelimiter.CheckAndSetRateLimit(ctx, s.opts.Redis, clientIP, ratelimiter.ScopeRegister, s.opts.RegisterCooldown); err != nil {
		logger.Warn().Err(err).Msg("failed to start register cooldown")
	}

	logger.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("user registered")
	return dto.ToUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	if err := s.checkLockout(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.loginFailed(ctx, email)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.loginFailed(ctx, email)
	}

	if err := ratelimiter.ClearRateLimit(ctx, s.opts.Redis, email, ratelimiter.ScopeLogin); err != nil {
		logger.Warn().Err(err).Msg("failed to clear login failures")
	}

	return s.issueSession(user)
}

// checkLockout fails once the email has LoginMaxAttempts failures inside the lockout window.
// Redis errors are logged and the login proceeds.
func (s *authService) checkLockout(ctx context.Context, email string) error {
	if s.opts.LoginMaxAttempts <= 0 {
		return nil
	}

	failures, err := ratelimiter.Failures(ctx, s.opts.Redis, email, ratelimiter.ScopeLogin)
	if err != nil {
		logger.Warn().Err(err).Msg("login lockout check failed")
		return nil
	}
	if failures < int64(s.opts.LoginMaxAttempts) {
		return nil
	}

	ttl, err := ratelimiter.GetRateLimitTTL(ctx, s.opts.Redis, email, ratelimiter.ScopeLogin)
	if err != nil || ttl <= 0 {
		ttl = s.opts.LoginLockout
	}
	return &ratelimiter.RateLimitError{
		Message:    fmt.Sprintf("too many failed login attempts, try again in %d minutes", int(ttl.Minutes())+1),
		RetryAfter: ttl,
	}
}

func (s *authService) loginFailed(ctx context.Context, email string) error {
	if _, err := ratelimiter.RegisterFailure(ctx, s.opts.Redis, email, ratelimiter.ScopeLogin, s.opts.LoginLockout); err != nil {
		logger.Warn().Err(err).Msg("failed to record login failure")
	}
	return errInvalidCredentials
}

func (s *authService) issueSession(user *entity.User) (*dto.AuthResponse, error) {
	signed, expiresAt, err := s.tokens.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	}, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.MeResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := &dto.MeResponse{User: dto.ToUserResponse(user)}
	switch user.Role {
	case entity.RoleParent:
		students, err := s.links.FindStudents(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		resp.Students = dto.ToLinkedUsers(students)
	case entity.RoleStudent:
		parents, err := s.links.FindParents(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		resp.Parents = dto.ToLinkedUsers(parents)
	}
	return resp, nil
}

func (s *authService) GoogleEnabled() bool {
	return s.opts.Google != nil
}

func (s *authService) GoogleLoginURL(state string) (string, error) {
	if s.opts.Google == nil {
		return "", fmt.Errorf("google sign-in is not configured: %w", apperror.ErrNotFound)
	}
	return s.opts.Google.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// GoogleCallback signs in an existing account. Accounts are never created here because
// registration needs a role and, for parents, a student link.
func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	if s.opts.Google == nil {
		return nil, fmt.Errorf("google sign-in is not configured: %w", apperror.ErrNotFound)
	}

	tok, err := s.opts.Google.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "failed to exchange google authorization code", err)
	}

	info, err := s.fetchGoogleUser(ctx, tok)
	if err != nil {
		return nil, err
	}
	if !info.VerifiedEmail {
		return nil, apperror.New(http.StatusUnauthorized, "google email is not verified", apperror.ErrUnauthorized)
	}

	user, err := s.users.FindByGoogleID(ctx, info.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.users.FindByEmail(ctx, normalizeEmail(info.Email))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusNotFound, "no account is registered for this google email", apperror.ErrNotFound)
		}
		return nil, err
	}

	if user.GoogleID == nil || *user.GoogleID != info.ID {
		if err := s.users.SetGoogleID(ctx, user.ID, info.ID); err != nil {
			logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to store google id")
		}
	}

	return s.issueSession(user)
}

func (s *authService) fetchGoogleUser(ctx context.Context, tok *oauth2.Token) (*googleUser, error) {
	client := s.opts.Google.Client(ctx, tok)
	resp, err := client.Get(s.opts.GoogleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}

	var info googleUser
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode google user info: %w", err)
	}
	return &info, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// selfRegisterable lists the roles open to public sign-up. Admins come from the seed.
func selfRegisterable(role entity.Role) bool {
	switch role {
	case entity.RoleStudent, entity.RoleParent, entity.RoleTeacher:
		return true
	}
	return false
}
