package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/backoffice/users-api/internal/core/domain"
	"github.com/backoffice/users-api/internal/core/ports"
)

const minPasswordLen = 6

// emailPattern is the deliberately simple local@domain.tld shape check.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserService implements ports.UserService over a UserRepository.
type UserService struct {
	repo       ports.UserRepository
	audit      ports.AuditRecorder
	limiter    ports.LoginLimiter
	log        zerolog.Logger
	bcryptCost int
	jwtSecret  string
	tokenTTL   time.Duration
}

// Options tunes optional service behaviour. Zero values fall back to
// bcrypt cost 10, 24h tokens, no audit trail and no login throttling.
type Options struct {
	BcryptCost int
	JWTSecret  string
	TokenTTL   time.Duration
	Audit      ports.AuditRecorder
	Limiter    ports.LoginLimiter
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger, opts Options) *UserService {
	cost := opts.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 10
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UserService{
		repo:       repo,
		audit:      opts.Audit,
		limiter:    opts.Limiter,
		log:        log,
		bcryptCost: cost,
		jwtSecret:  opts.JWTSecret,
		tokenTTL:   ttl,
	}
}

// Create validates, normalizes and persists a new user. The pre-insert
// uniqueness check is not atomic with the insert; the unique constraint on
// users.email is the final guard and its violation surfaces as a conflict
// at the error translator.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("name is required", "name")
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, domain.Invalid("email is required", "email")
	}
	if !emailPattern.MatchString(email) {
		return nil, domain.Invalid("invalid email format", "email")
	}
	if in.Password == "" {
		return nil, domain.Invalid("password is required", "password")
	}
	if len(in.Password) < minPasswordLen {
		return nil, domain.Invalid("password must be at least 6 characters", "password")
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflict("user", "email", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Active:       active,
		RoleID:       in.RoleID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("user_id", created.ID).Str("email", created.Email).Msg("user created")
	s.record(domain.AuditEvent{UserID: created.ID, Action: domain.AuditCreated, Actor: created.Email})
	return created, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.FindAll(ctx)
}

// GetByID returns the user or (nil, nil) when absent. Absence is not an
// error for reads; callers decide whether it is.
func (s *UserService) GetByID(ctx context.Context, id int) (*domain.User, error) {
	if id <= 0 {
		return nil, domain.Invalid("invalid user id", "id")
	}
	return s.repo.FindByID(ctx, id)
}

// GetByEmail looks up by normalized email, returning (nil, nil) when absent.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, domain.Invalid("email is required", "email")
	}
	return s.repo.FindByEmail(ctx, normalized)
}

// Update applies a partial update: only fields present in the input are
// validated and written, the rest keep their stored values.
func (s *UserService) Update(ctx context.Context, id int, in ports.UpdateUserInput) (*domain.User, error) {
	if id <= 0 {
		return nil, domain.Invalid("invalid user id", "id")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.NotFound("user", id)
	}

	var patch ports.UserPatch

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty", "name")
		}
		patch.Name = &name
	}

	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if !emailPattern.MatchString(email) {
			return nil, domain.Invalid("invalid email format", "email")
		}
		if email != existing.Email {
			taken, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.Conflict("user", "email", email)
			}
		}
		patch.Email = &email
	}

	if in.Password != nil {
		if len(*in.Password) < minPasswordLen {
			return nil, domain.Invalid("password must be at least 6 characters", "password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return nil, err
		}
		hashed := string(hash)
		patch.PasswordHash = &hashed
	}

	patch.Active = in.Active
	patch.RoleID = in.RoleID

	if patch.Empty() {
		return existing, nil
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.NotFound("user", id)
	}

	s.log.Info().Int("user_id", id).Msg("user updated")
	s.record(domain.AuditEvent{UserID: id, Action: domain.AuditUpdated, Actor: updated.Email})
	return updated, nil
}

// Delete removes the user, failing with not-found when it does not exist.
func (s *UserService) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return domain.Invalid("invalid user id", "id")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.NotFound("user", id)
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return domain.NotFound("user", id)
	}

	s.log.Info().Int("user_id", id).Msg("user deleted")
	s.record(domain.AuditEvent{UserID: id, Action: domain.AuditDeleted, Actor: existing.Email})
	return nil
}

// Authenticate verifies credentials against the stored hash. Unknown email
// and wrong password are indistinguishable from outside; an inactive account
// is reported distinctly. Failed attempts count against the login limiter.
func (s *UserService) Authenticate(ctx context.Context, in ports.LoginInput) (*domain.User, string, error) {
	if in.Email == "" || in.Password == "" {
		return nil, "", domain.Invalid("email and password are required", "")
	}

	email := normalizeEmail(in.Email)

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("login limiter unavailable, allowing attempt")
		} else if !allowed {
			return nil, "", domain.RateLimited("too many login attempts, try again later")
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", domain.Unauthorized(domain.MsgInvalidCredentials)
	}

	if !user.Active {
		return nil, "", domain.Unauthorized(domain.MsgAccountInactive)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, "", domain.Unauthorized(domain.MsgInvalidCredentials)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to reset login counter")
		}
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Int("user_id", user.ID).Msg("user authenticated")
	return user, token, nil
}

// generateToken signs an HS256 access token for the user. Returns an empty
// token when no secret is configured.
func (s *UserService) generateToken(user *domain.User) (string, error) {
	if s.jwtSecret == "" {
		return "", nil
	}
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"idRol": user.RoleID,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *UserService) record(event domain.AuditEvent) {
	if s.audit != nil {
		s.audit.Record(event)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
