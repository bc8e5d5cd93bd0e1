package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/backoffice/users-api/internal/core/domain"
	"github.com/backoffice/users-api/internal/core/ports"
)

type stubUserRepo struct {
	users  map[int]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.nextID++
	r.users[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int) (*domain.User, error) {
	return cloneUser(r.users[id]), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) Update(_ context.Context, id int, patch ports.UserPatch) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Active != nil {
		u.Active = *patch.Active
	}
	if patch.RoleID != nil {
		u.RoleID = *patch.RoleID
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int) (bool, error) {
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type stubLimiter struct {
	allow  bool
	resets int
}

func (l *stubLimiter) Allow(_ context.Context, _ string) (bool, error) { return l.allow, nil }
func (l *stubLimiter) Reset(_ context.Context, _ string) error        { l.resets++; return nil }

func newTestService(repo ports.UserRepository, opts Options) *UserService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	return NewUserService(repo, zerolog.Nop(), opts)
}

func TestUserService_Create_HashesPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{})

	user, err := svc.Create(context.Background(), ports.CreateUserInput{
		Name: "Ana", Email: "ana@test.com", Password: "secret1", RoleID: 2,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if !user.Active {
		t.Fatalf("expected active to default to true")
	}
}

func TestUserService_Create_NormalizesEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{})

	user, err := svc.Create(context.Background(), ports.CreateUserInput{
		Name: "  Ana  ", Email: "ANA@Test.com ", Password: "secret1", RoleID: 2,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.Email != "ana@test.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Name != "Ana" {
		t.Fatalf("expected trimmed name, got %q", user.Name)
	}
}

func TestUserService_Create_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{})
	ctx := context.Background()

	cases := []struct {
		name  string
		input ports.CreateUserInput
		field string
	}{
		{"missing name", ports.CreateUserInput{Email: "a@b.co", Password: "secret1"}, "name"},
		{"missing email", ports.CreateUserInput{Name: "Ana", Password: "secret1"}, "email"},
		{"bad email shape", ports.CreateUserInput{Name: "Ana", Email: "not-an-email", Password: "secret1"}, "email"},
		{"missing password", ports.CreateUserInput{Name: "Ana", Email: "a@b.co"}, "password"},
		{"short password", ports.CreateUserInput{Name: "Ana", Email: "a@b.co", Password: "abc"}, "password"},
	}

	for _, tc := range cases {
		_, err := svc.Create(ctx, tc.input)
		if !domain.IsKind(err, domain.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		var de *domain.Error
		if !errors.As(err, &de) || de.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %+v", tc.name, tc.field, de)
		}
	}
}

func TestUserService_Create_DuplicateEmailDiffersByCase(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, ports.CreateUserInput{Name: "Ana", Email: "ana@test.com", Password: "secret1", RoleID: 2}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(ctx, ports.CreateUserInput{Name: "Ana2", Email: " ANA@TEST.COM", Password: "secret2", RoleID: 2})
	if !domain.IsKind(err, domain.KindConflict) {
		t.Fatalf("expected conflict for case-variant duplicate, got %v", err)
	}
}

func TestUserService_GetByID_AbsenceIsNotAnError(t *testing.T) {
	svc := newTestService(newStubUserRepo(), Options{})

	user, err := svc.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("expected no error for absent id, got %v", err)
	}
	if user != nil {
		t.Fatalf("expected nil user, got %+v", user)
	}

	if _, err := svc.GetByID(context.Background(), 0); !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error for non-positive id, got %v", err)
	}
}

func TestUserService_Update_PartialLeavesOtherFieldsUntouched(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{})
	ctx := context.Background()

	created, err := svc.Create(ctx, ports.CreateUserInput{Name: "Ana", Email: "ana@test.com", Password: "secret1", RoleID: 2})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	hashBefore := repo.users[created.ID].PasswordHash

	inactive := false
	updated, err := svc.Update(ctx, created.ID, ports.UpdateUserInput{Active: &inactive})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Active {
		t.Fatalf("expected active=false")
	}
	if updated.Name != "Ana" || updated.Email != "ana@test.com" {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}
	if repo.users[created.ID].PasswordHash != hashBefore {
		t.Fatalf("partial update changed the password hash")
	}
}

func TestUserService_Update_EmailUniquenessAgainstOtherRows(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{})
	ctx := context.Background()

	a, _ := svc.Create(ctx, ports.CreateUserInput{Name: "Ana", Email: "ana@test.com", Password: "secret1", RoleID: 2})
	_, _ = svc.Create(ctx, ports.CreateUserInput{Name: "Bob", Email: "bob@test.com", Password: "secret1", RoleID: 2})

	taken := "bob@test.com"
	if _, err := svc.Update(ctx, a.ID, ports.UpdateUserInput{Email: &taken}); !domain.IsKind(err, domain.KindConflict) {
		t.Fatalf("expected conflict when taking another user's email, got %v", err)
	}

	// Re-submitting the user's own email is not a conflict.
	own := "ANA@test.com"
	if _, err := svc.Update(ctx, a.ID, ports.UpdateUserInput{Email: &own}); err != nil {
		t.Fatalf("expected own email to be accepted, got %v", err)
	}
}

func TestUserService_Update_RehashesPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{})
	ctx := context.Background()

	created, _ := svc.Create(ctx, ports.CreateUserInput{Name: "Ana", Email: "ana@test.com", Password: "secret1", RoleID: 2})

	newPass := "secret2"
	if _, err := svc.Update(ctx, created.ID, ports.UpdateUserInput{Password: &newPass}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	stored := repo.users[created.ID].PasswordHash
	if stored == newPass {
		t.Fatalf("expected re-hash, found plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(newPass)); err != nil {
		t.Fatalf("new hash does not verify: %v", err)
	}
}

func TestUserService_UpdateAndDelete_NotFound(t *testing.T) {
	svc := newTestService(newStubUserRepo(), Options{})
	ctx := context.Background()

	name := "Ana"
	if _, err := svc.Update(ctx, 999, ports.UpdateUserInput{Name: &name}); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not-found on update, got %v", err)
	}
	if err := svc.Delete(ctx, 999); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not-found on delete, got %v", err)
	}
}

func TestUserService_Delete_RemovesRow(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{})
	ctx := context.Background()

	created, _ := svc.Create(ctx, ports.CreateUserInput{Name: "Ana", Email: "ana@test.com", Password: "secret1", RoleID: 2})
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := repo.users[created.ID]; ok {
		t.Fatalf("expected row to be removed")
	}
}

func TestUserService_Authenticate_IndistinguishableFailures(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{})
	ctx := context.Background()

	_, _ = svc.Create(ctx, ports.CreateUserInput{Name: "Ana", Email: "ana@test.com", Password: "secret1", RoleID: 2})

	_, _, errWrongPass := svc.Authenticate(ctx, ports.LoginInput{Email: "ana@test.com", Password: "wrong"})
	_, _, errNoUser := svc.Authenticate(ctx, ports.LoginInput{Email: "ghost@test.com", Password: "secret1"})

	if !domain.IsKind(errWrongPass, domain.KindUnauthorized) || !domain.IsKind(errNoUser, domain.KindUnauthorized) {
		t.Fatalf("expected unauthorized for both, got %v / %v", errWrongPass, errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Fatalf("failure messages must not distinguish the cases: %q vs %q", errWrongPass, errNoUser)
	}
}

func TestUserService_Authenticate_InactiveAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{})
	ctx := context.Background()

	inactive := false
	_, _ = svc.Create(ctx, ports.CreateUserInput{Name: "Ana", Email: "ana@test.com", Password: "secret1", Active: &inactive, RoleID: 2})

	_, _, err := svc.Authenticate(ctx, ports.LoginInput{Email: "ana@test.com", Password: "secret1"})
	if !domain.IsKind(err, domain.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err.Error() == "invalid credentials" {
		t.Fatalf("inactive account must be a distinct outcome")
	}
}

func TestUserService_Authenticate_Success(t *testing.T) {
	repo := newStubUserRepo()
	limiter := &stubLimiter{allow: true}
	svc := newTestService(repo, Options{JWTSecret: "secret", Limiter: limiter})
	ctx := context.Background()

	_, _ = svc.Create(ctx, ports.CreateUserInput{Name: "Ana", Email: "ana@test.com", Password: "secret1", RoleID: 2})

	user, token, err := svc.Authenticate(ctx, ports.LoginInput{Email: " ANA@test.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user == nil || user.Email != "ana@test.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	if limiter.resets != 1 {
		t.Fatalf("expected limiter reset on success, got %d", limiter.resets)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["email"] != "ana@test.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestUserService_Authenticate_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestService(repo, Options{Limiter: &stubLimiter{allow: false}})

	_, _, err := svc.Authenticate(context.Background(), ports.LoginInput{Email: "ana@test.com", Password: "secret1"})
	if !domain.IsKind(err, domain.KindRateLimit) {
		t.Fatalf("expected rate-limit error, got %v", err)
	}
}

func TestUserService_Authenticate_MissingFields(t *testing.T) {
	svc := newTestService(newStubUserRepo(), Options{})

	_, _, err := svc.Authenticate(context.Background(), ports.LoginInput{Email: "ana@test.com"})
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
