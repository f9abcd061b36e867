package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, userID string) (*User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.ResetToken = &token
	user.ResetTokenExpiresAt = &expiresAt
	return nil
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(userID string) (string, error) {
	return "token-" + userID, nil
}

func newTestService(repo Repository) *Service {
	service := NewService(repo, fakeIssuer{}, time.Hour)
	service.cost = bcrypt.MinCost
	return service
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	service := newTestService(repo)

	registered, err := service.Register(context.Background(), RegisterInput{Name: " Ann ", Email: "Ann@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.User.Email != "ann@example.com" || registered.User.Name != "Ann" {
		t.Fatalf("unexpected user: %+v", registered.User)
	}
	if registered.Token != "token-"+registered.User.ID {
		t.Fatalf("unexpected token %q", registered.Token)
	}

	stored := repo.users[registered.User.ID]
	if stored.PasswordHash == "secret1" {
		t.Fatalf("password stored in clear text")
	}

	loggedIn, err := service.Login(context.Background(), LoginInput{Email: "ann@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.User.ID != registered.User.ID {
		t.Fatalf("expected same user id")
	}
}

func TestRegisterValidation(t *testing.T) {
	service := newTestService(newFakeUserRepo())

	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"missing name", RegisterInput{Email: "a@b.co", Password: "secret1"}, ErrNameRequired},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}, ErrInvalidEmail},
		{"empty email", RegisterInput{Name: "A", Email: " ", Password: "secret1"}, ErrInvalidEmail},
		{"short password", RegisterInput{Name: "A", Email: "a@b.co", Password: "12345"}, ErrPasswordTooShort},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Register(context.Background(), tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := newTestService(newFakeUserRepo())

	if _, err := service.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := service.Register(context.Background(), RegisterInput{Name: "B", Email: "A@B.CO", Password: "secret2"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	service := newTestService(newFakeUserRepo())
	if _, err := service.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := service.Login(context.Background(), LoginInput{Email: "a@b.co", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := service.Login(context.Background(), LoginInput{Email: "nobody@b.co", Password: "secret1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRequestPasswordReset(t *testing.T) {
	repo := newFakeUserRepo()
	service := newTestService(repo)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	registered, err := service.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := service.RequestPasswordReset(context.Background(), "a@b.co")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if token == "" {
		t.Fatalf("expected reset token")
	}

	stored := repo.users[registered.User.ID]
	if stored.ResetToken == nil || *stored.ResetToken != token {
		t.Fatalf("expected reset token to be stored")
	}
	if !stored.ResetTokenExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry in one hour, got %v", stored.ResetTokenExpiresAt)
	}

	if _, err := service.RequestPasswordReset(context.Background(), "nobody@b.co"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
