package authpw

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ideaforge/api/internal/store"
)

type fakeUserStore struct {
	users         map[string]store.User
	emailIndex    map[string]string
	verifications map[string]store.User
	resets        map[string]struct {
		userID    string
		expiresAt time.Time
		used      bool
	}
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:         make(map[string]store.User),
		emailIndex:    make(map[string]string),
		verifications: make(map[string]store.User),
		resets: make(map[string]struct {
			userID    string
			expiresAt time.Time
			used      bool
		}),
	}
}

func (m *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	if userID, ok := m.emailIndex[email]; ok {
		return m.users[userID], nil
	}
	return store.User{}, errors.New("user not found")
}

func (m *fakeUserStore) GetUserByID(ctx context.Context, id string) (store.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return store.User{}, errors.New("user not found")
}

func (m *fakeUserStore) CreateUser(ctx context.Context, user store.User) error {
	m.users[user.ID] = user
	m.emailIndex[user.Email] = user.ID
	return nil
}

func (m *fakeUserStore) UpdateUserVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	if user, ok := m.users[userID]; ok {
		user.VerificationToken = token
		user.VerificationExpiresAt = &expiresAt
		m.users[userID] = user
		m.verifications[token] = user
	}
	return nil
}

func (m *fakeUserStore) VerifyUserEmail(ctx context.Context, token string) error {
	if user, ok := m.verifications[token]; ok {
		user.IsEmailVerified = true
		m.users[user.ID] = user
		delete(m.verifications, token)
		return nil
	}
	return errors.New("invalid token")
}

func (m *fakeUserStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	if user, ok := m.users[userID]; ok {
		user.PasswordHash = passwordHash
		m.users[userID] = user
		return nil
	}
	return errors.New("user not found")
}

func (m *fakeUserStore) CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error {
	m.resets[token] = struct {
		userID    string
		expiresAt time.Time
		used      bool
	}{userID: userID, expiresAt: expiresAt}
	return nil
}

func (m *fakeUserStore) GetPasswordReset(ctx context.Context, token string) (string, error) {
	if reset, ok := m.resets[token]; ok && !reset.used && time.Now().Before(reset.expiresAt) {
		return reset.userID, nil
	}
	return "", errors.New("invalid or expired token")
}

func (m *fakeUserStore) MarkPasswordResetUsed(ctx context.Context, token string) error {
	if reset, ok := m.resets[token]; ok {
		reset.used = true
		m.resets[token] = reset
	}
	return nil
}

func TestSignUpCreatesUnverifiedAccount(t *testing.T) {
	fake := newFakeUserStore()
	svc := NewService(fake)

	resp, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:       "avery@example.com",
		Password:    "password123",
		DisplayName: "Avery",
	})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if resp.UserID == "" || resp.VerificationToken == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}
	if !resp.RequiresEmailVerify {
		t.Fatal("expected RequiresEmailVerify")
	}

	user := fake.users[resp.UserID]
	if user.IsEmailVerified {
		t.Fatal("new account should be unverified")
	}
	if user.PasswordHash == "password123" {
		t.Fatal("password stored in plain text")
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	fake := newFakeUserStore()
	svc := NewService(fake)

	if _, err := svc.SignUp(context.Background(), SignUpRequest{Email: "a@example.com", Password: "password123", DisplayName: "A"}); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if _, err := svc.SignUp(context.Background(), SignUpRequest{Email: "a@example.com", Password: "password123", DisplayName: "B"}); err == nil {
		t.Fatal("expected duplicate email to be rejected")
	}
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	svc := NewService(newFakeUserStore())
	if _, err := svc.SignUp(context.Background(), SignUpRequest{Email: "a@example.com", Password: "short", DisplayName: "A"}); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestSignInChecksPasswordBeforeVerification(t *testing.T) {
	fake := newFakeUserStore()
	svc := NewService(fake)

	resp, err := svc.SignUp(context.Background(), SignUpRequest{Email: "a@example.com", Password: "password123", DisplayName: "A"})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	// Wrong password on an unverified account must not reveal verify status.
	if _, err := svc.SignIn(context.Background(), SignInRequest{Email: "a@example.com", Password: "wrongwrong"}); err == nil {
		t.Fatal("expected wrong password to be rejected")
	}

	signIn, err := svc.SignIn(context.Background(), SignInRequest{Email: "a@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if !signIn.RequiresVerify {
		t.Fatal("unverified account should require verification")
	}

	if err := svc.VerifyEmail(context.Background(), resp.VerificationToken); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	signIn, err = svc.SignIn(context.Background(), SignInRequest{Email: "a@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("SignIn() after verify error = %v", err)
	}
	if signIn.RequiresVerify {
		t.Fatal("verified account should not require verification")
	}
}

func TestVerifyEmailRejectsUnknownToken(t *testing.T) {
	svc := NewService(newFakeUserStore())
	if err := svc.VerifyEmail(context.Background(), "nope"); err == nil {
		t.Fatal("expected unknown token to be rejected")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	fake := newFakeUserStore()
	svc := NewService(fake)

	resp, err := svc.SignUp(context.Background(), SignUpRequest{Email: "a@example.com", Password: "password123", DisplayName: "A"})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	token, err := svc.RequestPasswordReset(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected a reset token")
	}

	if err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: token, NewPassword: "newpassword1"}); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	user := fake.users[resp.UserID]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpassword1")); err != nil {
		t.Fatal("new password does not match stored hash")
	}

	// A used token must not work twice.
	if err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Token: token, NewPassword: "anotherpass1"}); err == nil {
		t.Fatal("expected used token to be rejected")
	}
}

func TestRequestPasswordResetHidesUnknownEmail(t *testing.T) {
	svc := NewService(newFakeUserStore())
	token, err := svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	if token != "" {
		t.Fatal("unknown email should yield an empty token")
	}
}
