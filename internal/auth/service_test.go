package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/supabase"
)

// --- モック ---

type mockIdP struct {
	signUpFn  func(ctx context.Context, email, password string) (*supabase.AuthResult, error)
	signInFn  func(ctx context.Context, email, password string) (*supabase.AuthResult, error)
	signOutFn func(ctx context.Context, accessToken string) error
}

func (m *mockIdP) SignUp(ctx context.Context, email, password string) (*supabase.AuthResult, error) {
	return m.signUpFn(ctx, email, password)
}
func (m *mockIdP) SignIn(ctx context.Context, email, password string) (*supabase.AuthResult, error) {
	return m.signInFn(ctx, email, password)
}
func (m *mockIdP) SignOut(ctx context.Context, accessToken string) error {
	return m.signOutFn(ctx, accessToken)
}

type mockProfiles struct {
	createFn func(ctx context.Context, userID, email string) error
	calls    int
}

func (m *mockProfiles) CreateProfile(ctx context.Context, userID, email string) error {
	m.calls++
	if m.createFn != nil {
		return m.createFn(ctx, userID, email)
	}
	return nil
}

func assertAPIError(t *testing.T, err error, code, message string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %q, want %q", apiErr.Code, code)
	}
	if message != "" && apiErr.Message != message {
		t.Errorf("Message = %q, want %q", apiErr.Message, message)
	}
}

// --- テスト ---

func TestService_SignUp_CreatesProfile(t *testing.T) {
	var profileID, profileEmail string
	profiles := &mockProfiles{createFn: func(ctx context.Context, userID, email string) error {
		profileID, profileEmail = userID, email
		return nil
	}}
	idp := &mockIdP{signUpFn: func(ctx context.Context, email, password string) (*supabase.AuthResult, error) {
		return &supabase.AuthResult{User: &supabase.AuthUser{ID: "u-1", Email: email}}, nil
	}}

	result, err := NewService(idp, profiles).SignUp(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if result.User.ID != "u-1" {
		t.Errorf("User.ID = %q", result.User.ID)
	}
	if profileID != "u-1" || profileEmail != "a@example.com" {
		t.Errorf("CreateProfile(%q, %q)", profileID, profileEmail)
	}
}

func TestService_SignUp_ProfileFailureIsNotFatal(t *testing.T) {
	profiles := &mockProfiles{createFn: func(ctx context.Context, userID, email string) error {
		return errors.New("db down")
	}}
	idp := &mockIdP{signUpFn: func(ctx context.Context, email, password string) (*supabase.AuthResult, error) {
		return &supabase.AuthResult{User: &supabase.AuthUser{ID: "u-1"}}, nil
	}}

	if _, err := NewService(idp, profiles).SignUp(context.Background(), "a@example.com", "pw"); err != nil {
		t.Errorf("SignUp err = %v, want nil", err)
	}
}

func TestService_SignUp_ProviderError(t *testing.T) {
	profiles := &mockProfiles{}
	idp := &mockIdP{signUpFn: func(ctx context.Context, email, password string) (*supabase.AuthResult, error) {
		return nil, &supabase.Error{StatusCode: 422, Message: "User already registered"}
	}}

	_, err := NewService(idp, profiles).SignUp(context.Background(), "a@example.com", "pw")
	assertAPIError(t, err, model.ErrCodeSignUpFailed, "User already registered")
	if profiles.calls != 0 {
		t.Error("profile should not be created when sign-up fails")
	}
}

func TestService_SignUp_NoUser(t *testing.T) {
	idp := &mockIdP{signUpFn: func(ctx context.Context, email, password string) (*supabase.AuthResult, error) {
		return &supabase.AuthResult{}, nil
	}}

	_, err := NewService(idp, &mockProfiles{}).SignUp(context.Background(), "a@example.com", "pw")
	assertAPIError(t, err, model.ErrCodeSignUpFailed, "Failed to create user")
}

func TestService_SignIn(t *testing.T) {
	tests := []struct {
		name     string
		result   *supabase.AuthResult
		err      error
		wantCode string
		wantMsg  string
	}{
		{
			name:   "success",
			result: &supabase.AuthResult{User: &supabase.AuthUser{ID: "u-1"}, Session: &supabase.Session{AccessToken: "tok"}},
		},
		{
			name:     "bad password",
			err:      &supabase.Error{StatusCode: 400, Message: "Invalid login credentials"},
			wantCode: model.ErrCodeInvalidCredentials,
			wantMsg:  "Invalid login credentials",
		},
		{
			name:     "transport error",
			err:      errors.New("dial tcp: timeout"),
			wantCode: model.ErrCodeInvalidCredentials,
			wantMsg:  "dial tcp: timeout",
		},
		{
			name:     "missing session",
			result:   &supabase.AuthResult{User: &supabase.AuthUser{ID: "u-1"}},
			wantCode: model.ErrCodeInvalidCredentials,
			wantMsg:  "Invalid credentials",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idp := &mockIdP{signInFn: func(ctx context.Context, email, password string) (*supabase.AuthResult, error) {
				return tt.result, tt.err
			}}
			result, err := NewService(idp, &mockProfiles{}).SignIn(context.Background(), "a@example.com", "pw")
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("SignIn: %v", err)
				}
				if result.Session.AccessToken != "tok" {
					t.Errorf("AccessToken = %q", result.Session.AccessToken)
				}
				return
			}
			assertAPIError(t, err, tt.wantCode, tt.wantMsg)
		})
	}
}

func TestService_SignOut(t *testing.T) {
	var forwarded string
	idp := &mockIdP{signOutFn: func(ctx context.Context, accessToken string) error {
		forwarded = accessToken
		if accessToken == "expired" {
			return &supabase.Error{StatusCode: 401, Message: "invalid JWT"}
		}
		return nil
	}}
	svc := NewService(idp, &mockProfiles{})

	if err := svc.SignOut(context.Background(), "tok"); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if forwarded != "tok" {
		t.Errorf("forwarded token = %q, want tok", forwarded)
	}

	forwarded = "untouched"
	if err := svc.SignOut(context.Background(), ""); err != nil {
		t.Errorf("SignOut without token err = %v, want nil", err)
	}
	if forwarded != "untouched" {
		t.Error("IdP should not be called without a token")
	}

	err := svc.SignOut(context.Background(), "expired")
	assertAPIError(t, err, model.ErrCodeSignOutFailed, "invalid JWT")
}
