package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tasknest/internal/config"
)

func newServiceForTests(t *testing.T) *Service {
	t.Helper()
	repo, err := NewFileRepo(t.TempDir())
	if err != nil {
		t.Fatalf("new auth repo: %v", err)
	}
	cfg := config.Auth{
		CookieName:      "tasknest_session",
		SessionTTLHours: 168,
		OTPTTLMinutes:   10,
		OTPMaxAttempts:  5,
	}
	return NewService(repo, zerolog.New(io.Discard), cfg)
}

func sessionCookie(name, token string) *http.Cookie {
	return &http.Cookie{Name: name, Value: token}
}

func TestService_OTPLoginFlow(t *testing.T) {
	svc := newServiceForTests(t)
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	_, code, err := svc.RequestOTP("Tester@Example.com", now)
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}

	u, token, exp, err := svc.VerifyOTP("tester@example.com", code, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	if u.Email != "tester@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !exp.After(now) {
		t.Fatalf("session should expire in the future, got %v", exp)
	}

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.AddCookie(sessionCookie(svc.cookieName, token))
	got, ok := svc.AuthenticateRequest(req, now.Add(2*time.Minute))
	if !ok || got.ID != u.ID {
		t.Fatalf("expected authenticated user %s, got %+v ok=%v", u.ID, got, ok)
	}
}

func TestService_VerifyOTP_TooManyAttempts(t *testing.T) {
	svc := newServiceForTests(t)
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	if _, _, err := svc.RequestOTP("tester@example.com", now); err != nil {
		t.Fatalf("request otp: %v", err)
	}

	for i := 0; i < svc.maxOTPAttempts-1; i++ {
		if _, _, _, err := svc.VerifyOTP("tester@example.com", "000000", now.Add(30*time.Second)); err != ErrInvalidOTP {
			t.Fatalf("attempt %d expected ErrInvalidOTP, got %v", i+1, err)
		}
	}
	if _, _, _, err := svc.VerifyOTP("tester@example.com", "000000", now.Add(45*time.Second)); err != ErrTooManyOTPAttempts {
		t.Fatalf("final attempt expected ErrTooManyOTPAttempts, got %v", err)
	}
}

func TestService_VerifyOTP_Expired(t *testing.T) {
	svc := newServiceForTests(t)
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	_, code, err := svc.RequestOTP("late@example.com", now)
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if _, _, _, err := svc.VerifyOTP("late@example.com", code, now.Add(svc.otpTTL+time.Second)); err != ErrOTPExpired {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestService_ExpiredSessionIsRejectedAndDropped(t *testing.T) {
	svc := newServiceForTests(t)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	_, code, err := svc.RequestOTP("expired@example.com", now)
	if err != nil {
		t.Fatalf("request otp: %v", err)
	}
	_, token, exp, err := svc.VerifyOTP("expired@example.com", code, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/auth/session", nil)
	req.AddCookie(sessionCookie(svc.cookieName, token))

	if _, ok := svc.AuthenticateRequest(req, exp.Add(time.Second)); ok {
		t.Fatalf("expected expired session to be rejected")
	}
	if _, ok := svc.repo.GetSessionByTokenHash(hashToken(token)); ok {
		t.Fatalf("expected expired session to be removed from repo")
	}
}

func TestService_SameEmailKeepsSameUserID(t *testing.T) {
	svc := newServiceForTests(t)
	now := time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC)

	login := func(at time.Time) User {
		t.Helper()
		_, code, err := svc.RequestOTP("stable@example.com", at)
		if err != nil {
			t.Fatalf("request otp: %v", err)
		}
		u, _, _, err := svc.VerifyOTP("stable@example.com", code, at.Add(time.Second))
		if err != nil {
			t.Fatalf("verify otp: %v", err)
		}
		return u
	}

	first := login(now)
	second := login(now.Add(time.Hour))
	if first.ID != second.ID {
		t.Fatalf("expected stable user id, got %s then %s", first.ID, second.ID)
	}
}
