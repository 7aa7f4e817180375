package email

import (
	"strings"
	"testing"
)

func TestServiceIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name:     "empty config",
			config:   Config{},
			expected: false,
		},
		{
			name: "missing host",
			config: Config{
				Port: "587",
				From: "test@example.com",
			},
			expected: false,
		},
		{
			name: "missing from",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
			},
			expected: false,
		},
		{
			name: "fully configured",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
				From: "test@example.com",
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.config)
			if svc.IsConfigured() != tt.expected {
				t.Errorf("IsConfigured() = %v, want %v", svc.IsConfigured(), tt.expected)
			}
		})
	}
}

func TestSendEmailFailsWhenUnconfigured(t *testing.T) {
	svc := NewService(Config{})
	if err := svc.SendEmail([]string{"a@example.com"}, "subject", "body"); err == nil {
		t.Error("expected SendEmail to fail without SMTP settings")
	}
}

func TestRenderVerificationTemplate(t *testing.T) {
	html, err := renderTemplate(verificationEmailTemplate, VerificationData{
		AppName:         "Ideaforge",
		UserName:        "Avery",
		VerificationURL: "https://example.com/verify-email?token=abc123",
	})
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}
	for _, want := range []string{"Ideaforge", "Avery", "https://example.com/verify-email?token=abc123"} {
		if !strings.Contains(html, want) {
			t.Errorf("verification template missing %q", want)
		}
	}
}

func TestRenderPasswordResetTemplate(t *testing.T) {
	html, err := renderTemplate(passwordResetEmailTemplate, PasswordResetData{
		AppName:  "Ideaforge",
		UserName: "Avery",
		ResetURL: "https://example.com/reset-password?token=xyz789",
	})
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}
	for _, want := range []string{"Ideaforge", "https://example.com/reset-password?token=xyz789"} {
		if !strings.Contains(html, want) {
			t.Errorf("reset template missing %q", want)
		}
	}
}

func TestSenderIncludesFromName(t *testing.T) {
	svc := NewService(Config{From: "mail@example.com", FromName: "Ideaforge"})
	if got := svc.sender(); got != "Ideaforge <mail@example.com>" {
		t.Errorf("sender() = %q", got)
	}
	svc = NewService(Config{From: "mail@example.com"})
	if got := svc.sender(); got != "mail@example.com" {
		t.Errorf("sender() = %q", got)
	}
}
