package mail

import (
	"strings"
	"testing"
)

func TestWelcomeBody(t *testing.T) {
	subject, body := WelcomeBody("jadesola")
	if subject == "" {
		t.Error("expected a subject")
	}
	if !strings.Contains(body, "jadesola") {
		t.Error("expected body to greet the user by name")
	}
}

func TestPasswordResetBody(t *testing.T) {
	link := "http://localhost:3000/reset-password/tok-123"
	subject, body := PasswordResetBody("jadesola", link)
	if subject == "" {
		t.Error("expected a subject")
	}
	if !strings.Contains(body, link) {
		t.Error("expected body to carry the reset link")
	}
}

func TestBodiesEscapeHTML(t *testing.T) {
	_, body := WelcomeBody(`<script>alert("x")</script>`)
	if strings.Contains(body, "<script>") {
		t.Error("expected username to be HTML-escaped")
	}
}
