package mail

import (
	"fmt"
	"html"
)

// WelcomeBody renders the signup welcome email.
func WelcomeBody(username string) (subject, body string) {
	name := html.EscapeString(username)
	body = fmt.Sprintf(`<h2>Welcome to BID IT, %s!</h2>
<p>Your campus marketplace account is ready. Start exploring to buy, sell,
and bid on the best items on campus.</p>`, name)
	return "Welcome to BID IT!", body
}

// PasswordResetBody renders the password reset email with its one-hour link.
func PasswordResetBody(username, resetLink string) (subject, body string) {
	name := html.EscapeString(username)
	link := html.EscapeString(resetLink)
	body = fmt.Sprintf(`<h2>Reset your BID IT password</h2>
<p>Hello %s,</p>
<p>You requested to reset your password. Click the link below or paste it into your browser:</p>
<p><a href="%s">%s</a></p>
<p>This link will expire in 1 hour. If you did not request a reset, please ignore this email.</p>`,
		name, link, link)
	return "Password Reset Request", body
}
