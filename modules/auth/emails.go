package auth

import (
	"fmt"
	"html"
	"strings"

	"github.com/dmitrymomot/credkit/pkg/email"
)

// verificationEmail builds the account-activation message. The link embeds
// the raw signed token; the path shape is part of the public contract with
// the frontend.
func verificationEmail(cfg Config, name, sendTo, token string) email.SendEmailParams {
	link := strings.TrimSuffix(cfg.AppURL, "/") + "/verify-email/" + token

	body := fmt.Sprintf(`<h2>Welcome to %s, %s!</h2>
<p>Please confirm your email address to activate your account.</p>
<p><a href="%s">Verify my email</a></p>
<p>This link expires in one hour. If you did not sign up, you can safely ignore this email.</p>`,
		html.EscapeString(cfg.AppName), html.EscapeString(name), link)

	return email.SendEmailParams{
		SendTo:   sendTo,
		Subject:  fmt.Sprintf("Verify your %s email", cfg.AppName),
		BodyHTML: body,
		Tag:      "email-verification",
	}
}

// passwordResetEmail builds the password-recovery message.
func passwordResetEmail(cfg Config, name, sendTo, token string) email.SendEmailParams {
	link := strings.TrimSuffix(cfg.AppURL, "/") + "/reset-password/" + token

	body := fmt.Sprintf(`<h2>Hi %s,</h2>
<p>We received a request to reset your %s password.</p>
<p><a href="%s">Reset my password</a></p>
<p>This link expires in one hour. If you did not request a reset, your password is still safe and no action is needed.</p>`,
		html.EscapeString(name), html.EscapeString(cfg.AppName), link)

	return email.SendEmailParams{
		SendTo:   sendTo,
		Subject:  fmt.Sprintf("Reset your %s password", cfg.AppName),
		BodyHTML: body,
		Tag:      "password-reset",
	}
}
