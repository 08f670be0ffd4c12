package services

import (
	"fmt"
	"html"
	"time"
)

const (
	adminSetupSubject = "Welcome to CEMVP - Admin Account Setup"
	mfaPinSubject     = "Your CEMVP MFA PIN"
)

// emailContent is a rendered message in both HTML and plain text
type emailContent struct {
	Subject string
	HTML    string
	Text    string
}

const emailStyles = `
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .button { display: inline-block; background-color: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .pin { font-size: 32px; font-weight: bold; letter-spacing: 6px; text-align: center; padding: 16px; background-color: #f1f3f5; border-radius: 4px; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }`

// validFor renders the remaining lifetime, e.g. "24 hours"
func validFor(expiresAt time.Time) string {
	d := time.Until(expiresAt).Round(time.Hour)
	switch {
	case d >= 2*time.Hour:
		return fmt.Sprintf("%d hours", int(d.Hours()))
	case d >= time.Hour:
		return "1 hour"
	default:
		return "less than an hour"
	}
}

func renderAdminSetupEmail(msg AdminSetupMessage) emailContent {
	greeting := "Hello"
	if msg.Name != "" {
		greeting = "Hello " + msg.Name
	}
	expiry := validFor(msg.ExpiresAt)
	link := html.EscapeString(msg.SetupURL)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>%s
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Admin Account Setup</h1>
        </div>
        <p>%s,</p>
        <p>An administrator account has been created for you. Two steps remain before you can use it.</p>
        <h3>Step 1: Set your password</h3>
        <p><a href="%s" class="button">Set Password</a></p>
        <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
        <h3>Step 2: Verify with your PIN</h3>
        <div class="pin">%s</div>
        <p>This PIN expires in %s.</p>
        <div class="footer">
            <p>If you did not expect this email, contact your administrator.</p>
        </div>
    </div>
</body>
</html>
`, emailStyles, html.EscapeString(greeting), link, link, msg.Pin, expiry)

	textBody := fmt.Sprintf(`Admin Account Setup

%s,

An administrator account has been created for you. Two steps remain before you can use it.

Step 1: Set your password
%s

Step 2: Verify with your PIN
%s

This PIN expires in %s.

If you did not expect this email, contact your administrator.
`, greeting, msg.SetupURL, msg.Pin, expiry)

	return emailContent{Subject: adminSetupSubject, HTML: htmlBody, Text: textBody}
}

func renderMFAPinEmail(pin string, expiresAt time.Time) emailContent {
	expiry := validFor(expiresAt)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>%s
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Your MFA PIN</h1>
        </div>
        <p>Use the PIN below to finish signing in.</p>
        <div class="pin">%s</div>
        <p>This PIN expires in %s. Requesting a new PIN replaces this one.</p>
        <div class="footer">
            <p>If you did not try to sign in, you can ignore this email.</p>
        </div>
    </div>
</body>
</html>
`, emailStyles, pin, expiry)

	textBody := fmt.Sprintf(`Your MFA PIN

Use the PIN below to finish signing in.

%s

This PIN expires in %s. Requesting a new PIN replaces this one.

If you did not try to sign in, you can ignore this email.
`, pin, expiry)

	return emailContent{Subject: mfaPinSubject, HTML: htmlBody, Text: textBody}
}
