package user

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"

	"github.com/trezcool/darasa/core"
)

var (
	passwordResetTextTmpl = texttmpl.Must(texttmpl.New("pwdResetText").Parse(`Hello {{ .FullName }},

We received a request to reset your password for your {{ .AppName }} account.

Click the link below to reset your password:
{{ .ResetLink }}

This link will expire in {{ .Timeout }}.

If you did not request this password reset, please ignore this email.

Best regards,
The {{ .AppName }} Team`))

	passwordResetHTMLTmpl = htmltmpl.Must(htmltmpl.New("pwdResetHTML").Parse(`<p>Hello <strong>{{ .FullName }}</strong>,</p>
<p>We received a request to reset your password for your {{ .AppName }} account.
Click the link below to create a new password.</p>
<p><a href="{{ .ResetLink }}">Reset Password</a></p>
<p>Or copy and paste this link in your browser:<br>{{ .ResetLink }}</p>
<p>This password reset link will expire in {{ .Timeout }}.</p>
<p>If you didn't request a password reset, you can safely ignore this email.
Your password will remain unchanged.</p>`))
)

type passwordResetMailContext struct {
	FullName  string
	AppName   string
	ResetLink string
	Timeout   string
}

// sendPasswordResetMail emails a single-use reset link in "uid:token" form.
// Delivery failures are the email service's to log; the caller never sees them.
func (svc *service) sendPasswordResetMail(usr User) {
	token := fmt.Sprintf("%s:%s", EncodeUID(usr), makeToken(usr))
	data := passwordResetMailContext{
		FullName:  usr.FullName,
		AppName:   core.Conf.AppName,
		ResetLink: fmt.Sprintf("%s/reset-password?token=%s", core.Conf.FrontendBaseURL, token),
		Timeout:   passwordResetTimeoutDelta.String(),
	}

	var text, html bytes.Buffer
	if err := passwordResetTextTmpl.Execute(&text, data); err != nil {
		svc.logger.Error(fmt.Sprintf("rendering password reset email: %v", err), err)
		return
	}
	if err := passwordResetHTMLTmpl.Execute(&html, data); err != nil {
		svc.logger.Error(fmt.Sprintf("rendering password reset email: %v", err), err)
		return
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject:     "Password Reset Request",
		TextContent: text.String(),
		HTMLContent: html.String(),
	})
}
