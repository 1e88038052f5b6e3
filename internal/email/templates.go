package email

import (
	"bytes"
	"html/template"
)

// Subjects for the two transactional emails.
const (
	VerificationSubject = "Welcome to DevLinks! Confirm Your Email Address"
	ResetSubject        = "DevLinks - Reset Password (Expires in 10 Minutes)"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`
<div style="background-color: #fafafa; padding: 20px; border-radius: 10px;">
  <h1 style="color: #633cff; margin-bottom: 20px;">Welcome aboard!</h1>
  <p style="color: #737373; margin-bottom: 15px;">Greetings from DevLinks! We're thrilled to have you join our community.</p>
  <p style="color: #737373; margin-bottom: 15px;">To complete your registration and unlock all the amazing features, please click the button below to verify your email address:</p>
  <p style="text-align: center; margin-bottom: 20px;"><a href="{{.Link}}" style="background-color: #633cff; color: #fafafa; padding: 10px 20px; border-radius: 5px; text-decoration: none;">Verify Email Address</a></p>
  <p style="color: #737373; margin-bottom: 15px;">Alternatively, you can copy and paste the following link into your browser:</p>
  <p style="color: #737373; margin-bottom: 15px;"><em>{{.Link}}</em></p>
  <p style="color: #737373; font-weight: bold;">If you didn't sign up for DevLinks, no worries! Simply ignore this email.</p>
</div>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<div style="background-color: #fafafa; padding: 20px; border-radius: 10px;">
  <h1 style="color: #633cff; margin-bottom: 20px;">Hello there!</h1>
  <p style="color: #737373; margin-bottom: 15px;">You are receiving this email because you (or someone else) has requested to reset the password for your account.</p>
  <p style="color: #737373; margin-bottom: 15px;">To proceed with the password reset process, please click on the button below:</p>
  <p style="text-align: center; margin-bottom: 20px;"><a href="{{.Link}}" style="background-color: #633cff; color: #fafafa; padding: 10px 20px; border-radius: 5px; text-decoration: none;">Reset Password</a></p>
  <p style="color: #737373; margin-bottom: 15px;">Alternatively, you can copy and paste the following link into your browser:</p>
  <p style="color: #737373; margin-bottom: 15px;"><em>{{.Link}}</em></p>
  <p style="color: #737373; margin-bottom: 15px;">If you did not initiate this request, please disregard this email. Your account's password will remain unchanged.</p>
  <p style="color: #737373; margin-bottom: 15px;">Please note that this link expires in 10 minutes for security purposes.</p>
</div>
`))

// VerificationBody renders the email containing the verification link.
func VerificationBody(link string) (string, error) {
	return render(verificationTmpl, link)
}

// ResetBody renders the email containing the password reset link.
func ResetBody(link string) (string, error) {
	return render(resetTmpl, link)
}

func render(tmpl *template.Template, link string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Link string }{Link: link}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
