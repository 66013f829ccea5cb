package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

type Message struct {
	Subject string
	Body    string
}

var signupTemplate = template.Must(template.New("signup").Parse(`
<h2>Welcome to FitFactory</h2>
<p>Hi <b>{{.Name}}</b>,</p>
<p>Your OTP is: <b>{{.Code}}</b></p>
<p>This OTP will expire in {{.Validity}}.</p>
`))

var resetTemplate = template.Must(template.New("reset").Parse(`
<h3>Password Reset Request</h3>
<p>Your OTP is: <b>{{.Code}}</b></p>
<p>This OTP will expire in {{.Validity}}.</p>
`))

type otpView struct {
	Name     string
	Code     string
	Validity string
}

// SignupOTP renders the registration email. validity must be the expiry the
// OTP ledger enforces so the message never disagrees with it.
func SignupOTP(name, code string, validity time.Duration) (Message, error) {
	body, err := render(signupTemplate, otpView{Name: name, Code: code, Validity: FormatValidity(validity)})
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: "Your FitFactory OTP Code", Body: body}, nil
}

func PasswordResetOTP(code string, validity time.Duration) (Message, error) {
	body, err := render(resetTemplate, otpView{Code: code, Validity: FormatValidity(validity)})
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: "Your Password Reset OTP", Body: body}, nil
}

func render(tmpl *template.Template, view otpView) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// FormatValidity renders d as "5 minutes", "1 minute" or "90 seconds".
func FormatValidity(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	seconds := int(d.Round(time.Second) / time.Second)
	if seconds == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%d seconds", seconds)
}
