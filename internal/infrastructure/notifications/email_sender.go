package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

var leadEmailTemplate = template.Must(template.New("lead").Parse(`<h2>Nuevo lead desde la web</h2>
<table>
<tr><td><strong>Nombre</strong></td><td>{{.FullName}}</td></tr>
<tr><td><strong>Teléfono</strong></td><td>{{.Phone}}</td></tr>
<tr><td><strong>Email</strong></td><td>{{if .Email}}{{.Email}}{{else}}N/A{{end}}</td></tr>
<tr><td><strong>Código postal</strong></td><td>{{if .ZipCode}}{{.ZipCode}}{{else}}N/A{{end}}</td></tr>
{{- if .BirthDates}}
<tr><td><strong>Fechas de nacimiento</strong></td><td>{{range $i, $d := .BirthDates}}{{if $i}}, {{end}}{{$d}}{{end}}</td></tr>
{{- end}}
<tr><td><strong>Recibido</strong></td><td>{{.CreatedAt.Format "02/01/2006 15:04"}}</td></tr>
</table>
`))

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender mails each lead to the sales inbox over SMTP
type EmailSender struct {
	addr     string
	auth     smtp.Auth
	from     string
	to       []string
	sendMail sendMailFunc
}

// NewEmailSender creates a new SMTP sender; auth is skipped when user is empty
func NewEmailSender(host string, port int, user, password, from string, to []string) (*EmailSender, error) {
	if host == "" || len(to) == 0 {
		return nil, fmt.Errorf("SMTP_HOST and LEAD_EMAIL_TO must be set")
	}
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &EmailSender{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		auth:     auth,
		from:     from,
		to:       to,
		sendMail: smtp.SendMail,
	}, nil
}

// Channel implements LeadNotifier
func (s *EmailSender) Channel() string { return "email" }

// NotifyLead implements LeadNotifier
func (s *EmailSender) NotifyLead(ctx context.Context, lead *entities.Lead) error {
	msg, err := s.render(lead)
	if err != nil {
		return err
	}

	// net/smtp has no context support; bound the wait instead.
	done := make(chan error, 1)
	go func() { done <- s.sendMail(s.addr, s.auth, s.from, s.to, msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send lead email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lead email aborted: %w", ctx.Err())
	}
}

func (s *EmailSender) render(lead *entities.Lead) ([]byte, error) {
	view := *lead
	if view.CreatedAt.IsZero() {
		view.CreatedAt = time.Now()
	}

	var body bytes.Buffer
	if err := leadEmailTemplate.Execute(&body, view); err != nil {
		return nil, fmt.Errorf("failed to render lead email: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(s.to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", "Nuevo Lead Web: "+lead.FullName))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
