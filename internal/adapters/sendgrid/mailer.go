package sendgrid

import (
    "context"
    "fmt"
    "html"
    "strings"

    "github.com/sendgrid/rest"
    sg "github.com/sendgrid/sendgrid-go"
    "github.com/sendgrid/sendgrid-go/helpers/mail"

    "nrp/internal/notify"
)

const defaultHost = "https://api.sendgrid.com"

// Mailer delivers rendered notifications as SendGrid v3 mail.
type Mailer struct {
    client   *sg.Client
    fromName string
    from     string
}

func New(apiKey, fromName, fromEmail string) *Mailer {
    return NewWithHost(apiKey, fromName, fromEmail, defaultHost)
}

// NewWithHost targets an alternative API host.
func NewWithHost(apiKey, fromName, fromEmail, host string) *Mailer {
    req := sg.GetRequest(apiKey, "/v3/mail/send", host)
    req.Method = rest.Post
    return &Mailer{client: &sg.Client{Request: req}, fromName: fromName, from: fromEmail}
}

func (m *Mailer) Deliver(ctx context.Context, msg notify.Rendered) error {
    message := mail.NewV3Mail()
    message.SetFrom(mail.NewEmail(m.fromName, m.from))
    message.Subject = msg.Subject

    p := mail.NewPersonalization()
    p.AddTos(mail.NewEmail(msg.To, msg.To))
    message.AddPersonalizations(p)

    message.AddContent(mail.NewContent("text/plain", msg.Body))
    message.AddContent(mail.NewContent("text/html", toHTML(msg.Body)))
    if msg.Template != "" {
        message.AddCategories(msg.Template)
    }

    resp, err := m.client.SendWithContext(ctx, message)
    if err != nil {
        return fmt.Errorf("sendgrid send: %w", err)
    }
    if resp.StatusCode >= 300 {
        return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
    }
    return nil
}

func toHTML(body string) string {
    var b strings.Builder
    for _, para := range strings.Split(strings.TrimSpace(body), "\n\n") {
        b.WriteString("<p>")
        b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
        b.WriteString("</p>")
    }
    return b.String()
}

var _ notify.Transport = (*Mailer)(nil)
