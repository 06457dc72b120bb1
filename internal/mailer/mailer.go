package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/wneessen/go-mail"
)

var ErrMissingRecipient = errors.New("recipient e-mail is required")

const defaultGreetingName = "Engenheiro"

const welcomeSubject = "Bem-vindo ao TechPost! 🚀"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`Olá, {{.Name}}!

Meu nome é Nicholas, sou o criador do TechPost IA. Vi que você acabou de criar sua conta e queria dar as boas-vindas pessoalmente.

Criei essa ferramenta porque sei como muitas vezes pode ser difícil transformar projetos de trabalho em textos para construir autoridade, principalmente em redes sociais como o LinkedIn.

O TechPost está em fase de desenvolvimento e eu adoraria saber o que você achou do seu primeiro post gerado.

Aliás, preparei uma condição especial para você adquirir nosso plano PRO vitalício com pagamento único por só {{.Price}}! Mas cuidado, a oferta é por tempo limitado!

Se tiver qualquer dúvida ou sugestão, é só responder a este e-mail. Eu leio e respondo todos!

Um abraço,
Nicholas
TechPost IA
`))

// Sender delivers a composed message.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Mailer struct {
	sender   Sender
	from     string
	fromName string
	price    string
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	Price    string
}

func New(cfg Config) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return NewWithSender(client, cfg), nil
}

func NewWithSender(sender Sender, cfg Config) *Mailer {
	return &Mailer{
		sender:   sender,
		from:     cfg.Username,
		fromName: cfg.FromName,
		price:    cfg.Price,
	}
}

// RenderWelcome returns the plain-text greeting for name.
func RenderWelcome(name, price string) (string, error) {
	if name == "" {
		name = defaultGreetingName
	}
	var buf bytes.Buffer
	err := welcomeTemplate.Execute(&buf, struct{ Name, Price string }{name, price})
	if err != nil {
		return "", fmt.Errorf("failed to render welcome e-mail: %w", err)
	}
	return buf.String(), nil
}

func (m *Mailer) SendWelcome(ctx context.Context, email, fullName string) error {
	if email == "" {
		return ErrMissingRecipient
	}

	body, err := RenderWelcome(fullName, m.price)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(welcomeSubject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send welcome e-mail: %w", err)
	}
	return nil
}
