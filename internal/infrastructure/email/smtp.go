package email

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"github.com/shoppingos/sospay/internal/domain/order"
	"github.com/shoppingos/sospay/internal/shared/utils"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	BaseURL     string // Base URL for admin links (e.g., "http://localhost:8080")
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPEmailService struct {
	config SMTPConfig
	dialer sender
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPEmailService{
		config: config,
		dialer: dialer,
	}
}

// SendRefundReconciled tells the administrator who started a refund how the
// bank resolved it.
func (s *SMTPEmailService) SendRefundReconciled(ev order.RefundReconciledEvent) error {
	if ev.InitiatorEmail == "" {
		return nil
	}

	orderURL := fmt.Sprintf("%s/admin/orders/%d", s.config.BaseURL, ev.OrderID)
	amount := utils.FormatPrice(ev.Amount, ev.Currency)

	outcome := "was completed"
	if !ev.Succeeded {
		outcome = "did not complete"
	}
	subject := fmt.Sprintf("Refund for order #%d %s", ev.OrderID, outcome)

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Refund %s</h2>
			<p>The bank refund of %s for order #%d %s.</p>
			<p>%s</p>
			<p><a href="%s">View order</a></p>
		</body>
		</html>
	`, html.EscapeString(outcome), html.EscapeString(amount), ev.OrderID, html.EscapeString(outcome),
		html.EscapeString(ev.Notice), orderURL)

	plainBody := fmt.Sprintf(`
Refund %s

The bank refund of %s for order #%d %s.
%s

View order: %s
	`, outcome, amount, ev.OrderID, outcome, ev.Notice, orderURL)

	return s.sendEmail(ev.InitiatorEmail, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
