// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/rufinostore/bubastore/internal/config"
	"github.com/rufinostore/bubastore/internal/models"
)

type NotificationService struct {
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{
		config: config,
	}
}

// SendSaleEmails dispatches the buyer confirmation and the seller
// notification concurrently and waits for both. The sale row is already
// persisted when this runs; a failure here leaves it pending_notify for
// the sweeper to retry.
func (s *NotificationService) SendSaleEmails(sale *models.Sale, product *models.Product, seller *models.User, downloadURL string) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- s.SendPurchaseConfirmation(sale, product, downloadURL)
	}()
	go func() {
		errCh <- s.SendSaleNotification(sale, product, seller)
	}()

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SendPurchaseConfirmation emails the buyer their download link.
func (s *NotificationService) SendPurchaseConfirmation(sale *models.Sale, product *models.Product, downloadURL string) error {
	emailTemplate := s.getEmailTemplate("purchase_confirmation")

	data := map[string]interface{}{
		"BuyerName":    buyerDisplayName(sale),
		"ProductTitle": product.Title,
		"Amount":       fmt.Sprintf("%.2f", sale.Amount),
		"Currency":     sale.Currency,
		"DownloadURL":  downloadURL,
		"ExpiresIn":    fmt.Sprintf("%d hours", s.config.Download.TokenTTL),
		"PlatformName": s.config.Email.FromName,
	}

	subject := "Your purchase: " + product.Title
	body, err := s.renderTemplate(emailTemplate.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(sale.BuyerEmail, subject, body)
}

// SendSaleNotification emails the seller the commission breakdown.
func (s *NotificationService) SendSaleNotification(sale *models.Sale, product *models.Product, seller *models.User) error {
	emailTemplate := s.getEmailTemplate("sale_notification")

	data := map[string]interface{}{
		"SellerName":   seller.Username,
		"ProductTitle": product.Title,
		"BuyerEmail":   sale.BuyerEmail,
		"Amount":       fmt.Sprintf("%.2f", sale.Amount),
		"Commission":   fmt.Sprintf("%.2f", sale.CommissionAmount),
		"Net":          fmt.Sprintf("%.2f", sale.NetAmount()),
		"Currency":     sale.Currency,
		"PlatformName": s.config.Email.FromName,
	}

	subject := "You made a sale! " + product.Title
	body, err := s.renderTemplate(emailTemplate.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(seller.Email, subject, body)
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email delivery skipped (SMTP not configured)")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"purchase_confirmation": {
			Subject: "Purchase Confirmation",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your purchase, {{.BuyerName}}!</h2>
	<p>Your payment of {{.Currency}} {{.Amount}} for "{{.ProductTitle}}" was confirmed.</p>
	<p><a href="{{.DownloadURL}}">Download your file</a></p>
	<p>This link expires in {{.ExpiresIn}}.</p>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
		"sale_notification": {
			Subject: "Sale Notification",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>You made a sale, {{.SellerName}}!</h2>
	<p>"{{.ProductTitle}}" was purchased by {{.BuyerEmail}}.</p>
	<ul>
		<li>Gross amount: {{.Currency}} {{.Amount}}</li>
		<li>Platform commission: {{.Currency}} {{.Commission}}</li>
		<li>Your earnings: {{.Currency}} {{.Net}}</li>
	</ul>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
	}

	if emailTemplate, exists := templates[templateType]; exists {
		return emailTemplate
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}

func buyerDisplayName(sale *models.Sale) string {
	if sale.BuyerName != "" {
		return sale.BuyerName
	}
	return sale.BuyerEmail
}
