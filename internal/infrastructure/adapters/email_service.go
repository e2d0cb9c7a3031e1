package adapters

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	"github.com/fintrack/fintrack_service/pkg/security"
)

// EmailServiceConfig holds email service configuration
type EmailServiceConfig struct {
	Provider  string // "sendgrid" or "log"
	APIKey    string
	FromEmail string
	FromName  string
}

// EmailService sends budget alerts by email. With the "log" provider the
// message is only logged.
type EmailService struct {
	logger *zap.Logger
	config EmailServiceConfig
	client *sendgrid.Client
}

// NewEmailService creates a new email service
func NewEmailService(logger *zap.Logger, config EmailServiceConfig) (*EmailService, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))
	config.Provider = provider

	var client *sendgrid.Client
	switch provider {
	case "sendgrid":
		if strings.TrimSpace(config.APIKey) == "" {
			return nil, fmt.Errorf("sendgrid api key is required")
		}
		if strings.TrimSpace(config.FromEmail) == "" {
			return nil, fmt.Errorf("email from address is required")
		}
		client = sendgrid.NewSendClient(config.APIKey)
	case "log", "":
		config.Provider = "log"
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", provider)
	}

	return &EmailService{logger: logger, config: config, client: client}, nil
}

// NotifyBudgetExceeded tells the user that an expense pushed a budget entry over its limit
func (e *EmailService) NotifyBudgetExceeded(ctx context.Context, user *entities.User, entry *entities.BudgetEntry) error {
	subject := fmt.Sprintf("Budget exceeded: %s", entry.Name)
	over := entry.Spent.Sub(entry.Limit).StringFixed(2)

	text := fmt.Sprintf(
		"Hi %s,\n\nYou have spent %s against your %s budget of %s, which is %s over the limit.\n\nConsider reducing expenses in this category.\n",
		user.Name, entry.Spent.StringFixed(2), entry.Name, entry.Limit.StringFixed(2), over)
	htmlBody := fmt.Sprintf(
		"<p>Hi %s,</p><p>You have spent <strong>%s</strong> against your <strong>%s</strong> budget of %s, which is %s over the limit.</p><p>Consider reducing expenses in this category.</p>",
		html.EscapeString(user.Name), entry.Spent.StringFixed(2), html.EscapeString(entry.Name), entry.Limit.StringFixed(2), over)

	return e.sendEmail(ctx, user.Email, subject, htmlBody, text)
}

func (e *EmailService) sendEmail(ctx context.Context, to, subject, htmlContent, textContent string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if e.config.Provider == "log" {
		e.logger.Info("Email not sent, log provider configured",
			zap.String("to", security.MaskEmail(to)),
			zap.String("subject", subject))
		return nil
	}
	return e.sendViaSendgrid(ctx, to, subject, htmlContent, textContent)
}

func (e *EmailService) sendViaSendgrid(ctx context.Context, to, subject, htmlContent, textContent string) error {
	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), textContent, htmlContent)

	response, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		e.logger.Error("Failed to send email",
			zap.String("provider", "sendgrid"),
			zap.String("to", security.MaskEmail(to)),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		e.logger.Error("Email service returned error",
			zap.String("provider", "sendgrid"),
			zap.String("to", security.MaskEmail(to)),
			zap.Int("status_code", response.StatusCode),
			zap.String("response_body", response.Body))
		return fmt.Errorf("email service error: status %d, body: %s", response.StatusCode, response.Body)
	}

	e.logger.Info("Email sent successfully",
		zap.String("provider", "sendgrid"),
		zap.String("to", security.MaskEmail(to)),
		zap.String("subject", subject),
		zap.Int("status_code", response.StatusCode))
	return nil
}
