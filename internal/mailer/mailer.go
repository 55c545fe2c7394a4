// Package mailer hands account activation and password reset mail to the
// delivery collaborator. Sending is fire-and-forget: failures are logged, never
// returned, and never retried here.
package mailer

import (
	"encoding/json"
	"fmt"

	"microblog/internal/models"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Kind identifies the template the delivery side should render.
type Kind string

const (
	AccountActivation Kind = "account_activation"
	PasswordReset     Kind = "password_reset"
)

// Message is the payload published on the mail queue. Token is the raw token the
// recipient needs for the link; it is never logged.
type Message struct {
	Kind   Kind   `json:"kind"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// Publisher is the part of the RabbitMQ client the mailer needs.
type Publisher interface {
	PublishMail(msg any) error
}

// QueueMailer publishes mail messages for an external sender.
type QueueMailer struct {
	publisher Publisher
	logger    *zap.Logger
}

// NewQueueMailer creates a QueueMailer.
func NewQueueMailer(publisher Publisher, logger *zap.Logger) *QueueMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueMailer{publisher: publisher, logger: logger}
}

// SendActivationEmail queues the activation mail carrying user.ActivationToken.
func (m *QueueMailer) SendActivationEmail(user *models.User) {
	m.send(Message{Kind: AccountActivation, UserID: user.ID, Name: user.Name, Email: user.Email, Token: user.ActivationToken})
}

// SendPasswordResetEmail queues the reset mail carrying user.ResetToken.
func (m *QueueMailer) SendPasswordResetEmail(user *models.User) {
	m.send(Message{Kind: PasswordReset, UserID: user.ID, Name: user.Name, Email: user.Email, Token: user.ResetToken})
}

func (m *QueueMailer) send(msg Message) {
	if err := m.publisher.PublishMail(msg); err != nil {
		m.logger.Warn("failed to queue mail", zap.String("kind", string(msg.Kind)), zap.String("user_id", msg.UserID), zap.Error(err))
		return
	}
	m.logger.Info("mail queued", zap.String("kind", string(msg.Kind)), zap.String("user_id", msg.UserID))
}

// LogMailer is used when no broker is configured; it records the request only.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// SendActivationEmail logs the skipped activation mail.
func (m *LogMailer) SendActivationEmail(user *models.User) {
	m.logger.Info("mail delivery disabled", zap.String("kind", string(AccountActivation)), zap.String("user_id", user.ID))
}

// SendPasswordResetEmail logs the skipped reset mail.
func (m *LogMailer) SendPasswordResetEmail(user *models.User) {
	m.logger.Info("mail delivery disabled", zap.String("kind", string(PasswordReset)), zap.String("user_id", user.ID))
}

// DeliveryHandler decodes mail queue deliveries for the consumer loop. Rendering
// and SMTP transport belong to the mail service, so the message is only checked
// and logged.
func DeliveryHandler(logger *zap.Logger) func(amqp.Delivery) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(d amqp.Delivery) error {
		var msg Message
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			return fmt.Errorf("failed to decode mail message: %w", err)
		}
		switch msg.Kind {
		case AccountActivation, PasswordReset:
		default:
			return fmt.Errorf("unknown mail kind %q", msg.Kind)
		}
		if msg.Email == "" || msg.Token == "" {
			return fmt.Errorf("incomplete %s message for user %s", msg.Kind, msg.UserID)
		}
		logger.Info("mail delivery requested", zap.String("kind", string(msg.Kind)), zap.String("user_id", msg.UserID))
		return nil
	}
}
