// internal/service/notification/service.go
package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cobramax-service/internal/domain/customer"
	"cobramax-service/internal/domain/notification"
	"cobramax-service/internal/domain/payment"
	xerrors "cobramax-service/internal/pkg/errors"
	"cobramax-service/internal/repository/postgres"

	"go.uber.org/zap"
)

// TemplateData feeds Personalize. Empty fields replace their placeholder with
// an empty string.
type TemplateData struct {
	Nombre      string
	Deuda       float64
	Zona        string
	Cobrador    string
	FechaLimite string
	MontoPagado float64
}

// Personalize fills the {placeholder} variables of a template body.
func Personalize(content string, data TemplateData) string {
	r := strings.NewReplacer(
		"{nombre}", data.Nombre,
		"{deuda}", fmt.Sprintf("%.2f", data.Deuda),
		"{zona}", data.Zona,
		"{cobrador}", data.Cobrador,
		"{fecha_limite}", data.FechaLimite,
		"{monto_pagado}", fmt.Sprintf("%.2f", data.MontoPagado),
	)
	return r.Replace(content)
}

// FlushReport summarizes one flush run.
type FlushReport struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// MailSender is the email delivery surface. Production uses the SMTP sender;
// unconfigured deployments get a simulated one.
type MailSender interface {
	Send(to, subject, bodyHTML string) error
}

type NotificationService struct {
	repo         *postgres.NotificationRepository
	customerRepo *postgres.CustomerRepository
	zoneRepo     *postgres.ZoneRepository
	emailSender  MailSender
	whatsapp     Provider
	sms          Provider
	logger       *zap.Logger
	now          func() time.Time
}

func NewNotificationService(
	repo *postgres.NotificationRepository,
	customerRepo *postgres.CustomerRepository,
	zoneRepo *postgres.ZoneRepository,
	emailSender MailSender,
	whatsapp Provider,
	sms Provider,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		repo:         repo,
		customerRepo: customerRepo,
		zoneRepo:     zoneRepo,
		emailSender:  emailSender,
		whatsapp:     whatsapp,
		sms:          sms,
		logger:       logger,
		now:          time.Now,
	}
}

// eventNotificationType maps an account event kind to the notification type
// used for its outbound message.
func eventNotificationType(kind string) string {
	switch kind {
	case payment.EventAlert:
		return notification.TypeDueDate
	case payment.EventCutoff:
		return notification.TypeGeneral
	case payment.EventReconnect:
		return notification.TypeConfirmation
	default:
		return notification.TypeGeneral
	}
}

// NotifyAccountEvent enqueues a message for a state machine event, using the
// stored template for the event's type when one exists.
func (s *NotificationService) NotifyAccountEvent(ctx context.Context, cust *customer.Customer, kind, detail string) error {
	notifType := eventNotificationType(kind)

	body := detail
	if tpl, err := s.repo.FindTemplateByType(ctx, notifType); err == nil {
		body = Personalize(tpl.Content, s.templateData(ctx, cust))
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		s.logger.Error("failed to load notification template",
			zap.String("type", notifType), zap.Error(err))
	}

	return s.Enqueue(ctx, cust, notifType, "", body)
}

// NotifyPaymentConfirmation enqueues the receipt for a validated payment,
// personalizing the stored confirmation template when one exists.
func (s *NotificationService) NotifyPaymentConfirmation(ctx context.Context, cust *customer.Customer, amount float64) error {
	body := fmt.Sprintf("Hola %s, hemos registrado tu pago de S/ %.2f. Gracias por tu preferencia.", cust.FullName, amount)
	if tpl, err := s.repo.FindTemplateByType(ctx, notification.TypeConfirmation); err == nil {
		data := s.templateData(ctx, cust)
		data.MontoPagado = amount
		body = Personalize(tpl.Content, data)
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		s.logger.Error("failed to load notification template",
			zap.String("type", notification.TypeConfirmation), zap.Error(err))
	}

	return s.Enqueue(ctx, cust, notification.TypeConfirmation, "Confirmación de pago", body)
}

// Enqueue stores a pendiente notification on the customer's best channel:
// WhatsApp when they have a phone, email otherwise.
func (s *NotificationService) Enqueue(ctx context.Context, cust *customer.Customer, notifType, subject, body string) error {
	channel := notification.ChannelWhatsApp
	if cust.Phone == "" {
		if !cust.Email.Valid {
			return fmt.Errorf("customer %d has no deliverable channel", cust.ID)
		}
		channel = notification.ChannelEmail
	}

	n := &notification.Notification{
		CustomerID: cust.ID,
		ZoneID:     sql.NullInt64{Int64: cust.ZoneID, Valid: cust.ZoneID != 0},
		Type:       notifType,
		Channel:    channel,
		Status:     notification.StatusPending,
		Subject:    sql.NullString{String: subject, Valid: subject != ""},
		Message:    body,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// Flush delivers due pending notifications. Failures mark the row fallido and
// the run continues.
func (s *NotificationService) Flush(ctx context.Context) (*FlushReport, error) {
	due, err := s.repo.ListDue(ctx, s.now(), 100)
	if err != nil {
		return nil, err
	}

	report := &FlushReport{}
	for i := range due {
		n := &due[i]
		externalID, err := s.deliver(ctx, n)
		if err != nil {
			report.Failed++
			s.logger.Warn("notification delivery failed",
				zap.Int64("notification_id", n.ID),
				zap.String("channel", n.Channel),
				zap.Error(err),
			)
			if mErr := s.repo.MarkFailed(ctx, n.ID, err.Error()); mErr != nil {
				s.logger.Error("failed to mark notification failed", zap.Error(mErr))
			}
			continue
		}

		report.Sent++
		if mErr := s.repo.MarkSent(ctx, n.ID, externalID, s.now()); mErr != nil {
			s.logger.Error("failed to mark notification sent", zap.Error(mErr))
		}
	}

	if report.Sent > 0 || report.Failed > 0 {
		s.logger.Info("notification flush finished",
			zap.Int("sent", report.Sent),
			zap.Int("failed", report.Failed),
		)
	}
	return report, nil
}

func (s *NotificationService) deliver(ctx context.Context, n *notification.Notification) (string, error) {
	cust, err := s.customerRepo.FindByID(ctx, n.CustomerID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve customer: %w", err)
	}

	switch n.Channel {
	case notification.ChannelWhatsApp:
		if cust.Phone == "" {
			return "", fmt.Errorf("customer %d has no phone", cust.ID)
		}
		return s.whatsapp.Send(ctx, cust.Phone, n.Message)

	case notification.ChannelSMS:
		if cust.Phone == "" {
			return "", fmt.Errorf("customer %d has no phone", cust.ID)
		}
		return s.sms.Send(ctx, cust.Phone, n.Message)

	case notification.ChannelEmail:
		if !cust.Email.Valid {
			return "", fmt.Errorf("customer %d has no email", cust.ID)
		}
		subject := n.Subject.String
		if subject == "" {
			subject = "Notificación de COBRA-MAX"
		}
		return "", s.emailSender.Send(cust.Email.String, subject, n.Message)

	default:
		return "", fmt.Errorf("unknown channel %q", n.Channel)
	}
}

// SendPaymentReminders enqueues a reminder for every account carrying debt.
func (s *NotificationService) SendPaymentReminders(ctx context.Context) (int, error) {
	customers, err := s.customerRepo.ListWithDebt(ctx, customer.StatusActive, customer.StatusDefaulter)
	if err != nil {
		return 0, err
	}

	tpl, err := s.repo.FindTemplateByType(ctx, notification.TypePaymentReminder)
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return 0, err
	}

	enqueued := 0
	for i := range customers {
		cust := &customers[i]

		body := fmt.Sprintf("Hola %s, tienes una deuda pendiente de S/ %.2f con COBRA-MAX. Te agradecemos regularizar tu pago.", cust.FullName, cust.CurrentDebt)
		if tpl != nil {
			body = Personalize(tpl.Content, s.templateData(ctx, cust))
		}

		if err := s.Enqueue(ctx, cust, notification.TypePaymentReminder, "Recordatorio de pago", body); err != nil {
			s.logger.Warn("failed to enqueue payment reminder",
				zap.Int64("customer_id", cust.ID), zap.Error(err))
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// Purge removes delivered and failed rows older than the given age and
// returns the count.
func (s *NotificationService) Purge(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := s.now().Add(-age)
	purged, err := s.repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Info("purged stale notifications", zap.Int64("purged", purged))
	}
	return purged, nil
}

// ListByCustomer exposes a customer's notification history.
func (s *NotificationService) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]notification.Notification, error) {
	return s.repo.ListByCustomer(ctx, customerID, limit)
}

func (s *NotificationService) templateData(ctx context.Context, cust *customer.Customer) TemplateData {
	data := TemplateData{
		Nombre: cust.FullName,
		Deuda:  cust.CurrentDebt,
	}
	if cust.DueDay.Valid {
		data.FechaLimite = fmt.Sprintf("día %d de cada mes", cust.DueDay.Int16)
	}

	if z, err := s.zoneRepo.FindByID(ctx, cust.ZoneID); err == nil {
		data.Zona = z.Name
		if name, err := s.zoneRepo.CollectorName(ctx, z.ID); err == nil {
			data.Cobrador = name
		}
	}
	return data
}
