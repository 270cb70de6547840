package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/carebridge-health/telecare-platform/internal/events"
	"github.com/carebridge-health/telecare-platform/internal/notify"
	"github.com/carebridge-health/telecare-platform/internal/realtime"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

// AddressBook resolves a user id to a deliverable email address.
type AddressBook interface {
	EmailFor(ctx context.Context, userID string) (name, email string, err error)
}

// Service turns outbox events into in-app notification rows, realtime pings
// and email. It implements events.DeliveryHandler.
type Service struct {
	repo      *Repository
	bus       realtime.Bus
	mailer    notify.EmailSender
	addresses AddressBook
	logger    *logging.Logger
}

// NewService builds the notification fan-out. bus, mailer and addresses are
// optional; missing pieces are skipped.
func NewService(repo *Repository, bus realtime.Bus, mailer notify.EmailSender, addresses AddressBook, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		bus:       bus,
		mailer:    mailer,
		addresses: addresses,
		logger:    logger.Component("notifications"),
	}
}

// Handle dispatches one outbox entry. Email failures are logged, not
// returned; the notification row is the delivery that must not be lost.
func (s *Service) Handle(ctx context.Context, entry events.OutboxEntry) error {
	switch entry.Type {
	case events.TypeAppointmentCreated,
		events.TypeAppointmentCancelled,
		events.TypeAppointmentRescheduled,
		events.TypeAppointmentCompleted:
		var ev events.AppointmentEventV1
		if err := json.Unmarshal(entry.Payload, &ev); err != nil {
			return fmt.Errorf("notifications: decode %s: %w", entry.Type, err)
		}
		return s.handleAppointment(ctx, entry.Type, ev)
	case events.TypePaymentCaptured:
		var ev events.PaymentCapturedV1
		if err := json.Unmarshal(entry.Payload, &ev); err != nil {
			return fmt.Errorf("notifications: decode %s: %w", entry.Type, err)
		}
		return s.handlePayment(ctx, ev)
	default:
		s.logger.Debug("ignoring outbox event", "type", entry.Type)
		return nil
	}
}

func (s *Service) handleAppointment(ctx context.Context, eventType string, ev events.AppointmentEventV1) error {
	title, body := appointmentCopy(eventType, ev)

	for _, userID := range []string{ev.PatientID, ev.DoctorID} {
		if userID == "" {
			continue
		}
		n := &Notification{UserID: userID, Type: eventType, Title: title, Body: body}
		if err := s.repo.Insert(ctx, n); err != nil {
			return fmt.Errorf("notifications: insert for %s: %w", userID, err)
		}
		s.publishChange(ctx, userID)
	}

	if eventType == events.TypeAppointmentCreated || eventType == events.TypeAppointmentCancelled {
		s.email(ctx, ev.PatientID, title, body)
	}
	return nil
}

func (s *Service) handlePayment(ctx context.Context, ev events.PaymentCapturedV1) error {
	n := &Notification{
		UserID: ev.PatientID,
		Type:   events.TypePaymentCaptured,
		Title:  "Payment received",
		Body:   fmt.Sprintf("Payment of %s confirmed for your appointment.", formatAmount(ev.Amount, ev.Currency)),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return fmt.Errorf("notifications: insert payment: %w", err)
	}
	s.publishChange(ctx, ev.PatientID)
	return nil
}

func (s *Service) publishChange(ctx context.Context, userID string) {
	if s.bus == nil {
		return
	}
	event := realtime.ChangeEvent{
		Table: "notifications", Op: realtime.OpInsert,
		FilterColumn: "user_id", FilterValue: userID,
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("publish notification change failed", "error", err, "user_id", userID)
	}
}

func (s *Service) email(ctx context.Context, userID, subject, body string) {
	if s.mailer == nil || s.addresses == nil {
		return
	}
	name, addr, err := s.addresses.EmailFor(ctx, userID)
	if err != nil || addr == "" {
		s.logger.Debug("no email address for user", "user_id", userID, "error", err)
		return
	}
	msg := notify.EmailMessage{To: addr, ToName: name, Subject: subject, Body: body}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("notification email failed", "error", err, "user_id", userID)
	}
}

func appointmentCopy(eventType string, ev events.AppointmentEventV1) (title, body string) {
	with := ""
	if ev.DoctorName != "" {
		with = " with " + ev.DoctorName
	}
	when := ev.Date
	if ev.Time != "" {
		when += " at " + ev.Time
	}
	switch eventType {
	case events.TypeAppointmentCreated:
		return "Appointment confirmed", fmt.Sprintf("Your appointment%s on %s is confirmed.", with, when)
	case events.TypeAppointmentCancelled:
		return "Appointment cancelled", fmt.Sprintf("The appointment%s on %s was cancelled.", with, when)
	case events.TypeAppointmentRescheduled:
		return "Appointment rescheduled", fmt.Sprintf("Your appointment%s has moved to %s.", with, when)
	case events.TypeAppointmentCompleted:
		return "Appointment completed", fmt.Sprintf("Your appointment%s on %s is complete.", with, when)
	default:
		return "Appointment update", fmt.Sprintf("Your appointment%s on %s was updated.", with, when)
	}
}

func formatAmount(paise int64, currency string) string {
	if currency == "" {
		currency = "INR"
	}
	return fmt.Sprintf("%s %d.%02d", currency, paise/100, paise%100)
}
