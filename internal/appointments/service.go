package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carebridge-health/telecare-platform/internal/doctors"
	"github.com/carebridge-health/telecare-platform/internal/events"
	"github.com/carebridge-health/telecare-platform/internal/observability/metrics"
	"github.com/carebridge-health/telecare-platform/internal/realtime"
	"github.com/carebridge-health/telecare-platform/internal/session"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

var tracer = otel.Tracer("carebridge.internal.appointments")

// Currency is fixed for every order the coordinator creates.
const Currency = "INR"

// Store is the persistence surface the coordinator drives.
type Store interface {
	Insert(ctx context.Context, a *Appointment) error
	Get(ctx context.Context, id string) (*Appointment, error)
	ListByOwner(ctx context.Context, ownerColumn, ownerID string) ([]Appointment, error)
	UpdateDate(ctx context.Context, id, ownerColumn, ownerID, newDate string) (*Appointment, error)
	Transition(ctx context.Context, id, ownerColumn, ownerID string, from, to Status) (*Appointment, error)
}

// DoctorDirectory resolves the doctor being booked.
type DoctorDirectory interface {
	Get(ctx context.Context, id string) (*doctors.Doctor, error)
}

// OrderClient creates payment orders at the gateway.
type OrderClient interface {
	KeyID() string
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*PaymentOrder, error)
}

// SignatureVerifier authenticates the gateway's completion callback.
type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

// EventRecorder appends lifecycle events to the outbox.
type EventRecorder interface {
	Record(ctx context.Context, userID, eventType string, payload any) (uuid.UUID, error)
}

// BookingRequest is the input to InitiateBooking.
type BookingRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes"`
}

// Service is the appointment lifecycle coordinator: it drives a booking
// attempt from selection through optional payment to a persisted row, and
// the reschedule/cancel/complete actions on existing rows.
type Service struct {
	store    Store
	doctors  DoctorDirectory
	orders   OrderClient
	verifier SignatureVerifier
	bus      realtime.Bus
	outbox   EventRecorder
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	attempts *attemptRegistry
}

// NewService constructs the coordinator. bus, outbox and metrics are
// optional; without them the coordinator still persists correctly but emits
// nothing.
func NewService(store Store, dir DoctorDirectory, orders OrderClient, verifier SignatureVerifier,
	bus realtime.Bus, outbox EventRecorder, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("appointments: store required")
	}
	if dir == nil {
		panic("appointments: doctor directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		doctors:  dir,
		orders:   orders,
		verifier: verifier,
		bus:      bus,
		outbox:   outbox,
		metrics:  m,
		logger:   logger.Component("appointments"),
		attempts: newAttemptRegistry(),
	}
}

// InitiateBooking validates the selection and either finalizes immediately
// (zero-fee doctor) or creates a payment order and returns a checkout intent
// for the external widget. The widget completes later, or never; nothing is
// persisted until finalize.
func (s *Service) InitiateBooking(ctx context.Context, sess session.Session, req BookingRequest) (*BookingOutcome, error) {
	ctx, span := tracer.Start(ctx, "appointments.initiate_booking")
	defer span.End()
	span.SetAttributes(
		attribute.String("carebridge.patient_id", sess.UserID),
		attribute.String("carebridge.doctor_id", req.DoctorID),
	)

	if sess.UserID == "" {
		return nil, E(KindUnauthorized, "session required")
	}
	if req.DoctorID == "" || req.Date == "" || req.Time == "" {
		return nil, E(KindValidation, "doctor, date and time must all be selected")
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		if err == doctors.ErrNotFound {
			return nil, Wrap(KindNotFound, err)
		}
		return nil, Wrap(KindStore, err)
	}

	if doctor.ConsultationFee <= 0 {
		appt, err := s.Finalize(ctx, sess.UserID, doctor, req.Date, req.Time, req.Notes, "", "", 0)
		if err != nil {
			return nil, err
		}
		return &BookingOutcome{Appointment: appt}, nil
	}

	if s.orders == nil {
		return nil, E(KindPaymentInit, "payment gateway not configured")
	}
	receipt := fmt.Sprintf("consult-%s-%s", doctor.ID, req.Date)
	order, err := s.orders.CreateOrder(ctx, doctor.ConsultationFee, Currency, receipt)
	if err != nil {
		s.metrics.ObservePaymentOrder("failed")
		span.RecordError(err)
		return nil, Wrap(KindPaymentInit, err)
	}
	if order == nil || order.ID == "" {
		s.metrics.ObservePaymentOrder("missing_id")
		return nil, E(KindPaymentInit, "payment order response missing id")
	}
	s.metrics.ObservePaymentOrder("created")

	s.attempts.put(order.ID, bookingAttempt{
		PatientID: sess.UserID,
		Doctor:    *doctor,
		Amount:    order.Amount,
		Notes:     req.Notes,
		Date:      req.Date,
		Time:      req.Time,
		CreatedAt: time.Now().UTC(),
	})

	s.logger.Info("booking awaiting payment",
		"patient_id", sess.UserID, "doctor_id", doctor.ID, "order_id", order.ID, "amount", order.Amount)

	return &BookingOutcome{Checkout: &CheckoutIntent{
		OrderID:     order.ID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Description: fmt.Sprintf("Consultation with %s", doctor.Name),
		KeyID:       s.orders.KeyID(),
	}}, nil
}

// HandlePaymentCallback is invoked asynchronously by the payment widget,
// outside the original booking call stack. It verifies the signature, looks
// up the pending attempt and finalizes the appointment.
func (s *Service) HandlePaymentCallback(ctx context.Context, paymentID, orderID, signature string) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.payment_callback")
	defer span.End()
	span.SetAttributes(attribute.String("carebridge.order_id", orderID))

	if paymentID == "" || orderID == "" {
		return nil, E(KindValidation, "payment_id and order_id are required")
	}
	if s.verifier != nil && !s.verifier.Verify(orderID, paymentID, signature) {
		s.metrics.ObserveBooking("bad_signature")
		return nil, E(KindUnauthorized, "payment signature verification failed")
	}

	attempt, ok := s.attempts.take(orderID)
	if !ok {
		return nil, E(KindNotFound, "no pending booking for order %s", orderID)
	}

	appt, err := s.Finalize(ctx, attempt.PatientID, &attempt.Doctor,
		attempt.Date, attempt.Time, attempt.Notes, paymentID, orderID, attempt.Amount)
	if err != nil {
		// Put the attempt back so a manual retry of the callback can succeed.
		s.attempts.put(orderID, attempt)
		return nil, err
	}

	if s.outbox != nil {
		if _, err := s.outbox.Record(ctx, attempt.PatientID, events.TypePaymentCaptured, events.PaymentCapturedV1{
			EventID:       uuid.NewString(),
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			PaymentID:     paymentID,
			OrderID:       orderID,
			Amount:        attempt.Amount,
			Currency:      Currency,
			OccurredAt:    time.Now().UTC(),
		}); err != nil {
			s.logger.Error("record payment event failed", "error", err, "order_id", orderID)
		}
	}
	return appt, nil
}

// Finalize persists the booking as one row: status upcoming, type derived
// from the doctor's meet link, payment status paid only when a payment id is
// attached. Payment fields and status land in the same insert.
func (s *Service) Finalize(ctx context.Context, patientID string, doctor *doctors.Doctor,
	date, timeSlot, notes, paymentID, orderID string, amount int64) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.finalize")
	defer span.End()
	start := time.Now()

	apptType := TypeOffline
	if doctor.Online() {
		apptType = TypeOnline
	}
	paymentStatus := PaymentPending
	if paymentID != "" {
		paymentStatus = PaymentPaid
	}

	now := time.Now().UTC()
	appt := &Appointment{
		ID:            uuid.NewString(),
		PatientID:     patientID,
		DoctorID:      doctor.ID,
		Date:          date,
		Time:          timeSlot,
		Type:          apptType,
		Status:        StatusUpcoming,
		MeetLink:      doctor.MeetLink,
		PaymentStatus: paymentStatus,
		PaymentID:     paymentID,
		OrderID:       orderID,
		Amount:        amount,
		Notes:         notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Insert(ctx, appt); err != nil {
		s.metrics.ObserveBooking("store_failed")
		span.RecordError(err)
		return nil, Wrap(KindStore, err)
	}

	s.metrics.ObserveBooking("finalized")
	s.metrics.ObserveFinalizeLatency(time.Since(start).Seconds())
	s.logger.Info("appointment finalized",
		"appointment_id", appt.ID, "patient_id", patientID, "doctor_id", doctor.ID,
		"payment_status", paymentStatus)

	s.recordLifecycleEvent(ctx, events.TypeAppointmentCreated, appt, doctor.Name)
	s.emitChange(ctx, realtime.OpInsert, appt)
	return appt, nil
}

// Reschedule moves an upcoming appointment to a new date; the status goes
// back to upcoming. An empty date is rejected before any store call.
func (s *Service) Reschedule(ctx context.Context, sess session.Session, id, newDate string) (*Appointment, error) {
	if newDate == "" {
		return nil, E(KindValidation, "new date is required")
	}

	appt, err := s.store.UpdateDate(ctx, id, ownerColumn(sess), sess.UserID, newDate)
	if err == ErrNotFound {
		return nil, Wrap(KindNotFound, err)
	}
	if err != nil {
		return nil, Wrap(KindStore, err)
	}

	s.logger.Info("appointment rescheduled", "appointment_id", id, "new_date", newDate)
	s.recordLifecycleEvent(ctx, events.TypeAppointmentRescheduled, appt, "")
	s.emitChange(ctx, realtime.OpUpdate, appt)
	return appt, nil
}

// Cancel marks an upcoming appointment cancelled. Cancelling an appointment
// that is already terminal (or gone) is a no-op, which makes the action
// idempotent; the second return value reports whether a row changed.
func (s *Service) Cancel(ctx context.Context, sess session.Session, id string) (*Appointment, bool, error) {
	appt, err := s.store.Transition(ctx, id, ownerColumn(sess), sess.UserID, StatusUpcoming, StatusCancelled)
	if err == ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Wrap(KindStore, err)
	}

	s.logger.Info("appointment cancelled", "appointment_id", id)
	s.recordLifecycleEvent(ctx, events.TypeAppointmentCancelled, appt, "")
	s.emitChange(ctx, realtime.OpUpdate, appt)
	return appt, true, nil
}

// Complete marks an upcoming appointment completed; a doctor-side action.
func (s *Service) Complete(ctx context.Context, sess session.Session, id string) (*Appointment, error) {
	if sess.Role != session.RoleDoctor {
		return nil, E(KindUnauthorized, "only the doctor can complete an appointment")
	}
	appt, err := s.store.Transition(ctx, id, "doctor_id", sess.UserID, StatusUpcoming, StatusCompleted)
	if err == ErrNotFound {
		return nil, Wrap(KindNotFound, err)
	}
	if err != nil {
		return nil, Wrap(KindStore, err)
	}

	s.logger.Info("appointment completed", "appointment_id", id)
	s.recordLifecycleEvent(ctx, events.TypeAppointmentCompleted, appt, "")
	s.emitChange(ctx, realtime.OpUpdate, appt)
	return appt, nil
}

// ListMine returns the session owner's appointments.
func (s *Service) ListMine(ctx context.Context, sess session.Session) ([]Appointment, error) {
	list, err := s.store.ListByOwner(ctx, ownerColumn(sess), sess.UserID)
	if err != nil {
		return nil, Wrap(KindStore, err)
	}
	return list, nil
}

// PendingAttempts reports bookings awaiting their payment callback.
func (s *Service) PendingAttempts() int {
	return s.attempts.len()
}

func ownerColumn(sess session.Session) string {
	if sess.Role == session.RoleDoctor {
		return "doctor_id"
	}
	return "patient_id"
}

func (s *Service) recordLifecycleEvent(ctx context.Context, eventType string, appt *Appointment, doctorName string) {
	if s.outbox == nil {
		return
	}
	_, err := s.outbox.Record(ctx, appt.PatientID, eventType, events.AppointmentEventV1{
		EventID:       uuid.NewString(),
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		DoctorName:    doctorName,
		Date:          appt.Date,
		Time:          appt.Time,
		Status:        string(appt.Status),
		PaymentStatus: string(appt.PaymentStatus),
		Amount:        appt.Amount,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("record lifecycle event failed", "error", err, "type", eventType, "appointment_id", appt.ID)
	}
}

// emitChange publishes payload-less change pings for both owners of the row.
// A patient view and a doctor view watch the same table under different
// filters, so one mutation fans out as two events. Failures are logged only;
// the store remains the source of truth and views converge on the next pull.
func (s *Service) emitChange(ctx context.Context, op string, appt *Appointment) {
	if s.bus == nil {
		return
	}
	for column, value := range map[string]string{
		"patient_id": appt.PatientID,
		"doctor_id":  appt.DoctorID,
	} {
		if value == "" {
			continue
		}
		event := realtime.ChangeEvent{Table: "appointments", Op: op, FilterColumn: column, FilterValue: value}
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Error("publish change event failed", "error", err, "table", "appointments")
		}
	}
}
