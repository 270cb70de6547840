package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO outbox").
		WithArgs(pgxmock.AnyArg(), "pat-1", TypeAppointmentCreated, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewOutboxStore(mock)
	id, err := store.Record(context.Background(), "pat-1", TypeAppointmentCreated,
		AppointmentEventV1{EventID: "ev-1", AppointmentID: "appt-1"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxFetchPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	payload := []byte(`{"event_id":"ev-1"}`)
	mock.ExpectQuery("SELECT id, user_id, type, payload, created_at").
		WithArgs(int32(10)).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "type", "payload", "created_at"}).
			AddRow(id, "pat-1", TypeAppointmentCancelled, payload, time.Now().UTC()))

	store := NewOutboxStore(mock)
	entries, err := store.FetchPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, TypeAppointmentCancelled, entries[0].Type)
	assert.JSONEq(t, string(payload), string(entries[0].Payload))
}

func TestOutboxMarkDelivered(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE outbox").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewOutboxStore(mock)
	ok, err := store.MarkDelivered(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ok)
}

type captureHandler struct {
	entries []OutboxEntry
	fail    bool
}

func (h *captureHandler) Handle(_ context.Context, entry OutboxEntry) error {
	if h.fail {
		return assert.AnError
	}
	h.entries = append(h.entries, entry)
	return nil
}

func TestDelivererDrainsPendingAndMarksDelivered(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	payload, _ := json.Marshal(AppointmentEventV1{EventID: "ev-1"})
	mock.ExpectQuery("SELECT id, user_id, type, payload, created_at").
		WithArgs(int32(25)).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "type", "payload", "created_at"}).
			AddRow(id, "pat-1", TypeAppointmentCreated, payload, time.Now().UTC()))
	mock.ExpectExec("UPDATE outbox").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	handler := &captureHandler{}
	d := NewDeliverer(NewOutboxStore(mock), handler, nil)
	d.drain(context.Background())

	require.Len(t, handler.entries, 1)
	assert.Equal(t, TypeAppointmentCreated, handler.entries[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelivererKeepsEntryOnHandlerFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT id, user_id, type, payload, created_at").
		WithArgs(int32(25)).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "type", "payload", "created_at"}).
			AddRow(id, "pat-1", TypeAppointmentCreated, []byte(`{}`), time.Now().UTC()))
	// No UPDATE expected; the entry stays pending for the next tick.

	d := NewDeliverer(NewOutboxStore(mock), &captureHandler{fail: true}, nil)
	d.drain(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}
