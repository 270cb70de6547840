package vitals

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO vitals").
		WithArgs(pgxmock.AnyArg(), "pat-1", pgxmock.AnyArg(), 72, 120, 80,
			36.8, 98, 0, "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepository(mock)
	reading := &Reading{
		PatientID: "pat-1", HeartRate: 72, Systolic: 120, Diastolic: 80,
		Temperature: 36.8, SpO2: 98,
	}
	require.NoError(t, repo.Insert(context.Background(), reading))
	assert.NotEmpty(t, reading.ID)
	assert.False(t, reading.RecordedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByPatient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := mock.NewRows([]string{"id", "patient_id", "recorded_at", "heart_rate",
		"systolic", "diastolic", "temperature", "spo2", "glucose", "notes"}).
		AddRow("v-1", "pat-1", time.Now().UTC(), 72, 120, 80, 36.8, 98, 0, "")
	mock.ExpectQuery("SELECT .+ FROM vitals").
		WithArgs("pat-1", 100).
		WillReturnRows(rows)

	repo := NewRepository(mock)
	list, err := repo.ListByPatient(context.Background(), "pat-1", 100)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 72, list[0].HeartRate)
}
