package prescriptions

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertMarshalsMedicines(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO prescriptions").
		WithArgs(pgxmock.AnyArg(), "pat-1", "doc-1", "appt-1",
			pgxmock.AnyArg(), "after meals", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepository(mock)
	p := &Prescription{
		PatientID: "pat-1", DoctorID: "doc-1", AppointmentID: "appt-1",
		Medicines:    []Medicine{{Name: "Paracetamol", Dosage: "500mg", Schedule: "1-0-1"}},
		Instructions: "after meals",
	}
	require.NoError(t, repo.Insert(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOwnerDecodesMedicines(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	medicines, _ := json.Marshal([]Medicine{{Name: "Metformin", Dosage: "500mg"}})
	rows := mock.NewRows([]string{"id", "patient_id", "doctor_id", "appointment_id",
		"medicines", "instructions", "created_at"}).
		AddRow("rx-1", "pat-1", "doc-1", "", medicines, "", time.Now().UTC())
	mock.ExpectQuery("SELECT .+ FROM prescriptions").
		WithArgs("pat-1").
		WillReturnRows(rows)

	repo := NewRepository(mock)
	list, err := repo.ListByOwner(context.Background(), "patient_id", "pat-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Medicines, 1)
	assert.Equal(t, "Metformin", list[0].Medicines[0].Name)
}

func TestListByOwnerRejectsUnknownColumn(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)
	_, err = repo.ListByOwner(context.Background(), "created_at", "x")
	assert.Error(t, err)
}
