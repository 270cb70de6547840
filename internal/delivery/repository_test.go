package delivery

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusNext(t *testing.T) {
	assert.Equal(t, StatusPacked, StatusPlaced.Next())
	assert.Equal(t, StatusDelivered, StatusOutForDelivery.Next())
	assert.Empty(t, StatusDelivered.Next())
	assert.Empty(t, Status("bogus").Next())
}

func TestCreateWritesDeliveryAndFirstEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO deliveries").
		WithArgs(sqlmock.AnyArg(), "pat-1", "rx-1", StatusPlaced, "", "12 MG Road", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO delivery_events").
		WithArgs(sqlmock.AnyArg(), StatusPlaced, "order placed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := NewRepository(db)
	d := &Delivery{PatientID: "pat-1", PrescriptionID: "rx-1", Address: "12 MG Road"}
	require.NoError(t, repo.Create(context.Background(), d))
	assert.Equal(t, StatusPlaced, d.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceMovesOneStep(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM deliveries").
		WithArgs("d-1", "pat-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(StatusShipped))
	mock.ExpectExec("UPDATE deliveries SET status").
		WithArgs("d-1", StatusOutForDelivery, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO delivery_events").
		WithArgs("d-1", StatusOutForDelivery, "left the warehouse", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := NewRepository(db)
	next, err := repo.Advance(context.Background(), "pat-1", "d-1", "left the warehouse")
	require.NoError(t, err)
	assert.Equal(t, StatusOutForDelivery, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceDeliveredIsTerminal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM deliveries").
		WithArgs("d-1", "pat-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(StatusDelivered))
	mock.ExpectRollback()

	repo := NewRepository(db)
	_, err = repo.Advance(context.Background(), "pat-1", "d-1", "")
	assert.ErrorIs(t, err, ErrTerminal)
}

func TestAdvanceUnknownDelivery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM deliveries").
		WithArgs("d-missing", "pat-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	repo := NewRepository(db)
	_, err = repo.Advance(context.Background(), "pat-1", "d-missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
