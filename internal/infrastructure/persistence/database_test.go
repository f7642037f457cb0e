package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T, opts ...Option) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	db, err := Open(dialector, opts...)
	require.NoError(t, err)

	return db, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		assert.NoError(t, db.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Close(t *testing.T) {
	t.Run("successful close", func(t *testing.T) {
		db, mock, _ := newMockDatabase(t)

		mock.ExpectClose()

		assert.NoError(t, db.Close())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestOpen_WithTracing(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t, WithTracing("erp", false))
	defer mockDB.Close()

	type Row struct {
		ID uint
	}

	mock.ExpectQuery(`SELECT \* FROM "rows"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	var rows []Row
	require.NoError(t, db.DB.Find(&rows).Error)
	assert.Len(t, rows, 1)

	_, registered := db.DB.Config.Plugins["otelgorm"]
	assert.True(t, registered)
	assert.NoError(t, mock.ExpectationsWereMet())
}
