package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kpvarma/ecoas-forge-sub000/internal/config"
)

func TestNew_SQLiteMemoryAndMigrate(t *testing.T) {
	db, err := New(&config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))
	for _, table := range []string{"users", "requests", "templates", "responsibilities"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.NoError(t, HealthCheck(db))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestHealthCheck(t *testing.T) {
	assert.Error(t, HealthCheck(nil))

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mock.ExpectPing()
	assert.NoError(t, HealthCheck(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
