package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matricula-api/internal/models"
)

func newConfigurationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestConfigurationRepositoryListByKeys(t *testing.T) {
	db, mock, cleanup := newConfigurationRepoMock(t)
	defer cleanup()

	repo := NewConfigurationRepository(db)
	rows := sqlmock.NewRows([]string{"key", "value", "type", "description", "updated_by", "updated_at"}).
		AddRow("credit_cost", "100.00", "NUMBER", "per credit", nil, time.Now()).
		AddRow("max_credits_per_cycle", "22", "INTEGER", nil, nil, time.Now())
	mock.ExpectQuery("SELECT key, value").
		WithArgs("credit_cost", "max_credits_per_cycle").
		WillReturnRows(rows)

	result, err := repo.ListByKeys(context.Background(), []string{"credit_cost", "max_credits_per_cycle"})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "100.00", result[0].Value)
	assert.Equal(t, models.ConfigurationTypeInteger, result[1].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurationRepositoryListByKeysEmpty(t *testing.T) {
	db, _, cleanup := newConfigurationRepoMock(t)
	defer cleanup()

	result, err := NewConfigurationRepository(db).ListByKeys(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestConfigurationRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newConfigurationRepoMock(t)
	defer cleanup()
	repo := NewConfigurationRepository(db)
	mock.ExpectExec("INSERT INTO configurations").
		WithArgs("late_surcharge_rate", "1.25", "NUMBER", sqlmock.AnyArg(), "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	cfg := &models.Configuration{
		Key:       "late_surcharge_rate",
		Value:     "1.25",
		Type:      models.ConfigurationTypeNumber,
		UpdatedBy: strPtr("admin"),
	}
	require.NoError(t, repo.Upsert(context.Background(), cfg))
	assert.False(t, cfg.UpdatedAt.IsZero())
}

func TestConfigurationRepositoryBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newConfigurationRepoMock(t)
	defer cleanup()
	repo := NewConfigurationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO configurations").
		WithArgs("min_credits_per_cycle", "10", "INTEGER", sqlmock.AnyArg(), "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO configurations").
		WithArgs("max_credits_per_cycle", "24", "INTEGER", sqlmock.AnyArg(), "admin", sqlmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	items := []models.Configuration{
		{Key: "min_credits_per_cycle", Value: "10", Type: models.ConfigurationTypeInteger, UpdatedBy: strPtr("admin")},
		{Key: "max_credits_per_cycle", Value: "24", Type: models.ConfigurationTypeInteger, UpdatedBy: strPtr("admin")},
	}
	require.Error(t, repo.BulkUpsert(context.Background(), items))
	require.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(value string) *string {
	return &value
}
