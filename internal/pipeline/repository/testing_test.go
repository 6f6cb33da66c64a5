package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"golang-market-signal/internal/entity"
	"golang-market-signal/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entity.Prediction{}, &entity.Stock{}))
	// text[] is postgres only, symbols are kept in their array literal form here.
	require.NoError(t, db.Exec(`CREATE TABLE run_histories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_type TEXT NOT NULL,
		status TEXT NOT NULL,
		symbols TEXT,
		output TEXT,
		error_message TEXT,
		started_at DATETIME NOT NULL,
		completed_at DATETIME
	)`).Error)
	return db
}

func nopLogger() *logger.Logger {
	return logger.NewNop()
}
