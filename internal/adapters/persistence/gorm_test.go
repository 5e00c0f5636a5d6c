package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestGormStore(t *testing.T) {
	store, err := NewGormStore(openTestDB(t), "sqlite", "quotations")
	require.NoError(t, err)

	exerciseStore(t, store)

	assert.Equal(t, "sqlite", store.Name())
}

func TestGormStore_ReportingColumns(t *testing.T) {
	db := openTestDB(t)

	store, err := NewGormStore(db, "sqlite", "quote_docs")
	require.NoError(t, err)

	require.NoError(t, store.Sync(context.Background(), sampleQuotation("q-9")))

	var rec quotationRecord
	require.NoError(t, db.Table("quote_docs").Where("id = ?", "q-9").First(&rec).Error)

	assert.Equal(t, 2, rec.ServiceCount)
	assert.InDelta(t, 2715.18, rec.GrandTotal, 0.001)
	assert.Contains(t, string(rec.Document), `"service_name":"Website"`)
	assert.Contains(t, string(rec.Document), `"unit_rate":150.5`)
}

func TestGormStore_DefaultTable(t *testing.T) {
	store, err := NewGormStore(openTestDB(t), "sqlite", "")
	require.NoError(t, err)

	assert.Equal(t, "quotations", store.table)
}

func TestOpenGorm_UnsupportedDriver(t *testing.T) {
	_, err := OpenGorm("mysql", "dsn", "quotations", false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported gorm driver")
}

func TestGormStore_Close(t *testing.T) {
	store, err := OpenGorm("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared", "quotations", false)
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.Error(t, store.Check(context.Background()))
}
