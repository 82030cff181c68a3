package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestOpen_SQLiteMemory(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(ctx, db, &probe{}))
	require.NoError(t, db.Create(&probe{Name: "a"}).Error)

	var count int64
	require.NoError(t, db.Model(&probe{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, DriverSQLite, "")
	assert.Error(t, err)

	_, err = Open(ctx, "mysql", "user:pw@/db")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}
