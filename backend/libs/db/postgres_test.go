package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgresDBEmptyDSN(t *testing.T) {
	_, err := NewPostgresDB("   ", PoolOptions{})
	assert.EqualError(t, err, "db: empty DSN")
}

func TestConfigurePoolDefaults(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	configurePool(sqlDB, PoolOptions{})
	assert.Equal(t, defaultMaxOpenConns, sqlDB.Stats().MaxOpenConnections)

	configurePool(sqlDB, PoolOptions{MaxOpenConns: 3})
	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
}
