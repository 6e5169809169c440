package database

import (
	"path/filepath"
	"testing"

	"rentexpress/internal/config"
	"rentexpress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndMigrate_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rex.db")

	db, err := Init(config.DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))

	u := models.User{Username: "alice", PasswordHash: "x", Role: models.RoleTenant,
		Profile: models.Profile{"fullName": "Alice", "email": "alice@example.com"}}
	require.NoError(t, db.Create(&u).Error)
	assert.NotEmpty(t, u.ID, "id assigned on insert")

	var got models.User
	require.NoError(t, db.First(&got, "id = ?", u.ID).Error)
	assert.Equal(t, "alice@example.com", got.Profile.Email())
}

func TestInit_UnsupportedDriver(t *testing.T) {
	_, err := Init(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
