package config

import (
	"fmt"
	"sync/atomic"
	"testing"

	"clinicdesk/internal/adapters/persistence/models"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:seedertestdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func TestSeederCreatesAdminOnce(t *testing.T) {
	db := newTestDB(t)
	cfg := &Config{Admin: AdminConfig{Email: "admin@clinic.test", Password: "bootstrap1"}}
	seeder := NewSeeder(db, cfg)

	require.NoError(t, seeder.Run())
	require.NoError(t, seeder.Run())

	var admins []models.User
	require.NoError(t, db.Where("role = ?", domain.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@clinic.test", admins[0].Email)
	assert.True(t, password.Verify("bootstrap1", admins[0].Password))
}

func TestSeederSkipsWhenAdminExists(t *testing.T) {
	db := newTestDB(t)
	existing := &models.User{
		Email:    "boss@clinic.test",
		Password: "hash",
		Role:     domain.RoleAdmin,
		IsActive: true,
	}
	require.NoError(t, db.Create(existing).Error)

	cfg := &Config{Admin: AdminConfig{Email: "admin@clinic.test", Password: "bootstrap1"}}
	require.NoError(t, NewSeeder(db, cfg).Run())

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
