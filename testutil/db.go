// Package testutil opens throwaway databases and seeds fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database. A single connection
// keeps the in-memory schema alive and serialises transactions.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()
	u := models.User{
		Name:     name,
		Email:    name + "-" + uuid.NewString()[:8] + "@example.com",
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func CreateSubject(t *testing.T, db *gorm.DB, name string, owner uuid.UUID) models.Subject {
	t.Helper()
	s := models.Subject{Name: name, Code: "S" + uuid.NewString()[:7], CreatedByID: owner}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func CreateTopic(t *testing.T, db *gorm.DB, name string, subjectID uuid.UUID) models.Topic {
	t.Helper()
	tp := models.Topic{Name: name, SubjectID: subjectID}
	require.NoError(t, db.Create(&tp).Error)
	return tp
}

// CreateSession inserts a scheduled session directly, bypassing the service.
func CreateSession(t *testing.T, db *gorm.DB, tutorID, subjectID uuid.UUID, at time.Time, capacity int) models.TutorSession {
	t.Helper()
	s := models.TutorSession{
		TutorID:     tutorID,
		SubjectID:   subjectID,
		SessionDate: at.UTC(),
		Duration:    models.DefaultSessionDuration,
		MaxCapacity: capacity,
		Status:      models.SessionScheduled,
		IsAvailable: true,
	}
	require.NoError(t, db.Create(&s).Error)
	return s
}

// FutureTime is a whole-second UTC instant d from now.
func FutureTime(d time.Duration) time.Time {
	return time.Now().UTC().Add(d).Truncate(time.Second)
}
