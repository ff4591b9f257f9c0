//go:build integration

package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "study",
				"POSTGRES_PASSWORD": "study",
				"POSTGRES_DB":       "study_hub",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) }) //nolint:errcheck

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=study password=study dbname=study_hub sslmode=disable", host, port.Port())
	db, err := gorm.Open(postgres.Open(dsn), database.GormConfig())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// Row locks and the partial unique index are only real on Postgres.
func TestPostgresConcurrentBookingsNeverOverbook(t *testing.T) {
	db := startPostgres(t)
	tutor := testutil.CreateUser(t, db, "tutor", models.RoleTutor)
	subject := testutil.CreateSubject(t, db, "Chemistry", tutor.ID)
	session := testutil.CreateSession(t, db, tutor.ID, subject.ID, testutil.FutureTime(24*time.Hour), 5)

	const students = 40
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		booked int
	)
	for i := 0; i < students; i++ {
		u := testutil.CreateUser(t, db, fmt.Sprintf("s%d", i), models.RoleStudent)
		wg.Add(1)
		go func(p Principal) {
			defer wg.Done()
			_, err := BookSession(db, p, session.ID)
			var full *CapacityFullError
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.As(err, &full):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(Principal{ID: u.ID, Role: models.RoleStudent})
	}
	wg.Wait()

	assert.Equal(t, 5, booked)
	var stored models.TutorSession
	require.NoError(t, db.First(&stored, "id = ?", session.ID).Error)
	assert.Equal(t, 5, stored.BookedCount)
	assert.False(t, stored.IsAvailable)
}

func TestPostgresPartialIndexRejectsSecondActiveBooking(t *testing.T) {
	db := startPostgres(t)
	tutor := testutil.CreateUser(t, db, "tutor", models.RoleTutor)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	subject := testutil.CreateSubject(t, db, "Biology", tutor.ID)
	session := testutil.CreateSession(t, db, tutor.ID, subject.ID, testutil.FutureTime(24*time.Hour), 5)

	mk := func(status string) error {
		a := models.Appointment{
			StudentID: student.ID, TutorID: tutor.ID, SubjectID: subject.ID,
			TutorSessionID: &session.ID, ScheduledDate: session.SessionDate,
			Duration: 60, Status: status,
		}
		return db.Create(&a).Error
	}
	require.NoError(t, mk(models.AppointmentCancelled))
	require.NoError(t, mk(models.AppointmentBooked))
	assert.ErrorIs(t, mk(models.AppointmentBooked), gorm.ErrDuplicatedKey)
}
