package services

import (
	"time"

	"github.com/anjiri1684/study_hub/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Working day for ad-hoc appointments: hourly slots starting 09:00 through 17:00.
const (
	firstSlotHour = 9
	lastSlotHour  = 17
)

type Slot struct {
	Time   time.Time `json:"time"`
	Hour   int       `json:"hour"`
	Period string    `json:"period"`
}

// OpenSlots lists the hourly slots of day (in day's location) not covered by
// any appointment. A slot is taken when start <= slot < start+duration.
func OpenSlots(day time.Time, appointments []models.Appointment) []Slot {
	y, m, d := day.Date()
	loc := day.Location()

	var open []Slot
	for hour := firstSlotHour; hour <= lastSlotHour; hour++ {
		slot := time.Date(y, m, d, hour, 0, 0, 0, loc)
		taken := false
		for i := range appointments {
			if !slot.Before(appointments[i].ScheduledDate) && slot.Before(appointments[i].EndsAt()) {
				taken = true
				break
			}
		}
		if taken {
			continue
		}

		period := "PM"
		if hour < 12 {
			period = "AM"
		}
		open = append(open, Slot{Time: slot, Hour: hour, Period: period})
	}
	return open
}

// GetAvailableSlots loads the tutor's live appointments for the calendar day
// and returns the open slots.
func GetAvailableSlots(db *gorm.DB, tutorID uuid.UUID, day time.Time) ([]Slot, error) {
	if err := requireTutor(db, tutorID); err != nil {
		return nil, err
	}

	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var appointments []models.Appointment
	err := db.
		Where("tutor_id = ? AND scheduled_date >= ? AND scheduled_date < ?", tutorID, start.UTC(), end.UTC()).
		Where("status NOT IN ?", []string{models.AppointmentCancelled, models.AppointmentRejected}).
		Find(&appointments).Error
	if err != nil {
		return nil, errors.Wrap(err, "load tutor appointments")
	}
	return OpenSlots(start, appointments), nil
}

func requireTutor(db *gorm.DB, tutorID uuid.UUID) error {
	var tutor models.User
	err := db.First(&tutor, "id = ? AND role = ?", tutorID, models.RoleTutor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Tutor")
	}
	return errors.Wrap(err, "load tutor")
}
