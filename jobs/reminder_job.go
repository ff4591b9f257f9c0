package jobs

import (
	"time"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/notifications"
	"github.com/anjiri1684/study_hub/services"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// reminderWindow matches the cron interval so each appointment is reminded once.
const reminderWindow = 5 * time.Minute

var sendEmail = notifications.SendEmail

func SendSessionReminders() {
	sent, err := sendReminders(database.DB, time.Now(), config.App.ReminderLeadTime)
	if err != nil {
		log.Error().Err(err).Msg("session reminder job failed")
		return
	}
	if sent > 0 {
		log.Info().Int("appointments", sent).Msg("session reminders sent")
	}
}

func sendReminders(db *gorm.DB, now time.Time, lead time.Duration) (int, error) {
	appointments, err := services.DueReminders(db, now.Add(lead), reminderWindow)
	if err != nil {
		return 0, err
	}

	loc := config.App.Location()
	for _, a := range appointments {
		link := ""
		if a.MeetingLink != nil {
			link = *a.MeetingLink
		}
		subject, body := notifications.SessionReminder(subjectOf(a), a.ScheduledDate.In(loc), link)
		if a.Student != nil {
			go sendEmail(a.Student.Name, a.Student.Email, subject, body)
		}
		if a.Tutor != nil {
			go sendEmail(a.Tutor.Name, a.Tutor.Email, subject, body)
		}
	}
	return len(appointments), nil
}

func subjectOf(a models.Appointment) string {
	if a.Subject == nil {
		return "tutoring"
	}
	return a.Subject.Name
}
