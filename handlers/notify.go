package handlers

import (
	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/notifications"
	"github.com/anjiri1684/study_hub/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// announce pushes event to the recipients' open sockets and e-mails them.
// Call it only after the change has committed.
func announce(recipients []uuid.UUID, event websocket.Event, subject, body string) {
	if len(recipients) == 0 {
		return
	}
	websocket.Notify(event, recipients...)

	var users []models.User
	if err := database.DB.Where("id IN ?", recipients).Find(&users).Error; err != nil {
		log.Warn().Err(err).Str("event", event.Type).Msg("could not load notification recipients")
		return
	}
	for _, u := range users {
		go notifications.SendEmail(u.Name, u.Email, subject, body)
	}
}

func studentIDs(appointments []models.Appointment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(appointments))
	for _, a := range appointments {
		ids = append(ids, a.StudentID)
	}
	return ids
}

func subjectName(s *models.Subject) string {
	if s == nil {
		return "tutoring"
	}
	return s.Name
}
