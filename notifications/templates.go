package notifications

import (
	"fmt"
	"html"
	"time"
)

const dateLayout = "Mon, 02 Jan 2006 15:04 MST"

func BookingConfirmed(subject string, at time.Time) (string, string) {
	return "Your session is booked",
		fmt.Sprintf("<h1>Booking confirmed</h1><p>You have a place in the %s session on %s.</p>",
			html.EscapeString(subject), at.Format(dateLayout))
}

func SessionCancelled(subject string, at time.Time) (string, string) {
	return "Session cancelled",
		fmt.Sprintf("<h1>Session cancelled</h1><p>Your tutor cancelled the %s session planned for %s.</p>",
			html.EscapeString(subject), at.Format(dateLayout))
}

func SessionRescheduled(subject string, from, to time.Time) (string, string) {
	return "Session rescheduled",
		fmt.Sprintf("<h1>Session rescheduled</h1><p>The %s session moved from %s to %s.</p>",
			html.EscapeString(subject), from.Format(dateLayout), to.Format(dateLayout))
}

func RemovedFromSession(subject string, at time.Time) (string, string) {
	return "Removed from session",
		fmt.Sprintf("<h1>Booking cancelled</h1><p>Your tutor removed you from the %s session on %s.</p>",
			html.EscapeString(subject), at.Format(dateLayout))
}

func AppointmentDecision(status string, at time.Time, meetingLink string) (string, string) {
	body := fmt.Sprintf("<h1>Appointment %s</h1><p>Your appointment on %s was %s.</p>", status, at.Format(dateLayout), status)
	if meetingLink != "" {
		body += fmt.Sprintf("<p><b>Meeting Link:</b> <a href='%s'>Join</a></p>", html.EscapeString(meetingLink))
	}
	return "Appointment " + status, body
}

func SessionReminder(subject string, at time.Time, meetingLink string) (string, string) {
	body := fmt.Sprintf("<h1>Session Reminder</h1><p>Your %s session starts at %s.</p>",
		html.EscapeString(subject), at.Format(time.Kitchen))
	if meetingLink != "" {
		body += fmt.Sprintf("<p><b>Meeting Link:</b> <a href='%s'>Join Session</a></p>", html.EscapeString(meetingLink))
	}
	return "Reminder: your session starts soon", body
}

func Welcome(name string) (string, string) {
	return "Welcome to Study Hub",
		fmt.Sprintf("<h1>Welcome, %s!</h1><p>Thank you for registering.</p>", html.EscapeString(name))
}
