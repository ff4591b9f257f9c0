package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/services"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRespondErrorStatuses(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &services.ValidationError{Message: "Invalid session ID"}, http.StatusBadRequest, "Invalid session ID"},
		{"duplicate", &services.DuplicateBookingError{}, http.StatusBadRequest, "You already booked this session"},
		{"authorization", errors.Wrap(&services.AuthorizationError{Message: "Not yours"}, "cancel"), http.StatusForbidden, "cancel: Not yours"},
		{"not found", &services.NotFoundError{Resource: "Session"}, http.StatusNotFound, "Session not found"},
		{"record not found", errors.Wrap(gorm.ErrRecordNotFound, "load"), http.StatusNotFound, "Resource not found"},
		{"fiber", fiber.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			raw, _ := io.ReadAll(resp.Body)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestOptionalID(t *testing.T) {
	id, err := optionalID("  ", "subject")
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = optionalID("abc", "subject")
	var vErr *services.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Invalid subject ID", vErr.Message)
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 1, day.Day())

	_, err = parseDay("2026-03-01T09:30:00Z")
	assert.NoError(t, err)

	_, err = parseDay("yesterday")
	assert.Error(t, err)
}

func TestPercentageRoundsToTwoPlaces(t *testing.T) {
	assert.Equal(t, 0.0, percentage(3, 0))
	assert.Equal(t, 66.67, percentage(2, 3))
	assert.Equal(t, 100.0, percentage(4, 4))
}

func TestFileType(t *testing.T) {
	assert.Equal(t, "docx", fileType("Notes.DOCX"))
	assert.Equal(t, "pdf", fileType("README"))
}

func TestHideAnswersKeepsOptionText(t *testing.T) {
	explanation := "because"
	m := models.MCQ{
		Question:    "2+2?",
		Options:     []models.MCQOption{{Text: "3"}, {Text: "4", IsCorrect: true}},
		Explanation: &explanation,
	}

	raw, err := json.Marshal(hideAnswers(m))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "isCorrect")
	assert.NotContains(t, string(raw), "because")
	assert.Contains(t, string(raw), `"text":"4"`)
	assert.False(t, hasCorrectOption([]models.MCQOption{{Text: "a"}}))
}
