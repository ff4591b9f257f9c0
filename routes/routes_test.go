package routes

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/testutil"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testSecret = "routes-test-secret"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	prevSecret := config.App.JWTSecret
	config.App.JWTSecret = testSecret
	prevDB := database.DB
	db := testutil.NewDB(t)
	database.DB = db
	t.Cleanup(func() {
		config.App.JWTSecret = prevSecret
		database.DB = prevDB
	})

	app := fiber.New()
	Register(app)
	return app, db
}

func tokenFor(t *testing.T, u models.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID.String(),
		"role":    u.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// call performs a request and decodes the JSON response into out when out is non-nil.
func call(t *testing.T, app *fiber.App, method, path, token string, body, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	var body map[string]interface{}
	assert.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/health", "", nil, &body))
	assert.Equal(t, "Server is running", body["message"])
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	register := map[string]string{
		"name":            "Ada",
		"email":           "Ada@Example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	}
	var created map[string]interface{}
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/auth/register", "", register, &created))
	assert.NotEmpty(t, created["token"])
	user := created["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, models.RoleStudent, user["role"])

	var dup map[string]interface{}
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/auth/register", "", register, &dup))
	assert.Equal(t, "User already exists", dup["message"])

	mismatch := map[string]string{
		"name": "Bob", "email": "bob@example.com", "password": "secret1", "confirmPassword": "other1",
	}
	var mm map[string]interface{}
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/auth/register", "", mismatch, &mm))
	assert.Equal(t, "Passwords do not match", mm["message"])

	var bad map[string]interface{}
	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "ada@example.com", "password": "wrong"}, &bad))
	assert.Equal(t, "Invalid email or password", bad["message"])

	var ok map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "ada@example.com", "password": "secret1"}, &ok))
	token := ok["token"].(string)

	var me map[string]interface{}
	assert.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/auth/current", token, nil, &me))
	assert.Equal(t, "Ada", me["name"])
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	app, _ := newTestApp(t)

	var body map[string]interface{}
	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/api/appointments/my/bookings", "", nil, &body))
	assert.Equal(t, "No token provided", body["message"])
}

func TestBookSessionOverHTTP(t *testing.T) {
	app, db := newTestApp(t)

	tutor := testutil.CreateUser(t, db, "tutor", models.RoleTutor)
	subject := testutil.CreateSubject(t, db, "Physics", tutor.ID)
	session := testutil.CreateSession(t, db, tutor.ID, subject.ID, testutil.FutureTime(48*time.Hour), 1)
	first := testutil.CreateUser(t, db, "first", models.RoleStudent)
	second := testutil.CreateUser(t, db, "second", models.RoleStudent)

	book := map[string]string{"sessionId": session.ID.String()}

	var booked struct {
		Message     string             `json:"message"`
		Appointment models.Appointment `json:"appointment"`
	}
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/appointments/book", tokenFor(t, first), book, &booked))
	assert.Equal(t, "Session booked successfully", booked.Message)
	assert.Equal(t, models.AppointmentBooked, booked.Appointment.Status)
	assert.Equal(t, first.ID, booked.Appointment.StudentID)

	var full map[string]interface{}
	require.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/appointments/book", tokenFor(t, second), book, &full))
	assert.Equal(t, "capacity_full", full["type"])
	assert.EqualValues(t, 1, full["maxCapacity"])
	assert.EqualValues(t, 1, full["bookedCount"])

	var forbidden map[string]interface{}
	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodPost, "/api/appointments/book", tokenFor(t, tutor), book, &forbidden))
	assert.Equal(t, "Access denied for role: tutor", forbidden["message"])

	var invalid map[string]interface{}
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/appointments/book", tokenFor(t, second),
		map[string]string{"sessionId": "nope"}, &invalid))
	assert.Equal(t, "Session ID is required", invalid["message"])

	var bookings []models.Appointment
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/appointments/my/bookings", tokenFor(t, first), nil, &bookings))
	assert.Len(t, bookings, 1)

	var reloaded models.TutorSession
	require.NoError(t, db.First(&reloaded, "id = ?", session.ID).Error)
	assert.Equal(t, 1, reloaded.BookedCount)
	assert.False(t, reloaded.IsAvailable)
}

func TestBookUnknownSessionIsNotFound(t *testing.T) {
	app, db := newTestApp(t)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)

	status := call(t, app, http.MethodPost, "/api/appointments/book", tokenFor(t, student),
		map[string]string{"sessionId": "7c9e6679-7425-40de-944b-e07fc1f90ae7"}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMCQHidesAnswersFromStudents(t *testing.T) {
	app, db := newTestApp(t)

	tutor := testutil.CreateUser(t, db, "tutor", models.RoleTutor)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	subject := testutil.CreateSubject(t, db, "Chemistry", tutor.ID)
	explanation := "Water is H2O"
	mcq := models.MCQ{
		Question:  "What is water?",
		SubjectID: subject.ID,
		Options: datatypes.JSONSlice[models.MCQOption]{
			{Text: "CO2"}, {Text: "H2O", IsCorrect: true},
		},
		Explanation: &explanation,
		Difficulty:  "easy",
		CreatedByID: tutor.ID,
	}
	require.NoError(t, db.Omit("Subject", "Topic", "CreatedBy").Create(&mcq).Error)
	path := "/api/mcq/" + mcq.ID.String()

	var hidden map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, path, tokenFor(t, student), nil, &hidden))
	options := hidden["options"].([]interface{})
	require.Len(t, options, 2)
	assert.NotContains(t, options[1].(map[string]interface{}), "isCorrect")
	assert.Nil(t, hidden["explanation"])

	var shown map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, path+"?hideAnswers=false", tokenFor(t, student), nil, &shown))
	assert.Equal(t, true, shown["options"].([]interface{})[1].(map[string]interface{})["isCorrect"])

	var result struct {
		Feedback struct {
			IsCorrect     bool `json:"isCorrect"`
			CorrectOption int  `json:"correctOption"`
		} `json:"feedback"`
	}
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, path+"/submit", tokenFor(t, student),
		map[string]int{"selectedOption": 0}, &result))
	assert.False(t, result.Feedback.IsCorrect)
	assert.Equal(t, 1, result.Feedback.CorrectOption)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, path+"/submit", tokenFor(t, student),
		map[string]int{"selectedOption": 5}, nil))

	var score map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/mcq/score/summary", tokenFor(t, student), nil, &score))
	assert.EqualValues(t, 1, score["totalAttempts"])
	assert.EqualValues(t, 0, score["correctAttempts"])
}

func TestLearningProgress(t *testing.T) {
	app, db := newTestApp(t)

	tutor := testutil.CreateUser(t, db, "tutor", models.RoleTutor)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	maths := testutil.CreateSubject(t, db, "Maths", tutor.ID)
	art := testutil.CreateSubject(t, db, "Art", tutor.ID)

	day := testutil.FutureTime(24 * time.Hour)
	for _, p := range []models.StudyPlan{
		{StudentID: student.ID, SubjectID: maths.ID, PlannedDate: day, Duration: 30, Status: models.PlanCompleted},
		{StudentID: student.ID, SubjectID: maths.ID, PlannedDate: day, Duration: 30, Status: models.PlanPending},
		{StudentID: student.ID, SubjectID: art.ID, PlannedDate: day, Duration: 45, Status: models.PlanPending},
	} {
		plan := p
		require.NoError(t, db.Omit("Subject", "Topic").Create(&plan).Error)
	}

	var progress struct {
		TotalPlans         int     `json:"totalPlans"`
		CompletedPlans     int     `json:"completedPlans"`
		ProgressPercentage float64 `json:"progressPercentage"`
		PlansBySubject     []struct {
			Total     int `json:"total"`
			Completed int `json:"completed"`
		} `json:"plansBySubject"`
	}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/plans/progress/summary", tokenFor(t, student), nil, &progress))
	assert.Equal(t, 3, progress.TotalPlans)
	assert.Equal(t, 1, progress.CompletedPlans)
	assert.InDelta(t, 33.33, progress.ProgressPercentage, 0.001)
	assert.Len(t, progress.PlansBySubject, 2)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app, db := newTestApp(t)

	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodGet, "/api/admin/dashboard-analytics", tokenFor(t, student), nil, nil))

	var analytics map[string]interface{}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/admin/dashboard-analytics", tokenFor(t, admin), nil, &analytics))
	assert.EqualValues(t, 1, analytics["totalStudents"])
}

func TestQuestionAnswerFlow(t *testing.T) {
	app, db := newTestApp(t)

	tutor := testutil.CreateUser(t, db, "tutor", models.RoleTutor)
	asker := testutil.CreateUser(t, db, "asker", models.RoleStudent)
	subject := testutil.CreateSubject(t, db, "History", tutor.ID)

	var missing map[string]interface{}
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/questions", tokenFor(t, asker),
		map[string]string{"subject": subject.ID.String(), "title": "When?"}, &missing))
	assert.Equal(t, "Title, description, and subject are required", missing["message"])

	var asked struct {
		Question models.Question `json:"question"`
	}
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/questions", tokenFor(t, asker),
		map[string]string{"subject": subject.ID.String(), "title": "When?", "description": "Which year?"}, &asked))
	assert.Equal(t, models.QuestionOpen, asked.Question.Status)

	var answered struct {
		Answer models.Answer `json:"answer"`
	}
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost,
		"/api/questions/"+asked.Question.ID.String()+"/answers", tokenFor(t, tutor),
		map[string]string{"content": "1066"}, &answered))

	helpful := "/api/questions/answers/" + answered.Answer.ID.String() + "/helpful"
	var voted struct {
		Answer models.Answer `json:"answer"`
	}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPatch, helpful, tokenFor(t, asker), nil, &voted))
	assert.Equal(t, 1, voted.Answer.HelpfulCount)
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPatch, helpful, tokenFor(t, asker), nil, &voted))
	assert.Equal(t, 0, voted.Answer.HelpfulCount)

	accept := "/api/questions/answers/" + answered.Answer.ID.String() + "/accept"
	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodPatch, accept, tokenFor(t, tutor), nil, nil))

	var accepted struct {
		Answer models.Answer `json:"answer"`
	}
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPatch, accept, tokenFor(t, asker), nil, &accepted))
	assert.True(t, accepted.Answer.IsAccepted)

	var reloaded models.Question
	require.NoError(t, db.First(&reloaded, "id = ?", asked.Question.ID).Error)
	assert.Equal(t, models.QuestionAnswered, reloaded.Status)
}
