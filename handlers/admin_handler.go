package handlers

import (
	"math"
	"strconv"
	"time"

	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/metrics"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type DashboardAnalyticsResponse struct {
	TotalStudents      int64                `json:"totalStudents"`
	TotalTutors        int64                `json:"totalTutors"`
	ScheduledSessions  int64                `json:"scheduledSessions"`
	ActiveBookings     int64                `json:"activeBookings"`
	BookingsLast30Days int64                `json:"bookingsLast30Days"`
	RecentBookings     []models.Appointment `json:"recentBookings"`
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	var response DashboardAnalyticsResponse
	db := database.DB
	thirtyDaysAgo := time.Now().UTC().AddDate(0, 0, -30)

	counts := []struct {
		dest  *int64
		model interface{}
		query string
		args  []interface{}
	}{
		{&response.TotalStudents, &models.User{}, "role = ?", []interface{}{models.RoleStudent}},
		{&response.TotalTutors, &models.User{}, "role = ?", []interface{}{models.RoleTutor}},
		{&response.ScheduledSessions, &models.TutorSession{}, "status = ?", []interface{}{models.SessionScheduled}},
		{&response.ActiveBookings, &models.Appointment{}, "status = ?", []interface{}{models.AppointmentBooked}},
		{&response.BookingsLast30Days, &models.Appointment{}, "tutor_session_id IS NOT NULL AND created_at > ?", []interface{}{thirtyDaysAgo}},
	}
	for _, q := range counts {
		if err := db.Model(q.model).Where(q.query, q.args...).Count(q.dest).Error; err != nil {
			return respondError(c, errors.Wrap(err, "dashboard counts"))
		}
	}

	err := db.Preload("Student").Preload("Tutor").Preload("Subject").
		Where("tutor_session_id IS NOT NULL").
		Order("created_at desc").Limit(5).Find(&response.RecentBookings).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "recent bookings"))
	}
	return c.JSON(response)
}

func AdminGetAllAppointments(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	status := c.Query("status")
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Appointment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return respondError(c, errors.Wrap(err, "count appointments"))
	}
	var appointments []models.Appointment
	err := query.Order("created_at desc").Offset(offset).Limit(limit).
		Preload("Student").Preload("Tutor").Preload("Subject").
		Find(&appointments).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "list appointments"))
	}

	return c.JSON(fiber.Map{
		"data": appointments,
		"meta": fiber.Map{
			"total":    total,
			"page":     page,
			"lastPage": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// ReconcileSessionCapacity recomputes one session's cached counters on demand.
func ReconcileSessionCapacity(c *fiber.Ctx) error {
	id, err := paramID(c, "sessionId", "session")
	if err != nil {
		return respondError(c, err)
	}
	drifted, err := services.ReconcileSession(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	if drifted {
		metrics.CapacityDrift.Inc()
	}
	session, err := services.GetSessionDetails(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Session capacity reconciled", "drifted": drifted, "session": session})
}
