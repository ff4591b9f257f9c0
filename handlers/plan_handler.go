package handlers

import (
	"math"
	"time"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreatePlanRequest struct {
	Subject     string    `json:"subject" validate:"required,uuid"`
	Topic       string    `json:"topic" validate:"omitempty,uuid"`
	PlannedDate time.Time `json:"plannedDate" validate:"required"`
	Duration    int       `json:"duration" validate:"required,gt=0"`
	Notes       string    `json:"notes"`
}

type UpdatePlanRequest struct {
	Subject     *string    `json:"subject" validate:"omitempty,uuid"`
	Topic       *string    `json:"topic" validate:"omitempty,uuid"`
	PlannedDate *time.Time `json:"plannedDate"`
	Duration    *int       `json:"duration" validate:"omitempty,gt=0"`
	Notes       *string    `json:"notes"`
	Status      *string    `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
}

type SubjectProgress struct {
	SubjectID uuid.UUID `json:"subjectId"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
}

type LearningProgress struct {
	TotalPlans         int               `json:"totalPlans"`
	CompletedPlans     int               `json:"completedPlans"`
	ProgressPercentage float64           `json:"progressPercentage"`
	PlansBySubject     []SubjectProgress `json:"plansBySubject"`
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// loadOwnPlan finds a plan belonging to the caller; other students' plans read as missing.
func loadOwnPlan(p services.Principal, id uuid.UUID) (*models.StudyPlan, error) {
	var plan models.StudyPlan
	err := database.DB.Preload("Subject").Preload("Topic").
		First(&plan, "id = ? AND student_id = ?", id, p.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &services.NotFoundError{Resource: "Plan"}
	}
	return &plan, errors.Wrap(err, "load plan")
}

func CreatePlan(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, &services.ValidationError{Message: "Cannot parse JSON"})
	}
	if validate.Struct(req) != nil {
		return respondError(c, &services.ValidationError{Message: "Subject, planned date, and duration are required"})
	}
	subject, err := loadSubject(database.DB, req.Subject)
	if err != nil {
		return respondError(c, err)
	}
	topicID, err := optionalID(req.Topic, "topic")
	if err != nil {
		return respondError(c, err)
	}

	plan := models.StudyPlan{
		StudentID:   p.ID,
		SubjectID:   subject.ID,
		TopicID:     topicID,
		PlannedDate: req.PlannedDate.UTC(),
		Duration:    req.Duration,
		Status:      models.PlanPending,
		Notes:       req.Notes,
	}
	if err := database.DB.Omit(clause.Associations).Create(&plan).Error; err != nil {
		return respondError(c, errors.Wrap(err, "create plan"))
	}

	created, err := loadOwnPlan(p, plan.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Study plan created successfully", "plan": created})
}

func GetStudentPlans(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	var plans []models.StudyPlan
	err = database.DB.Preload("Subject").Preload("Topic").
		Where("student_id = ?", p.ID).Order("planned_date asc").Find(&plans).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "list plans"))
	}
	return c.JSON(plans)
}

// GetPlansByDateRange takes startDate and endDate as YYYY-MM-DD; both days are included.
func GetPlansByDateRange(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	loc := config.App.Location()
	start, err := time.ParseInLocation(dayLayout, c.Query("startDate"), loc)
	if err != nil {
		return respondError(c, &services.ValidationError{Message: "startDate must be YYYY-MM-DD"})
	}
	end, err := time.ParseInLocation(dayLayout, c.Query("endDate"), loc)
	if err != nil {
		return respondError(c, &services.ValidationError{Message: "endDate must be YYYY-MM-DD"})
	}
	if end.Before(start) {
		return respondError(c, &services.ValidationError{Message: "endDate is before startDate"})
	}

	var plans []models.StudyPlan
	err = database.DB.Preload("Subject").Preload("Topic").
		Where("student_id = ? AND planned_date >= ? AND planned_date < ?", p.ID, start.UTC(), end.AddDate(0, 0, 1).UTC()).
		Order("planned_date asc").Find(&plans).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "list plans by range"))
	}
	return c.JSON(plans)
}

func UpdatePlan(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "plan")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdatePlanRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	plan, err := loadOwnPlan(p, id)
	if err != nil {
		return respondError(c, err)
	}

	updates := map[string]interface{}{}
	if req.Subject != nil {
		subject, err := loadSubject(database.DB, *req.Subject)
		if err != nil {
			return respondError(c, err)
		}
		updates["subject_id"] = subject.ID
	}
	if req.Topic != nil {
		topicID, err := optionalID(*req.Topic, "topic")
		if err != nil {
			return respondError(c, err)
		}
		updates["topic_id"] = topicID
	}
	if req.PlannedDate != nil {
		updates["planned_date"] = req.PlannedDate.UTC()
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		if *req.Status == models.PlanCompleted {
			updates["completed_at"] = time.Now().UTC()
		} else {
			updates["completed_at"] = nil
		}
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&models.StudyPlan{}).Where("id = ?", plan.ID).Updates(updates).Error; err != nil {
			return respondError(c, errors.Wrap(err, "update plan"))
		}
	}

	plan, err = loadOwnPlan(p, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Plan updated successfully", "plan": plan})
}

func CompletePlan(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "plan")
	if err != nil {
		return respondError(c, err)
	}
	plan, err := loadOwnPlan(p, id)
	if err != nil {
		return respondError(c, err)
	}

	err = database.DB.Model(&models.StudyPlan{}).Where("id = ?", plan.ID).Updates(map[string]interface{}{
		"status":       models.PlanCompleted,
		"completed_at": time.Now().UTC(),
	}).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "complete plan"))
	}

	plan, err = loadOwnPlan(p, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Plan marked as completed", "plan": plan})
}

func DeletePlan(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "plan")
	if err != nil {
		return respondError(c, err)
	}
	res := database.DB.Delete(&models.StudyPlan{}, "id = ? AND student_id = ?", id, p.ID)
	if res.Error != nil {
		return respondError(c, errors.Wrap(res.Error, "delete plan"))
	}
	if res.RowsAffected == 0 {
		return respondError(c, &services.NotFoundError{Resource: "Plan"})
	}
	return c.JSON(fiber.Map{"message": "Plan deleted successfully"})
}

func GetLearningProgress(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}

	var rows []struct {
		SubjectID uuid.UUID
		Total     int
		Completed int
	}
	err = database.DB.Model(&models.StudyPlan{}).
		Select("subject_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed", models.PlanCompleted).
		Where("student_id = ?", p.ID).
		Group("subject_id").
		Scan(&rows).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "aggregate plans"))
	}

	progress := LearningProgress{PlansBySubject: make([]SubjectProgress, 0, len(rows))}
	for _, r := range rows {
		progress.TotalPlans += r.Total
		progress.CompletedPlans += r.Completed
		progress.PlansBySubject = append(progress.PlansBySubject, SubjectProgress{
			SubjectID: r.SubjectID, Total: r.Total, Completed: r.Completed,
		})
	}
	progress.ProgressPercentage = percentage(progress.CompletedPlans, progress.TotalPlans)
	return c.JSON(progress)
}
