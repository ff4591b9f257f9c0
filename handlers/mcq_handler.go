package handlers

import (
	"strings"
	"time"

	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MCQRequest struct {
	Question    string             `json:"question" validate:"required"`
	Subject     string             `json:"subject" validate:"required,uuid"`
	Topic       string             `json:"topic" validate:"omitempty,uuid"`
	Options     []models.MCQOption `json:"options" validate:"required,min=2,dive"`
	Explanation *string            `json:"explanation"`
	Difficulty  string             `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type UpdateMCQRequest struct {
	Question    *string            `json:"question" validate:"omitempty,min=1"`
	Options     []models.MCQOption `json:"options" validate:"omitempty,min=2,dive"`
	Explanation *string            `json:"explanation"`
	Difficulty  *string            `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type hiddenOption struct {
	Text string `json:"text"`
}

// studentMCQ shadows the fields that would give the answer away.
type studentMCQ struct {
	models.MCQ
	Options     []hiddenOption `json:"options"`
	Explanation *string        `json:"explanation"`
}

func hideAnswers(m models.MCQ) studentMCQ {
	opts := make([]hiddenOption, len(m.Options))
	for i, o := range m.Options {
		opts[i] = hiddenOption{Text: o.Text}
	}
	return studentMCQ{MCQ: m, Options: opts}
}

func hasCorrectOption(opts []models.MCQOption) bool {
	for _, o := range opts {
		if o.IsCorrect {
			return true
		}
	}
	return false
}

func loadMCQ(tx *gorm.DB, id interface{}) (*models.MCQ, error) {
	var m models.MCQ
	if err := tx.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &services.NotFoundError{Resource: "MCQ"}
		}
		return nil, errors.Wrap(err, "load mcq")
	}
	return &m, nil
}

func canEditMCQ(p services.Principal, m *models.MCQ) bool {
	return p.IsAdmin() || m.CreatedByID == p.ID
}

func CreateMCQ(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	var req MCQRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if !hasCorrectOption(req.Options) {
		return respondError(c, &services.ValidationError{Message: "At least one option must be marked as correct"})
	}
	subject, err := loadSubject(database.DB, req.Subject)
	if err != nil {
		return respondError(c, err)
	}
	topicID, err := optionalID(req.Topic, "topic")
	if err != nil {
		return respondError(c, err)
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	mcq := models.MCQ{
		Question:    strings.TrimSpace(req.Question),
		SubjectID:   subject.ID,
		TopicID:     topicID,
		Options:     datatypes.JSONSlice[models.MCQOption](req.Options),
		Explanation: req.Explanation,
		Difficulty:  req.Difficulty,
		CreatedByID: p.ID,
	}
	if err := database.DB.Omit(clause.Associations).Create(&mcq).Error; err != nil {
		return respondError(c, errors.Wrap(err, "create mcq"))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "MCQ created successfully", "mcq": mcq})
}

func listMCQsBy(c *fiber.Ctx, column, param, resource string) error {
	id, err := paramID(c, param, resource)
	if err != nil {
		return respondError(c, err)
	}
	var mcqs []models.MCQ
	err = database.DB.Preload("CreatedBy").Preload("Subject").Preload("Topic").
		Where(column+" = ?", id).Order("created_at asc").Find(&mcqs).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "list mcqs"))
	}
	return c.JSON(mcqs)
}

func GetMCQsBySubject(c *fiber.Ctx) error {
	return listMCQsBy(c, "subject_id", "subjectId", "subject")
}

func GetMCQsByTopic(c *fiber.Ctx) error {
	return listMCQsBy(c, "topic_id", "topicId", "topic")
}

// GetMCQByID hides correct answers and the explanation unless hideAnswers=false.
func GetMCQByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "MCQ")
	if err != nil {
		return respondError(c, err)
	}
	mcq, err := loadMCQ(database.DB.Preload("CreatedBy").Preload("Subject").Preload("Topic"), id)
	if err != nil {
		return respondError(c, err)
	}
	if c.Query("hideAnswers") != "false" {
		return c.JSON(hideAnswers(*mcq))
	}
	return c.JSON(mcq)
}

func UpdateMCQ(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "MCQ")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateMCQRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	mcq, err := loadMCQ(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	if !canEditMCQ(p, mcq) {
		return respondError(c, &services.AuthorizationError{Message: "Unauthorized"})
	}

	updates := map[string]interface{}{}
	if req.Question != nil {
		updates["question"] = *req.Question
	}
	if req.Options != nil {
		if !hasCorrectOption(req.Options) {
			return respondError(c, &services.ValidationError{Message: "At least one option must be marked as correct"})
		}
		updates["options"] = datatypes.JSONSlice[models.MCQOption](req.Options)
	}
	if req.Explanation != nil {
		updates["explanation"] = *req.Explanation
	}
	if req.Difficulty != nil {
		updates["difficulty"] = *req.Difficulty
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&models.MCQ{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return respondError(c, errors.Wrap(err, "update mcq"))
		}
	}

	mcq, err = loadMCQ(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "MCQ updated successfully", "mcq": mcq})
}

func DeleteMCQ(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "MCQ")
	if err != nil {
		return respondError(c, err)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		mcq, err := loadMCQ(tx, id)
		if err != nil {
			return err
		}
		if !canEditMCQ(p, mcq) {
			return &services.AuthorizationError{Message: "Unauthorized"}
		}
		if err := tx.Where("mcq_id = ?", id).Delete(&models.MCQAttempt{}).Error; err != nil {
			return errors.Wrap(err, "delete attempts")
		}
		return errors.Wrap(tx.Delete(mcq).Error, "delete mcq")
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "MCQ deleted successfully"})
}

// SubmitMCQAnswer records an attempt and returns feedback including the correct option.
func SubmitMCQAnswer(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "mcqId", "MCQ")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		SelectedOption *int `json:"selectedOption" validate:"required,gte=0"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	mcq, err := loadMCQ(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	selected := *req.SelectedOption
	if selected >= len(mcq.Options) {
		return respondError(c, &services.ValidationError{Message: "Selected option does not exist"})
	}

	attempt := models.MCQAttempt{
		StudentID:      p.ID,
		MCQID:          mcq.ID,
		SelectedOption: selected,
		IsCorrect:      mcq.Options[selected].IsCorrect,
		AttemptedAt:    time.Now().UTC(),
	}
	if err := database.DB.Omit(clause.Associations).Create(&attempt).Error; err != nil {
		return respondError(c, errors.Wrap(err, "record attempt"))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Answer submitted",
		"attempt": fiber.Map{
			"id":             attempt.ID,
			"isCorrect":      attempt.IsCorrect,
			"selectedOption": attempt.SelectedOption,
		},
		"feedback": fiber.Map{
			"isCorrect":     attempt.IsCorrect,
			"explanation":   mcq.Explanation,
			"correctOption": mcq.CorrectOption(),
		},
	})
}

// attemptsQuery scopes the caller's attempts, optionally to MCQs of one subject or topic.
func attemptsQuery(studentID uuid.UUID, subjectID, topicID *uuid.UUID) *gorm.DB {
	q := database.DB.Model(&models.MCQAttempt{}).Where("mcq_attempts.student_id = ?", studentID)
	if subjectID != nil || topicID != nil {
		q = q.Joins("JOIN mcqs ON mcqs.id = mcq_attempts.mcq_id")
		if subjectID != nil {
			q = q.Where("mcqs.subject_id = ?", *subjectID)
		}
		if topicID != nil {
			q = q.Where("mcqs.topic_id = ?", *topicID)
		}
	}
	return q
}

func GetUserMCQAttempts(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	subjectID, err := optionalID(c.Query("subject"), "subject")
	if err != nil {
		return respondError(c, err)
	}

	var attempts []models.MCQAttempt
	err = attemptsQuery(p.ID, subjectID, nil).
		Preload("MCQ.Subject").Preload("MCQ.Topic").
		Order("mcq_attempts.attempted_at desc").
		Find(&attempts).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "list attempts"))
	}
	for i := range attempts {
		if attempts[i].MCQ != nil {
			attempts[i].MCQ.Options = nil
		}
	}
	return c.JSON(attempts)
}

func GetQuizScore(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	subjectID, err := optionalID(c.Query("subjectId"), "subject")
	if err != nil {
		return respondError(c, err)
	}
	topicID, err := optionalID(c.Query("topicId"), "topic")
	if err != nil {
		return respondError(c, err)
	}

	var total, correct int64
	if err := attemptsQuery(p.ID, subjectID, topicID).Count(&total).Error; err != nil {
		return respondError(c, errors.Wrap(err, "count attempts"))
	}
	err = attemptsQuery(p.ID, subjectID, topicID).Where("mcq_attempts.is_correct = ?", true).Count(&correct).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "count correct attempts"))
	}

	return c.JSON(fiber.Map{
		"totalAttempts":     total,
		"correctAttempts":   correct,
		"incorrectAttempts": total - correct,
		"scorePercentage":   percentage(int(correct), int(total)),
	})
}
