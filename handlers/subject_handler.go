package handlers

import (
	"strings"

	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/services"
	"github.com/anjiri1684/study_hub/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Code        string `json:"code" validate:"omitempty,max=20"`
}

type TopicRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Subject     string `json:"subject" validate:"required,uuid"`
}

func loadSubject(tx *gorm.DB, id interface{}) (*models.Subject, error) {
	var subject models.Subject
	if err := tx.First(&subject, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &services.NotFoundError{Resource: "Subject"}
		}
		return nil, errors.Wrap(err, "load subject")
	}
	return &subject, nil
}

// canEditSubject: admins edit everything, tutors only what they created.
func canEditSubject(p services.Principal, s *models.Subject) bool {
	return p.IsAdmin() || s.CreatedByID == p.ID
}

func CreateSubject(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	var req SubjectRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	subject := models.Subject{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		CreatedByID: p.ID,
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if subject.Code == "" {
			code, err := utils.GenerateUniqueSubjectCode(tx, subject.Name)
			if err != nil {
				return err
			}
			subject.Code = code
		}
		return tx.Omit(clause.Associations).Create(&subject).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return respondError(c, &services.ValidationError{Message: "Subject code already exists"})
		}
		return respondError(c, errors.Wrap(err, "create subject"))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Subject created successfully", "subject": subject})
}

func GetAllSubjects(c *fiber.Ctx) error {
	var subjects []models.Subject
	err := database.DB.Preload("Topics").Preload("CreatedBy").Order("name asc").Find(&subjects).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "list subjects"))
	}
	return c.JSON(subjects)
}

func GetSubjectByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "subject")
	if err != nil {
		return respondError(c, err)
	}
	subject, err := loadSubject(database.DB.Preload("Topics").Preload("CreatedBy"), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(subject)
}

func UpdateSubject(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "subject")
	if err != nil {
		return respondError(c, err)
	}
	var req SubjectRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	subject, err := loadSubject(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	if !canEditSubject(p, subject) {
		return respondError(c, &services.AuthorizationError{Message: "Unauthorized"})
	}

	updates := map[string]interface{}{"name": strings.TrimSpace(req.Name), "description": req.Description}
	if code := strings.ToUpper(strings.TrimSpace(req.Code)); code != "" {
		updates["code"] = code
	}
	if err := database.DB.Model(subject).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return respondError(c, &services.ValidationError{Message: "Subject code already exists"})
		}
		return respondError(c, errors.Wrap(err, "update subject"))
	}

	subject, err = loadSubject(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subject updated successfully", "subject": subject})
}

// DeleteSubject removes a subject and its topics. Subjects still referenced by
// tutor sessions are kept so session history stays intact.
func DeleteSubject(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "subject")
	if err != nil {
		return respondError(c, err)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		subject, err := loadSubject(tx, id)
		if err != nil {
			return err
		}
		if !canEditSubject(p, subject) {
			return &services.AuthorizationError{Message: "Unauthorized"}
		}

		var sessions int64
		if err := tx.Model(&models.TutorSession{}).Where("subject_id = ?", id).Count(&sessions).Error; err != nil {
			return errors.Wrap(err, "count subject sessions")
		}
		if sessions > 0 {
			return &services.StateError{Message: "Subject has tutor sessions and cannot be deleted"}
		}

		if err := tx.Where("subject_id = ?", id).Delete(&models.Topic{}).Error; err != nil {
			return errors.Wrap(err, "delete topics")
		}
		return errors.Wrap(tx.Delete(subject).Error, "delete subject")
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Subject deleted successfully"})
}

func CreateTopic(c *fiber.Ctx) error {
	var req TopicRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	subject, err := loadSubject(database.DB, req.Subject)
	if err != nil {
		return respondError(c, err)
	}

	topic := models.Topic{Name: strings.TrimSpace(req.Name), Description: req.Description, SubjectID: subject.ID}
	if err := database.DB.Omit(clause.Associations).Create(&topic).Error; err != nil {
		return respondError(c, errors.Wrap(err, "create topic"))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Topic created successfully", "topic": topic})
}

func GetTopicsBySubject(c *fiber.Ctx) error {
	id, err := paramID(c, "subjectId", "subject")
	if err != nil {
		return respondError(c, err)
	}
	var topics []models.Topic
	if err := database.DB.Where("subject_id = ?", id).Order("name asc").Find(&topics).Error; err != nil {
		return respondError(c, errors.Wrap(err, "list topics"))
	}
	return c.JSON(topics)
}

func UpdateTopic(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "topic")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	res := database.DB.Model(&models.Topic{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": strings.TrimSpace(req.Name), "description": req.Description})
	if res.Error != nil {
		return respondError(c, errors.Wrap(res.Error, "update topic"))
	}
	if res.RowsAffected == 0 {
		return respondError(c, &services.NotFoundError{Resource: "Topic"})
	}

	var topic models.Topic
	if err := database.DB.First(&topic, "id = ?", id).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Topic updated successfully", "topic": topic})
}

func DeleteTopic(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "topic")
	if err != nil {
		return respondError(c, err)
	}
	res := database.DB.Delete(&models.Topic{}, "id = ?", id)
	if res.Error != nil {
		return respondError(c, errors.Wrap(res.Error, "delete topic"))
	}
	if res.RowsAffected == 0 {
		return respondError(c, &services.NotFoundError{Resource: "Topic"})
	}
	return c.JSON(fiber.Map{"message": "Topic deleted successfully"})
}
