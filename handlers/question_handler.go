package handlers

import (
	"strings"

	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateQuestionRequest struct {
	Subject      string  `json:"subject"`
	Topic        string  `json:"topic" validate:"omitempty,uuid"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	ImageURL     *string `json:"imageUrl" validate:"omitempty,url"`
	QuestionType string  `json:"questionType" validate:"omitempty,oneof=mcq text"`
}

type AnswerRequest struct {
	Content string `json:"content" validate:"required"`
}

func loadQuestion(tx *gorm.DB, id interface{}) (*models.Question, error) {
	var q models.Question
	if err := tx.First(&q, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &services.NotFoundError{Resource: "Question"}
		}
		return nil, errors.Wrap(err, "load question")
	}
	return &q, nil
}

func loadAnswer(tx *gorm.DB, id interface{}) (*models.Answer, error) {
	var a models.Answer
	if err := tx.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &services.NotFoundError{Resource: "Answer"}
		}
		return nil, errors.Wrap(err, "load answer")
	}
	return &a, nil
}

func CreateQuestion(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateQuestionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" || req.Subject == "" {
		return respondError(c, &services.ValidationError{Message: "Title, description, and subject are required"})
	}
	subject, err := loadSubject(database.DB, req.Subject)
	if err != nil {
		return respondError(c, err)
	}
	topicID, err := optionalID(req.Topic, "topic")
	if err != nil {
		return respondError(c, err)
	}
	if req.QuestionType == "" {
		req.QuestionType = "text"
	}

	question := models.Question{
		AskedByID:    p.ID,
		SubjectID:    subject.ID,
		TopicID:      topicID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		QuestionType: req.QuestionType,
		Status:       models.QuestionOpen,
	}
	if err := database.DB.Omit(clause.Associations).Create(&question).Error; err != nil {
		return respondError(c, errors.Wrap(err, "create question"))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Question created successfully", "question": question})
}

func GetAllQuestions(c *fiber.Ctx) error {
	q := database.DB.Preload("AskedBy").Preload("Subject").Preload("Topic")
	if subjectID, err := optionalID(c.Query("subject"), "subject"); err != nil {
		return respondError(c, err)
	} else if subjectID != nil {
		q = q.Where("subject_id = ?", *subjectID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var questions []models.Question
	if err := q.Order("created_at desc").Find(&questions).Error; err != nil {
		return respondError(c, errors.Wrap(err, "list questions"))
	}
	return c.JSON(questions)
}

// GetQuestionByID counts a view and returns the question with its answers,
// accepted first and then by helpfulness.
func GetQuestionByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "question")
	if err != nil {
		return respondError(c, err)
	}

	res := database.DB.Model(&models.Question{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return respondError(c, errors.Wrap(res.Error, "count view"))
	}
	if res.RowsAffected == 0 {
		return respondError(c, &services.NotFoundError{Resource: "Question"})
	}

	question, err := loadQuestion(database.DB.Preload("AskedBy").Preload("Subject").Preload("Topic"), id)
	if err != nil {
		return respondError(c, err)
	}
	var answers []models.Answer
	err = database.DB.Preload("AnsweredBy").Where("question_id = ?", id).
		Order("is_accepted desc").Order("helpful_count desc").Order("created_at asc").
		Find(&answers).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "list answers"))
	}
	return c.JSON(fiber.Map{"question": question, "answers": answers})
}

func UpdateQuestion(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "question")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Title       *string `json:"title" validate:"omitempty,min=1"`
		Description *string `json:"description" validate:"omitempty,min=1"`
		Status      *string `json:"status" validate:"omitempty,oneof=open answered closed"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	question, err := loadQuestion(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	if question.AskedByID != p.ID {
		return respondError(c, &services.AuthorizationError{Message: "Only the asker can update this question"})
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := database.DB.Model(question).Updates(updates).Error; err != nil {
			return respondError(c, errors.Wrap(err, "update question"))
		}
	}
	question, err = loadQuestion(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Question updated successfully", "question": question})
}

func DeleteQuestion(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "question")
	if err != nil {
		return respondError(c, err)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		question, err := loadQuestion(tx, id)
		if err != nil {
			return err
		}
		if question.AskedByID != p.ID {
			return &services.AuthorizationError{Message: "Only the asker can delete this question"}
		}
		answers := tx.Model(&models.Answer{}).Select("id").Where("question_id = ?", id)
		if err := tx.Where("answer_id IN (?)", answers).Delete(&models.AnswerVote{}).Error; err != nil {
			return errors.Wrap(err, "delete votes")
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return errors.Wrap(err, "delete answers")
		}
		return errors.Wrap(tx.Delete(question).Error, "delete question")
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Question deleted successfully"})
}

func CreateAnswer(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	questionID, err := paramID(c, "questionId", "question")
	if err != nil {
		return respondError(c, err)
	}
	var req AnswerRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	answer := models.Answer{QuestionID: questionID, AnsweredByID: p.ID, Content: req.Content}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		question, err := loadQuestion(tx, questionID)
		if err != nil {
			return err
		}
		if question.Status == models.QuestionClosed {
			return &services.StateError{Message: "Question is closed"}
		}
		if err := tx.Omit(clause.Associations).Create(&answer).Error; err != nil {
			return errors.Wrap(err, "create answer")
		}
		return errors.Wrap(tx.Model(question).Update("status", models.QuestionAnswered).Error, "mark answered")
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Answer created successfully", "answer": answer})
}

func UpdateAnswer(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "answer")
	if err != nil {
		return respondError(c, err)
	}
	var req AnswerRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	answer, err := loadAnswer(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	if answer.AnsweredByID != p.ID {
		return respondError(c, &services.AuthorizationError{Message: "Only the answerer can update this answer"})
	}
	if err := database.DB.Model(answer).Update("content", req.Content).Error; err != nil {
		return respondError(c, errors.Wrap(err, "update answer"))
	}
	answer.Content = req.Content
	return c.JSON(fiber.Map{"message": "Answer updated successfully", "answer": answer})
}

func DeleteAnswer(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "answer")
	if err != nil {
		return respondError(c, err)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		answer, err := loadAnswer(tx, id)
		if err != nil {
			return err
		}
		if answer.AnsweredByID != p.ID {
			return &services.AuthorizationError{Message: "Only the answerer can delete this answer"}
		}
		if err := tx.Where("answer_id = ?", id).Delete(&models.AnswerVote{}).Error; err != nil {
			return errors.Wrap(err, "delete votes")
		}
		return errors.Wrap(tx.Delete(answer).Error, "delete answer")
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Answer deleted successfully"})
}

// MarkAnswerHelpful toggles the caller's helpful vote.
func MarkAnswerHelpful(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "answer")
	if err != nil {
		return respondError(c, err)
	}

	var answer *models.Answer
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		a, err := loadAnswer(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		res := tx.Where("answer_id = ? AND user_id = ?", id, p.ID).Delete(&models.AnswerVote{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "remove vote")
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.AnswerVote{AnswerID: id, UserID: p.ID}).Error; err != nil {
				return errors.Wrap(err, "add vote")
			}
		}

		var votes int64
		if err := tx.Model(&models.AnswerVote{}).Where("answer_id = ?", id).Count(&votes).Error; err != nil {
			return errors.Wrap(err, "count votes")
		}
		a.HelpfulCount = int(votes)
		answer = a
		return errors.Wrap(tx.Model(a).Update("helpful_count", a.HelpfulCount).Error, "store helpful count")
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Vote recorded", "answer": answer})
}

// MarkAnswerAccepted toggles acceptance; only the question's asker may do it.
func MarkAnswerAccepted(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "answer")
	if err != nil {
		return respondError(c, err)
	}

	answer, err := loadAnswer(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	question, err := loadQuestion(database.DB, answer.QuestionID)
	if err != nil {
		return respondError(c, err)
	}
	if question.AskedByID != p.ID {
		return respondError(c, &services.AuthorizationError{Message: "Only question asker can accept answers"})
	}

	answer.IsAccepted = !answer.IsAccepted
	if err := database.DB.Model(answer).Update("is_accepted", answer.IsAccepted).Error; err != nil {
		return respondError(c, errors.Wrap(err, "accept answer"))
	}
	return c.JSON(fiber.Map{"message": "Answer acceptance updated", "answer": answer})
}
