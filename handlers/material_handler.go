package handlers

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxMaterialSize = 50 << 20

type UpdateMaterialRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	IsPublished *bool   `json:"isPublished"`
}

func loadMaterial(tx *gorm.DB, id interface{}) (*models.StudyMaterial, error) {
	var material models.StudyMaterial
	if err := tx.First(&material, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &services.NotFoundError{Resource: "Material"}
		}
		return nil, errors.Wrap(err, "load material")
	}
	return &material, nil
}

func canEditMaterial(p services.Principal, m *models.StudyMaterial) bool {
	return p.IsAdmin() || m.UploadedByID == p.ID
}

// fileType is the extension without the dot, "pdf" when there is none.
func fileType(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "pdf"
	}
	return ext
}

func UploadMaterial(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	if Files == nil {
		return respondError(c, fiber.NewError(fiber.StatusServiceUnavailable, "File storage is not configured"))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, &services.ValidationError{Message: "No file provided"})
	}
	if file.Size > maxMaterialSize {
		return respondError(c, &services.ValidationError{Message: "File is larger than 50MB"})
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return respondError(c, &services.ValidationError{Message: "Title is required"})
	}
	subject, err := loadSubject(database.DB, c.FormValue("subject"))
	if err != nil {
		return respondError(c, err)
	}
	topicID, err := optionalID(c.FormValue("topic"), "topic")
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
	defer cancel()
	stored, err := Files.Upload(ctx, file, materialFolder)
	if err != nil {
		return respondError(c, errors.Wrap(err, "upload material"))
	}

	material := models.StudyMaterial{
		Title:        title,
		Description:  c.FormValue("description"),
		SubjectID:    subject.ID,
		TopicID:      topicID,
		FileURL:      stored.URL,
		FileName:     file.Filename,
		FileType:     fileType(file.Filename),
		FileSize:     file.Size,
		PublicID:     stored.PublicID,
		UploadedByID: p.ID,
		IsPublished:  true,
	}
	if err := database.DB.Omit(clause.Associations).Create(&material).Error; err != nil {
		if delErr := Files.Delete(context.Background(), stored.PublicID); delErr != nil {
			log.Warn().Err(delErr).Str("public_id", stored.PublicID).Msg("failed to remove orphaned upload")
		}
		return respondError(c, errors.Wrap(err, "create material"))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Material uploaded successfully", "material": material})
}

func GetAllMaterials(c *fiber.Ctx) error {
	var materials []models.StudyMaterial
	err := database.DB.Preload("Subject").Preload("Topic").Preload("UploadedBy").
		Where("is_published = ?", true).Order("created_at desc").Find(&materials).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "list materials"))
	}
	return c.JSON(materials)
}

func listMaterialsBy(c *fiber.Ctx, column, param, resource string) error {
	id, err := paramID(c, param, resource)
	if err != nil {
		return respondError(c, err)
	}
	var materials []models.StudyMaterial
	err = database.DB.Preload("UploadedBy").Where(column+" = ?", id).Order("created_at desc").Find(&materials).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "list materials"))
	}
	return c.JSON(materials)
}

func GetMaterialsBySubject(c *fiber.Ctx) error {
	return listMaterialsBy(c, "subject_id", "subjectId", "subject")
}

func GetMaterialsByTopic(c *fiber.Ctx) error {
	return listMaterialsBy(c, "topic_id", "topicId", "topic")
}

func GetMaterialByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "material")
	if err != nil {
		return respondError(c, err)
	}
	material, err := loadMaterial(database.DB.Preload("Subject").Preload("Topic").Preload("UploadedBy"), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(material)
}

func UpdateMaterial(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "material")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateMaterialRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	material, err := loadMaterial(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	if !canEditMaterial(p, material) {
		return respondError(c, &services.AuthorizationError{Message: "Unauthorized"})
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}
	if len(updates) > 0 {
		if err := database.DB.Model(material).Updates(updates).Error; err != nil {
			return respondError(c, errors.Wrap(err, "update material"))
		}
	}

	material, err = loadMaterial(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Material updated successfully", "material": material})
}

func DeleteMaterial(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := paramID(c, "id", "material")
	if err != nil {
		return respondError(c, err)
	}
	material, err := loadMaterial(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	if !canEditMaterial(p, material) {
		return respondError(c, &services.AuthorizationError{Message: "Unauthorized"})
	}

	if err := database.DB.Delete(material).Error; err != nil {
		return respondError(c, errors.Wrap(err, "delete material"))
	}
	if Files != nil && material.PublicID != "" {
		if err := Files.Delete(c.UserContext(), material.PublicID); err != nil {
			log.Warn().Err(err).Str("public_id", material.PublicID).Msg("failed to remove stored file")
		}
	}
	return c.JSON(fiber.Map{"message": "Material deleted successfully"})
}

// DownloadMaterial counts the download and redirects to the stored file.
func DownloadMaterial(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "material")
	if err != nil {
		return respondError(c, err)
	}
	material, err := loadMaterial(database.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	if material.FileURL == "" {
		return respondError(c, &services.NotFoundError{Resource: "File"})
	}

	err = database.DB.Model(material).UpdateColumn("downloads", gorm.Expr("downloads + ?", 1)).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "count download"))
	}
	return c.Redirect(material.FileURL, fiber.StatusFound)
}
