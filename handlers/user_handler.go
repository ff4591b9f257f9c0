package handlers

import (
	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=1"`
	Bio            *string `json:"bio"`
	Phone          *string `json:"phone"`
	University     *string `json:"university"`
	Specialization *string `json:"specialization"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
}

func loadUser(id interface{}) (*models.User, error) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &services.NotFoundError{Resource: "User"}
		}
		return nil, errors.Wrap(err, "load user")
	}
	return &user, nil
}

func GetUserProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "user")
	if err != nil {
		return respondError(c, err)
	}
	user, err := loadUser(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func UpdateProfile(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.University != nil {
		updates["university"] = *req.University
	}
	if req.Specialization != nil {
		updates["specialization"] = *req.Specialization
	}
	if req.ProfilePicture != nil {
		updates["profile_picture"] = *req.ProfilePicture
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&models.User{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			return respondError(c, errors.Wrap(err, "update profile"))
		}
	}

	user, err := loadUser(p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "user": user})
}

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Order("created_at desc").Find(&users).Error; err != nil {
		return respondError(c, errors.Wrap(err, "list users"))
	}
	return c.JSON(users)
}

func GetAllTutors(c *fiber.Ctx) error {
	var tutors []models.User
	err := database.DB.Where("role = ? AND is_active = ?", models.RoleTutor, true).
		Order("name asc").Find(&tutors).Error
	if err != nil {
		return respondError(c, errors.Wrap(err, "list tutors"))
	}
	return c.JSON(tutors)
}

func DeactivateAccount(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := database.DB.Model(&models.User{}).Where("id = ?", p.ID).Update("is_active", false).Error; err != nil {
		return respondError(c, errors.Wrap(err, "deactivate account"))
	}
	return c.JSON(fiber.Map{"message": "Account deactivated successfully"})
}

// UpdateUserStatus lets an admin activate or deactivate any account.
func UpdateUserStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "user")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		IsActive *bool `json:"isActive" validate:"required"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", id).Update("is_active", *req.IsActive)
	if res.Error != nil {
		return respondError(c, errors.Wrap(res.Error, "update user status"))
	}
	if res.RowsAffected == 0 {
		return respondError(c, &services.NotFoundError{Resource: "User"})
	}
	return c.JSON(fiber.Map{"message": "User status updated successfully"})
}
