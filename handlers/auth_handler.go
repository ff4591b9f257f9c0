package handlers

import (
	"strings"
	"time"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/anjiri1684/study_hub/database"
	"github.com/anjiri1684/study_hub/models"
	"github.com/anjiri1684/study_hub/notifications"
	"github.com/anjiri1684/study_hub/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Role            string `json:"role" validate:"omitempty,oneof=student tutor"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func newUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email, Role: u.Role}
}

// issueToken signs the claims the auth middleware and websocket hub read.
func issueToken(u models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID.String(),
		"role":    u.Role,
		"exp":     time.Now().Add(config.App.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.App.JWTSecret))
}

func RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Password != req.ConfirmPassword {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Passwords do not match"})
	}
	if req.Role == "" {
		req.Role = models.RoleStudent
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, errors.Wrap(err, "hash password"))
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(req.Email),
		Password: string(hashedPassword),
		Role:     req.Role,
		IsActive: true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "User already exists"})
		}
		return respondError(c, errors.Wrap(err, "create user"))
	}

	token, err := issueToken(user)
	if err != nil {
		return respondError(c, errors.Wrap(err, "sign token"))
	}

	subject, body := notifications.Welcome(user.Name)
	go notifications.SendEmail(user.Name, user.Email, subject, body)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   token,
		"user":    newUserResponse(user),
	})
}

func LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}
	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Account is deactivated"})
	}

	token, err := issueToken(user)
	if err != nil {
		return respondError(c, errors.Wrap(err, "sign token"))
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    newUserResponse(user),
	})
}

func GetCurrentUser(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return respondError(c, err)
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", p.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, &services.NotFoundError{Resource: "User"})
		}
		return respondError(c, err)
	}
	return c.JSON(user)
}
