package handlers

import (
	"strings"
	"time"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/anjiri1684/study_hub/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var validate = validator.New()

const dayLayout = "2006-01-02"

// principal builds the caller identity from the token Protected stored in Locals.
func principal(c *fiber.Ctx) (services.Principal, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return services.Principal{}, fiber.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return services.Principal{}, fiber.ErrUnauthorized
	}
	raw, _ := claims["user_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return services.Principal{}, fiber.ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	return services.Principal{ID: id, Role: role}, nil
}

func paramID(c *fiber.Ctx, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &services.ValidationError{Message: "Invalid " + resource + " ID"}
	}
	return id, nil
}

// optionalID parses an optional id from a query or body value; empty means none.
func optionalID(raw, resource string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &services.ValidationError{Message: "Invalid " + resource + " ID"}
	}
	return &id, nil
}

// parseDay reads YYYY-MM-DD in the configured zone, or a full RFC 3339 instant.
func parseDay(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation(dayLayout, raw, config.App.Location()); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &services.ValidationError{Message: "Invalid date: " + raw}
	}
	return t, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return &services.ValidationError{Message: "Cannot parse JSON"}
	}
	if err := validate.Struct(out); err != nil {
		return &services.ValidationError{Message: err.Error()}
	}
	return nil
}

// respondError maps service errors onto HTTP statuses. Anything unrecognised
// is logged and reported as a 500.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validationErr *services.ValidationError
		authErr       *services.AuthorizationError
		notFoundErr   *services.NotFoundError
		stateErr      *services.StateError
		capacityErr   *services.CapacityError
		fullErr       *services.CapacityFullError
		duplicateErr  *services.DuplicateBookingError
		fiberErr      *fiber.Error
	)

	switch {
	case errors.As(err, &fullErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":     fullErr.Error(),
			"type":        "capacity_full",
			"maxCapacity": fullErr.MaxCapacity,
			"bookedCount": fullErr.BookedCount,
		})
	case errors.As(err, &validationErr), errors.As(err, &stateErr),
		errors.As(err, &capacityErr), errors.As(err, &duplicateErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.As(err, &authErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
	case errors.As(err, &notFoundErr), errors.Is(err, gorm.ErrRecordNotFound):
		msg := "Resource not found"
		if notFoundErr != nil {
			msg = notFoundErr.Error()
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": msg})
	case errors.As(err, &fiberErr):
		return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
}
