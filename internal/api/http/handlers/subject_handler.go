package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/service"
)

// SubjectHandler exposes subject provisioning for administrators.
type SubjectHandler struct {
	auth *service.AuthService
}

// NewSubjectHandler constructs handler.
func NewSubjectHandler(authService *service.AuthService) *SubjectHandler {
	return &SubjectHandler{auth: authService}
}

// Create handles POST /api/subjects.
func (h *SubjectHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	subject, err := h.auth.CreateSubject(c.UserContext(), req.Username, req.Name, req.Password, role)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			return fiber.NewError(http.StatusConflict, "username already taken")
		}
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"id":       subject.ID,
			"username": subject.Username,
			"name":     subject.Name,
			"role":     subject.Role,
		},
	})
}
