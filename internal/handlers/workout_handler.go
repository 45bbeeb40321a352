package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/juhum/We-Go-Jim/internal/middleware"
	"github.com/juhum/We-Go-Jim/internal/models"
	"github.com/juhum/We-Go-Jim/internal/services"
)

type workoutPlanService interface {
	SubmitPlan(ctx context.Context, targetEmail string, plan []models.DayWorkout) error
	GetUserData(ctx context.Context, sub string) (*models.UserDocument, error)
	GetRecords(ctx context.Context, sub string) (*models.RecordsDocument, error)
	UpdateRecords(ctx context.Context, sub string, records []models.LiftRecord) error
	ListStudents(ctx context.Context, trainerSub string) ([]string, error)
	AddStudent(ctx context.Context, trainerSub, studentEmail string) error
}

type sessionReader interface {
	Get(ctx context.Context, token string) (*models.Session, error)
}

type WorkoutHandler struct {
	service  workoutPlanService
	sessions sessionReader
}

func NewWorkoutHandler(service workoutPlanService, sessions sessionReader) *WorkoutHandler {
	return &WorkoutHandler{service: service, sessions: sessions}
}

type addWorkoutRequest struct {
	Email       string              `json:"email"`
	WorkoutPlan []models.DayWorkout `json:"workout_plan"`
}

type updateRecordsRequest struct {
	RecordsList []models.LiftRecord `json:"records_list"`
}

type addStudentRequest struct {
	Email string `json:"email"`
}

// AddWorkout runs behind the session guard but writes whoever the submitted
// email resolves to, not the session user.
// TODO: switch the target to the session identity (or an explicit
// trainer-to-student assignment) once it is decided who may write whose plan.
func (h *WorkoutHandler) AddWorkout(c *fiber.Ctx) error {
	var req addWorkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "email is required"})
	}

	if err := h.service.SubmitPlan(c.Context(), req.Email, req.WorkoutPlan); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"success": false, "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to save workout plan"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// MyWorkouts checks the session by hand instead of going through the shared
// guard; unlike the guard it answers JSON 401 rather than redirecting.
func (h *WorkoutHandler) MyWorkouts(c *fiber.Ctx) error {
	session, ok := h.resolveSession(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	data, err := h.service.GetUserData(c.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, services.ErrDataNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User data not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to load user data"})
	}

	return c.Render("my_workouts", fiber.Map{
		"UserSub":     data.UserSub,
		"WorkoutPlan": data.WorkoutPlan,
	})
}

func (h *WorkoutHandler) MyRecords(c *fiber.Ctx) error {
	session, ok := h.resolveSession(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	records, err := h.service.GetRecords(c.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, services.ErrDataNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User data not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to load records"})
	}

	return c.Render("my_records", fiber.Map{
		"UserSub":     records.UserSub,
		"RecordsList": records.RecordsList,
	})
}

func (h *WorkoutHandler) UpdateRecords(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
	}

	var req updateRecordsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "Invalid request body"})
	}

	if err := h.service.UpdateRecords(c.Context(), userID, req.RecordsList); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to save records"})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *WorkoutHandler) MyStudents(c *fiber.Ctx) error {
	trainerSub, ok := requireTrainer(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	students, err := h.service.ListStudents(c.Context(), trainerSub)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to load students"})
	}

	return c.JSON(fiber.Map{"students": students})
}

func (h *WorkoutHandler) AddStudent(c *fiber.Ctx) error {
	trainerSub, ok := requireTrainer(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	var req addStudentRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"success": false, "message": "email is required"})
	}

	if err := h.service.AddStudent(c.Context(), trainerSub, req.Email); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).
				JSON(fiber.Map{"success": false, "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"success": false, "message": "Failed to add student"})
	}

	return c.JSON(fiber.Map{"success": true})
}

func (h *WorkoutHandler) resolveSession(c *fiber.Ctx) (*models.Session, bool) {
	token := c.Cookies(middleware.SessionCookieName)
	if token == "" {
		return nil, false
	}
	session, err := h.sessions.Get(c.Context(), token)
	if err != nil {
		return nil, false
	}
	return session, true
}

func requireTrainer(c *fiber.Ctx) (string, bool) {
	role, ok := c.Locals("role").(string)
	if !ok || role != models.RoleTrainer {
		return "", false
	}
	trainerSub, ok := c.Locals("user_id").(string)
	if !ok || trainerSub == "" {
		return "", false
	}
	return trainerSub, true
}
