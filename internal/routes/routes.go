package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/juhum/We-Go-Jim/internal/config"
	"github.com/juhum/We-Go-Jim/internal/handlers"
	"github.com/juhum/We-Go-Jim/internal/middleware"
	"github.com/juhum/We-Go-Jim/internal/repository"
	"github.com/juhum/We-Go-Jim/internal/services"
)

func RegisterRoutes(
	app *fiber.App,
	cfg *config.Config,
	identity services.CredentialGateway,
	storage services.StorageService,
	sessions *repository.SessionRepository,
) {
	authService := services.NewAuthService(identity, storage, sessions)
	workoutService := services.NewWorkoutService(identity, storage)

	authHandler := handlers.NewAuthHandler(authService, cfg.SessionTTL)
	workoutHandler := handlers.NewWorkoutHandler(workoutService, sessions)
	pageHandler := handlers.NewPageHandler()

	guard := middleware.SessionRequired(sessions)

	app.Get("/", pageHandler.Home)
	app.Get("/login", pageHandler.LoginPage)
	app.Post("/login", authHandler.Login)
	app.Get("/register", pageHandler.RegisterPage)
	app.Post("/register", authHandler.Register)
	app.Post("/logout", authHandler.Logout)

	app.Get("/dashboard", guard, pageHandler.Dashboard)
	app.Get("/add-workout", guard, pageHandler.AddWorkoutPage)
	app.Post("/add-workout", guard, workoutHandler.AddWorkout)
	app.Post("/my-records", guard, workoutHandler.UpdateRecords)
	app.Get("/my-students", guard, workoutHandler.MyStudents)
	app.Post("/add-student", guard, workoutHandler.AddStudent)

	// These two check the session themselves and answer JSON 401 instead of
	// the guard's redirect.
	app.Get("/my-workouts", workoutHandler.MyWorkouts)
	app.Get("/my-records", workoutHandler.MyRecords)
}
