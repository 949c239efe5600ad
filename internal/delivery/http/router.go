package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"pinpoint/internal/delivery/http/controllers"
	"pinpoint/internal/delivery/http/middleware"
	"pinpoint/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	userController *controllers.UserController,
	authController *controllers.AuthController,
	guard domain.AuthorizationGuard,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(guard)

	// Auth
	mux.HandleFunc("POST /auth/register", authController.Register)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("PUT /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))
	mux.HandleFunc("GET /events/{eventID}/calendar.ics", eventController.ExportCalendar)

	// Attendance
	mux.HandleFunc("POST /events/{eventID}/join", auth(eventController.JoinEvent))
	mux.HandleFunc("DELETE /events/{eventID}/join", auth(eventController.UnjoinEvent))
	mux.HandleFunc("POST /events/{eventID}/save", auth(eventController.SaveEvent))
	mux.HandleFunc("DELETE /events/{eventID}/save", auth(eventController.UnsaveEvent))

	// Users
	mux.HandleFunc("GET /users/me", auth(userController.GetMe))
	mux.HandleFunc("PUT /users/me", auth(userController.UpdateMe))
	mux.HandleFunc("GET /users/me/joined-events", auth(eventController.ListJoinedEvents))
	mux.HandleFunc("GET /users/me/saved-events", auth(eventController.ListSavedEvents))
	mux.HandleFunc("GET /users/me/events", auth(eventController.ListOwnedEvents))
	mux.HandleFunc("GET /clubs", userController.ListClubs)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
