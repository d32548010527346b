package routes

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"tasks-api/app/controllers"
)

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, taskController *controllers.TaskController) {
	router.HandleFunc("/", controllers.Root).Methods(http.MethodGet)
	router.HandleFunc("/api/health", controllers.Health).Methods(http.MethodGet)

	router.HandleFunc("/api/tasks", taskController.GetTasks).Methods(http.MethodGet)
	router.HandleFunc("/api/tasks/", taskController.GetTasks).Methods(http.MethodGet)
	router.HandleFunc("/api/tasks", taskController.CreateTask).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks/", taskController.CreateTask).Methods(http.MethodPost)
	router.HandleFunc("/api/tasks/categories", taskController.GetCategories).Methods(http.MethodGet)
	router.HandleFunc("/api/tasks/{taskID}", taskController.GetTaskByID).Methods(http.MethodGet)
	router.HandleFunc("/api/tasks/{taskID}", taskController.UpdateTask).Methods(http.MethodPut)
	router.HandleFunc("/api/tasks/{taskID}", taskController.DeleteTask).Methods(http.MethodDelete)
	router.HandleFunc("/api/tasks/{taskID}/complete", taskController.ToggleTask).Methods(http.MethodPatch)
}

// NewRouter builds the application handler: the route table wrapped in the
// middleware chain, so 404 and 405 responses carry CORS headers too.
func NewRouter(taskController *controllers.TaskController, allowedOrigins []string, logger *log.Logger) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, taskController)
	return Wrap(router, allowedOrigins, logger)
}
