package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires every endpoint; middlewares run in the given order.
func NewRouter(h *Handler, middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares...)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)         // GET /tasks
		r.Post("/", h.PostTask)         // POST /tasks
		r.Get("/filter", h.FilterTasks) // GET /tasks/filter
		r.Get("/stats", h.TaskStats)    // GET /tasks/stats
		r.Post("/assign", h.AssignTask) // POST /tasks/assign

		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.GetTask)            // GET /tasks/{id}
			r.Patch("/", h.UpdateTaskStatus) // PATCH /tasks/{id}
			r.Put("/", h.UpdateTask)         // PUT /tasks/{id}
			r.Delete("/", h.DeleteTask)      // DELETE /tasks/{id}
			r.Get("/users", h.TaskUsers)     // GET /tasks/{id}/users
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)         // GET /users
		r.Post("/", h.PostUser)         // POST /users
		r.Post("/assign", h.AssignUser) // POST /users/assign

		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.GetUser)        // GET /users/{id}
			r.Put("/", h.UpdateUser)     // PUT /users/{id}
			r.Patch("/", h.UpdateUser)   // PATCH /users/{id}
			r.Delete("/", h.DeleteUser)  // DELETE /users/{id}
			r.Get("/tasks", h.UserTasks) // GET /users/{id}/tasks
		})
	})

	r.Get("/health", h.HealthCheck)
	return r
}
