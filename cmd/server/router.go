package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/studyplan-api/internal/api"
	apiMiddleware "github.com/phrazzld/studyplan-api/internal/api/middleware"
)

// setupRouter registers middleware, the health check and every API route.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(middleware.Recoverer)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	goalHandler := api.NewGoalHandler(app.goalService, app.logger)
	planHandler := api.NewPlanHandler(app.planService, app.taskService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	statusHandler := api.NewStatusHandler(app.statusService, app.logger)
	curriculumHandler := api.NewCurriculumHandler(app.curriculumService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/goal", goalHandler.GetGoal)
		r.Put("/goal", goalHandler.SaveGoal)

		r.Route("/plans", func(r chi.Router) {
			r.Post("/generate", planHandler.GeneratePlan)
			r.Post("/parse-description", planHandler.ParseDescription)
			r.Post("/manual", planHandler.CreateManualPlan)
			r.Get("/active", planHandler.GetActivePlan)
			r.Post("/active/abandon", planHandler.AbandonActivePlan)
			r.Post("/{planID}/complete", planHandler.CompletePlan)
			r.Get("/{planID}/tasks", planHandler.ListTasks)
			r.Post("/{planID}/tasks", planHandler.AddManualTask)
			r.Post("/{planID}/reschedule-overdue", planHandler.RescheduleOverdue)
		})

		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Post("/complete", taskHandler.CompleteTask)
			r.Post("/reset", taskHandler.ResetTask)
			r.Post("/skip", taskHandler.SkipTask)
			r.Post("/reschedule", taskHandler.RescheduleTask)
		})

		r.Get("/status", statusHandler.GetStatus)

		r.Get("/curriculum", curriculumHandler.GetCurriculum)
		r.Post("/subjects", curriculumHandler.CreateSubject)
		r.Post("/curriculum/items", curriculumHandler.CreateItem)
		r.Patch("/curriculum/items/{itemID}", curriculumHandler.UpdateItemFlags)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response")
		}
	})

	return r
}
