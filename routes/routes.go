package routes

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"

	"github.com/mbolis/survey-studio/app"
	"github.com/mbolis/survey-studio/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID, middlewares.RequestLog, middlewares.JSONErrors, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/auth/login", Login(app))
	api.Post("/auth/register", Register(app))

	api.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(app.Tokens.Auth()), middlewares.Authenticated)

		// CRUD survey
		r.Post("/surveys", CreateSurvey(app))
		r.Get("/surveys", ListSurveys(app))
		r.Get(`/surveys/{id:^\d+$}`, GetSurveyById(app))
		r.Put(`/surveys/{id:^\d+$}`, UpdateSurvey(app))
		r.Delete(`/surveys/{id:^\d+$}`, DeleteSurvey(app))

		r.Post(`/surveys/{id:^\d+$}/duplicate`, DuplicateSurvey(app))
	})

	return api
}
