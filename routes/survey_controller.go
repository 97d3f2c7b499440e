package routes

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/survey-studio/app"
	"github.com/mbolis/survey-studio/database"
	"github.com/mbolis/survey-studio/httpx"
	"github.com/mbolis/survey-studio/log"
	"github.com/mbolis/survey-studio/model"
	"github.com/mbolis/survey-studio/routes/middlewares"
)

const maxNameLength = 1 << 10

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}

		if errs := checkSurvey(survey); len(errs) > 0 {
			httpx.LogInvalid(w, r, "create_survey.validate", errs)
			return
		}

		surveyId, err := database.CreateSurvey(r.Context(), app.DB, middlewares.UserID(r), survey)
		if err != nil {
			httpx.LogInternalError(w, r, "db.insert_survey", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, model.Created{SurveyID: surveyId})
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := database.ListSurveys(r.Context(), app.DB, middlewares.UserID(r))
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, surveys)
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		survey, err := database.GetSurvey(r.Context(), app.DB, middlewares.UserID(r), surveyId)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, r, "get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_survey", err)
			return
		}

		render.JSON(w, r, survey)
	}
}

func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		survey := model.Survey{}
		err := render.DecodeJSON(r.Body, &survey)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}

		if errs := checkSurvey(survey); len(errs) > 0 {
			httpx.LogInvalid(w, r, "update_survey.validate", errs)
			return
		}

		err = database.UpdateSurvey(r.Context(), app.DB, middlewares.UserID(r), surveyId, survey)
		switch {
		case errors.Is(err, database.ErrNotFound):
			httpx.LogNotFound(w, r, "update_survey", surveyId)
		case errors.Is(err, database.ErrPublished):
			httpx.LogStatusMsg(w, r, http.StatusForbidden, log.DebugLevel, "update_survey.published", "published surveys cannot be changed")
		case errors.Is(err, database.ErrUnknownID):
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "update_survey.ids", "%s", err)
		case err != nil:
			httpx.LogInternalError(w, r, "db.update_survey", err)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		err := database.DeleteSurvey(r.Context(), app.DB, middlewares.UserID(r), surveyId)
		switch {
		case errors.Is(err, database.ErrNotFound):
			httpx.LogNotFound(w, r, "delete_survey", surveyId)
		case errors.Is(err, database.ErrPublished):
			httpx.LogStatusMsg(w, r, http.StatusForbidden, log.DebugLevel, "delete_survey.published", "published surveys cannot be deleted")
		case err != nil:
			httpx.LogInternalError(w, r, "db.delete_survey", err)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

// DuplicateSurvey copies a survey. The request body is the plain text name of
// the copy.
func DuplicateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := surveyIdParam(w, r)
		if !ok {
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxNameLength+1))
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.read_body")
			return
		}
		name := strings.TrimSpace(string(body))
		if name == "" || len(body) > maxNameLength {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "duplicate_survey.name", "a name of at most %d bytes is required", maxNameLength)
			return
		}

		newId, err := database.DuplicateSurvey(r.Context(), app.DB, middlewares.UserID(r), surveyId, name)
		if errors.Is(err, database.ErrNotFound) {
			httpx.LogNotFound(w, r, "duplicate_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.duplicate_survey", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, model.Created{SurveyID: newId})
	}
}

func surveyIdParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	surveyId, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return 0, false
	}
	return surveyId, true
}
