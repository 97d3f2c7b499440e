package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-studio/app"
	"github.com/mbolis/survey-studio/database"
	"github.com/mbolis/survey-studio/httpx"
	"github.com/mbolis/survey-studio/log"
	"github.com/mbolis/survey-studio/model"
)

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred := model.Credentials{}
		err := render.DecodeJSON(r.Body, &cred)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "login.parse_body")
			return
		}
		cred.Email = strings.TrimSpace(cred.Email)

		userID, err := httpx.VerifyCredentials(r.Context(), app.DB, cred.Email, cred.Password)
		if errors.Is(err, httpx.ErrBadCredentials) {
			httpx.LogStatusMsg(w, r, http.StatusUnauthorized, log.DebugLevel, "login.credentials", "%s", err)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "login.verify", err)
			return
		}

		issueToken(w, r, app, userID, http.StatusOK)
	}
}

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := model.Registration{}
		err := render.DecodeJSON(r.Body, &reg)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "register.parse_body")
			return
		}
		reg.Name = strings.TrimSpace(reg.Name)
		reg.Email = strings.TrimSpace(reg.Email)

		if errs := check(reg); len(errs) > 0 {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "register.validate", "%s", errs[0].DefaultMessage)
			return
		}

		userID, err := httpx.RegisterUser(r.Context(), app.DB, reg.Name, reg.Email, reg.Password)
		if errors.Is(err, database.ErrEmailTaken) {
			httpx.LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "register.email", "%s", err)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.insert_user", err)
			return
		}

		issueToken(w, r, app, userID, http.StatusCreated)
	}
}

func issueToken(w http.ResponseWriter, r *http.Request, app app.App, userID int64, status int) {
	token, err := app.Tokens.Issue(userID)
	if err != nil {
		httpx.LogInternalError(w, r, "token.issue", err)
		return
	}

	log.Debugf("token issued for user %d", userID)
	render.Status(r, status)
	render.JSON(w, r, model.AuthResponse{Token: token})
}
