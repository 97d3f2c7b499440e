package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-studio/log"
	"github.com/mbolis/survey-studio/model"
)

// Error sends an HTTP response with the given status and a JSON message.
func Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, model.ErrorBody{Message: msg})
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	Error(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// Will log a debug message, and send an HTTP response with status 404
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	Error(w, r, http.StatusNotFound, fmt.Sprintf("survey %v not found", id))
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.Log(level, code)
	Error(w, r, status, http.StatusText(status))
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	Error(w, r, status, errMsg)
}

// Will log the rejected fields at debug level, and send an HTTP response with
// status 400 listing them
func LogInvalid(w http.ResponseWriter, r *http.Request, code string, errs []model.FieldError) {
	log.WithFields(log.Fields{"code": code, "errors": errs}).Debug("invalid request")
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, model.ErrorBody{Errors: errs})
}
