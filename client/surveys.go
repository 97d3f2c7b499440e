package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mbolis/survey-studio/model"
)

func surveyPath(id int64) string {
	return fmt.Sprintf("/api/surveys/%d", id)
}

func (c *Client) ListSurveys(ctx context.Context) ([]model.Survey, error) {
	var surveys []model.Survey
	status, _, err := c.doJSON(ctx, http.MethodGet, "/api/surveys", nil, &surveys)
	if err != nil || !ok(status) {
		return nil, &FetchError{Op: "list surveys", Status: status, Err: err}
	}
	if surveys == nil {
		surveys = []model.Survey{}
	}
	return surveys, nil
}

func (c *Client) GetSurvey(ctx context.Context, id int64) (model.Survey, error) {
	var s model.Survey
	status, _, err := c.doJSON(ctx, http.MethodGet, surveyPath(id), nil, &s)
	if err != nil || !ok(status) {
		return model.Survey{}, &FetchError{Op: fmt.Sprintf("get survey %d", id), Status: status, Err: err}
	}
	return s, nil
}

// CreateSurvey stores a new survey and returns its id.
func (c *Client) CreateSurvey(ctx context.Context, s model.Survey) (int64, error) {
	var created model.Created
	status, body, err := c.doJSON(ctx, http.MethodPost, "/api/surveys", s, &created)
	if err := submissionError(status, body, err); err != nil {
		return 0, err
	}
	return created.SurveyID, nil
}

func (c *Client) UpdateSurvey(ctx context.Context, id int64, s model.Survey) error {
	status, body, err := c.doJSON(ctx, http.MethodPut, surveyPath(id), s, nil)
	return submissionError(status, body, err)
}

func submissionError(status int, body []byte, err error) error {
	if err != nil {
		return &SubmissionError{Status: status, Message: err.Error(), Err: err}
	}
	if !ok(status) {
		return &SubmissionError{Status: status, Message: errorMessage(body, msgSaveFailed)}
	}
	return nil
}

func (c *Client) DeleteSurvey(ctx context.Context, id int64) error {
	status, _, err := c.doJSON(ctx, http.MethodDelete, surveyPath(id), nil, nil)
	switch {
	case err != nil:
		return &FetchError{Op: fmt.Sprintf("delete survey %d", id), Err: err}
	case status == http.StatusForbidden:
		return &DeleteForbiddenError{SurveyID: id}
	case !ok(status):
		return &FetchError{Op: fmt.Sprintf("delete survey %d", id), Status: status}
	}
	return nil
}

// DuplicateSurvey copies a survey under a new name. The name travels as a
// plain text body.
func (c *Client) DuplicateSurvey(ctx context.Context, id int64, name string) (int64, error) {
	header := http.Header{"Content-Type": {"text/plain"}}
	var created model.Created
	status, _, err := c.exchange(ctx, http.MethodPost, surveyPath(id)+"/duplicate", strings.NewReader(name), header, &created)
	if err != nil || !ok(status) {
		return 0, &DuplicateError{SurveyID: id, Status: status, Err: err}
	}
	return created.SurveyID, nil
}
