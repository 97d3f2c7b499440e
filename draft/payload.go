package draft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/survey-studio/model"
)

var (
	ErrNameRequired = errors.New("survey name is required")
	ErrLikertScale  = errors.New("likert question needs a scale")
)

// NormalizeDateTime turns a date input into its wire form. Surrounding blanks
// are dropped first, then minute precision values ("2024-05-01T10:30") gain a
// ":00" seconds component, anything else passes through, and an empty input
// means no date.
func NormalizeDateTime(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if len(value) == len("2006-01-02T15:04") {
		value += ":00"
	}
	return &value
}

// SplitRecipients parses the comma separated recipients input.
func SplitRecipients(input string) []string {
	users := make([]string, 0)
	for _, u := range strings.Split(input, ",") {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}
	return users
}

// Payload builds the submission body. Existing sections and questions keep
// their identifiers; new ones are sent without.
func (d Draft) Payload() (model.Survey, error) {
	var errs *multierror.Error
	if strings.TrimSpace(d.Name) == "" {
		errs = multierror.Append(errs, ErrNameRequired)
	}

	sections := make([]model.Section, len(d.Sections))
	for i, s := range d.Sections {
		questions := make([]model.Question, len(s.Questions))
		for j, q := range s.Questions {
			if q.Type == model.QuestionLikert && strings.TrimSpace(q.Answers) == "" {
				errs = multierror.Append(errs, fmt.Errorf("section %d, question %d: %w", i+1, j+1, ErrLikertScale))
			}
			answers := q.Answers
			if q.Type == model.QuestionText {
				answers = ""
			}
			questions[j] = model.Question{
				QuestionID:       q.ID.ptr(),
				QuestionText:     q.Text,
				QuestionType:     q.Type,
				QuestionPriority: q.priority,
				QuestionAnswers:  answers,
			}
		}
		sections[i] = model.Section{
			SectionID:   s.ID.ptr(),
			SectionName: s.Name,
			Priority:    s.priority,
			Questions:   questions,
		}
	}

	if errs != nil {
		errs.ErrorFormat = joinErrors
		return model.Survey{}, errs
	}

	return model.Survey{
		Name:        d.Name,
		Status:      d.Status,
		StartDate:   NormalizeDateTime(d.StartDate),
		EndDate:     NormalizeDateTime(d.EndDate),
		UsersToSend: SplitRecipients(d.UsersToSend),
		Sections:    sections,
	}, nil
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
