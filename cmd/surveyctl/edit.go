package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mbolis/survey-studio/draft"
	"github.com/mbolis/survey-studio/model"
)

var opsHelp = []string{
	"name=NAME  status=DRAFT|PUBLISHED  start=DATETIME  end=DATETIME  users=A,B",
	"add-section[=NAME]  section-name=S:NAME  remove-section=S  section-up=S  section-down=S",
	"add-question=S:Text|Likert[:TEXT]  remove-question=S:Q  question-up=S:Q  question-down=S:Q",
	"question-text=S:Q:TEXT  question-type=S:Q:Text|Likert  question-answers=S:Q:SCALE",
}

var surveyFields = map[string]draft.Field{
	"name":   draft.FieldName,
	"status": draft.FieldStatus,
	"start":  draft.FieldStartDate,
	"end":    draft.FieldEndDate,
	"users":  draft.FieldUsersToSend,
}

var questionFields = map[string]draft.Field{
	"question-text":    draft.FieldQuestionText,
	"question-type":    draft.FieldQuestionType,
	"question-answers": draft.FieldQuestionAnswers,
}

// applyOps runs every operation on the form, stopping at the first one that
// cannot be applied.
func applyOps(f *draft.Form, ops []string) error {
	for _, op := range ops {
		if err := applyOp(f, op); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func applyOp(f *draft.Form, op string) error {
	key, value, hasValue := strings.Cut(op, "=")

	if field, ok := surveyFields[key]; ok {
		return f.SetField(draft.SurveyField(field), value)
	}
	if field, ok := questionFields[key]; ok {
		s, q, rest, err := questionRef(f, value, true)
		if err != nil {
			return err
		}
		return f.SetField(draft.QuestionField(s, q, field), rest)
	}

	switch key {
	case "add-section":
		f.AddSection()
		if hasValue {
			last := len(f.Draft().Sections) - 1
			return f.SetField(draft.SectionField(last, draft.FieldSectionName), value)
		}
		return nil

	case "section-name":
		ref, name, ok := strings.Cut(value, ":")
		if !ok {
			return fmt.Errorf("expected S:NAME")
		}
		s, err := sectionRef(f, ref)
		if err != nil {
			return err
		}
		return f.SetField(draft.SectionField(s, draft.FieldSectionName), name)

	case "remove-section":
		s, err := sectionRef(f, value)
		if err != nil {
			return err
		}
		if len(f.Draft().Sections) == 1 {
			return fmt.Errorf("a survey keeps at least one section")
		}
		f.RemoveSection(s)
		return nil

	case "section-up", "section-down":
		s, err := sectionRef(f, value)
		if err != nil {
			return err
		}
		f.MoveSection(s, direction(key))
		return nil

	case "add-question":
		parts := strings.SplitN(value, ":", 3)
		if len(parts) < 2 {
			return fmt.Errorf("expected S:TYPE[:TEXT]")
		}
		s, err := sectionRef(f, parts[0])
		if err != nil {
			return err
		}
		t, err := model.ParseQuestionType(parts[1])
		if err != nil {
			return err
		}
		if err := f.AddQuestion(s, t); err != nil {
			return err
		}
		if len(parts) == 3 {
			q := len(f.Draft().Sections[s].Questions) - 1
			return f.SetField(draft.QuestionField(s, q, draft.FieldQuestionText), parts[2])
		}
		return nil

	case "remove-question":
		s, q, _, err := questionRef(f, value, false)
		if err != nil {
			return err
		}
		f.RemoveQuestion(s, q)
		return nil

	case "question-up", "question-down":
		s, q, _, err := questionRef(f, value, false)
		if err != nil {
			return err
		}
		f.MoveQuestion(s, q, direction(key))
		return nil
	}
	return fmt.Errorf("unknown operation %q", key)
}

func direction(key string) draft.Direction {
	if strings.HasSuffix(key, "-up") {
		return draft.Up
	}
	return draft.Down
}

// sectionRef turns a 1-based section number into an index of the form's
// draft.
func sectionRef(f *draft.Form, ref string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil {
		return 0, fmt.Errorf("bad section number %q", ref)
	}
	if n < 1 || n > len(f.Draft().Sections) {
		return 0, fmt.Errorf("no section %d", n)
	}
	return n - 1, nil
}

// questionRef parses "S:Q" or, with withValue, "S:Q:VALUE".
func questionRef(f *draft.Form, value string, withValue bool) (s, q int, rest string, err error) {
	parts := strings.SplitN(value, ":", 3)
	if len(parts) < 2 || (withValue && len(parts) < 3) {
		if withValue {
			return 0, 0, "", fmt.Errorf("expected S:Q:VALUE")
		}
		return 0, 0, "", fmt.Errorf("expected S:Q")
	}
	if s, err = sectionRef(f, parts[0]); err != nil {
		return 0, 0, "", err
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, "", fmt.Errorf("bad question number %q", parts[1])
	}
	if n < 1 || n > len(f.Draft().Sections[s].Questions) {
		return 0, 0, "", fmt.Errorf("no question %d in section %d", n, s+1)
	}
	if len(parts) == 3 {
		rest = parts[2]
	}
	return s, n - 1, rest, nil
}
