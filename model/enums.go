package model

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

// ParseStatus accepts any casing and surrounding blanks.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusDraft):
		return StatusDraft, nil
	case string(StatusPublished):
		return StatusPublished, nil
	}
	return "", fmt.Errorf("unknown survey status %q", s)
}

func (s *Status) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = ""
		return nil
	}
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Label is the human readable form used in listings. A missing status reads
// "-"; unknown ones never get this far since UnmarshalText rejects them.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPublished:
		return "Published"
	}
	return "-"
}

type QuestionType string

const (
	QuestionText   QuestionType = "Text"
	QuestionLikert QuestionType = "Likert"
)

// DefaultLikertScale is the scale a new Likert question starts with.
const DefaultLikertScale = "1,2,3,4,5"

func ParseQuestionType(s string) (QuestionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return QuestionText, nil
	case "likert":
		return QuestionLikert, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

func (t *QuestionType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = ""
		return nil
	}
	parsed, err := ParseQuestionType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
