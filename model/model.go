package model

// DateTimeLayout is the wire format of survey start and end dates.
const DateTimeLayout = "2006-01-02T15:04:05"

type Survey struct {
	SurveyID    int64     `json:"surveyId,omitempty"`
	Name        string    `json:"name" validate:"required"`
	Status      Status    `json:"status" validate:"required,oneof=DRAFT PUBLISHED"`
	StartDate   *string   `json:"startDate" validate:"omitempty,datetime=2006-01-02T15:04:05"`
	EndDate     *string   `json:"endDate" validate:"omitempty,datetime=2006-01-02T15:04:05"`
	UsersToSend []string  `json:"usersToSend" validate:"dive,required"`
	Sections    []Section `json:"sections,omitempty" validate:"required,min=1,dive"`
}

type Section struct {
	SectionID   *int64     `json:"sectionId,omitempty"`
	SectionName string     `json:"sectionName"`
	Priority    int        `json:"priority" validate:"min=1"`
	Questions   []Question `json:"questions" validate:"dive"`
}

type Question struct {
	QuestionID       *int64       `json:"questionId,omitempty"`
	QuestionText     string       `json:"questionText"`
	QuestionType     QuestionType `json:"questionType" validate:"required,oneof=Text Likert"`
	QuestionPriority int          `json:"questionPriority" validate:"min=1"`
	QuestionAnswers  string       `json:"questionAnswers" validate:"required_if=QuestionType Likert"`
}

// Published reports whether the survey can no longer be edited or deleted.
func (s Survey) Published() bool {
	return s.Status == StatusPublished
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type Created struct {
	SurveyID int64 `json:"surveyId"`
}

// ErrorBody is the shape of every non-2xx JSON response.
type ErrorBody struct {
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field          string `json:"field"`
	DefaultMessage string `json:"defaultMessage"`
}
