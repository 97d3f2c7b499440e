package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mbolis/survey-studio/log"
	"github.com/mbolis/survey-studio/model"
)

var (
	ErrReadOnly         = errors.New("published surveys are read-only")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrSubmitted        = errors.New("survey already submitted")
	ErrMissingSurveyID  = errors.New("survey id is required to update")
	ErrNoSuchItem       = errors.New("no such section or question")
	ErrUnknownField     = errors.New("unknown field")
	ErrTextAnswers      = errors.New("text questions have no answer scale")
)

// Backend stores submitted surveys.
type Backend interface {
	CreateSurvey(ctx context.Context, s model.Survey) (int64, error)
	UpdateSurvey(ctx context.Context, id int64, s model.Survey) error
}

type Mode int

const (
	CreateMode Mode = iota
	EditMode
)

type State int

const (
	Editing State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

type Field string

const (
	FieldName        Field = "name"
	FieldStatus      Field = "status"
	FieldStartDate   Field = "startDate"
	FieldEndDate     Field = "endDate"
	FieldUsersToSend Field = "usersToSend"

	FieldSectionName Field = "sectionName"

	FieldQuestionText    Field = "questionText"
	FieldQuestionType    Field = "questionType"
	FieldQuestionAnswers Field = "questionAnswers"
)

// Path addresses a field of the survey, of one of its sections or of one of
// its questions. Section and Question are only read for the fields that need
// them.
type Path struct {
	Field    Field
	Section  int
	Question int
}

func SurveyField(f Field) Path {
	return Path{Field: f}
}

func SectionField(section int, f Field) Path {
	return Path{Field: f, Section: section}
}

func QuestionField(section, question int, f Field) Path {
	return Path{Field: f, Section: section, Question: question}
}

// Form drives the editing of one draft and its submission. A form is used for
// a single survey; once a submission succeeds it accepts no more changes.
type Form struct {
	mu       sync.Mutex
	backend  Backend
	mode     Mode
	surveyID int64
	draft    Draft
	state    State
	message  string
}

func NewCreateForm(backend Backend) *Form {
	return &Form{backend: backend, mode: CreateMode, draft: New()}
}

// NewCreateFormFrom starts a create form on a prepared draft, like one built
// by Template. The draft gets a blank section if it has none, and its
// sections and questions are renumbered by position.
func NewCreateFormFrom(backend Backend, d Draft) *Form {
	d = d.clone()
	d.readOnly = false
	d.normalize()
	return &Form{backend: backend, mode: CreateMode, draft: d}
}

// NewEditForm starts editing a fetched survey. Published surveys give a form
// where every change is ignored.
func NewEditForm(backend Backend, s model.Survey) *Form {
	return &Form{backend: backend, mode: EditMode, surveyID: s.SurveyID, draft: FromSurvey(s)}
}

func (f *Form) Mode() Mode {
	return f.mode
}

// SurveyID is the edited survey, or the created one after a successful
// submission in create mode.
func (f *Form) SurveyID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.surveyID
}

func (f *Form) ReadOnly() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.readOnly
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message is the reason of the last failed submission.
func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.clone()
}

func (f *Form) SetField(p Path, value string) error {
	return f.edit(func(d *Draft) (bool, error) {
		switch p.Field {
		case FieldName:
			d.Name = value
		case FieldStatus:
			status, err := model.ParseStatus(value)
			if err != nil {
				return false, err
			}
			d.Status = status
		case FieldStartDate:
			d.StartDate = value
		case FieldEndDate:
			d.EndDate = value
		case FieldUsersToSend:
			d.UsersToSend = value
		case FieldSectionName:
			if !d.hasSection(p.Section) {
				return false, ErrNoSuchItem
			}
			d.Sections = Update(d.Sections, p.Section, func(s *Section) { s.Name = value })
		case FieldQuestionText, FieldQuestionType, FieldQuestionAnswers:
			return setQuestionField(d, p, value)
		default:
			return false, fmt.Errorf("%w %q", ErrUnknownField, p.Field)
		}
		return true, nil
	})
}

func setQuestionField(d *Draft, p Path, value string) (bool, error) {
	q, ok := d.question(p.Section, p.Question)
	if !ok {
		return false, ErrNoSuchItem
	}
	switch p.Field {
	case FieldQuestionText:
		q.Text = value
	case FieldQuestionType:
		t, err := model.ParseQuestionType(value)
		if err != nil {
			return false, err
		}
		q.setType(t)
	case FieldQuestionAnswers:
		if q.Type == model.QuestionText && value != "" {
			return false, ErrTextAnswers
		}
		q.Answers = value
	}
	d.replaceQuestion(p.Section, p.Question, q)
	return true, nil
}

func (f *Form) AddSection() {
	f.edit(func(d *Draft) (bool, error) {
		d.Sections = Add(d.Sections, Section{Questions: []Question{}})
		return true, nil
	})
}

// RemoveSection refuses to remove the last remaining section.
func (f *Form) RemoveSection(i int) {
	f.edit(func(d *Draft) (bool, error) {
		if len(d.Sections) <= 1 || !d.hasSection(i) {
			return false, nil
		}
		d.Sections = RemoveAt(d.Sections, i)
		return true, nil
	})
}

func (f *Form) MoveSection(i int, dir Direction) {
	f.edit(func(d *Draft) (bool, error) {
		moved := MoveTo(d.Sections, i, i+int(dir))
		changed := inRange(d.Sections, i) && inRange(d.Sections, i+int(dir))
		d.Sections = moved
		return changed, nil
	})
}

func (f *Form) AddQuestion(section int, t model.QuestionType) error {
	return f.edit(func(d *Draft) (bool, error) {
		if t != model.QuestionText && t != model.QuestionLikert {
			return false, fmt.Errorf("unknown question type %q", t)
		}
		if !d.hasSection(section) {
			return false, ErrNoSuchItem
		}
		d.Sections = Update(d.Sections, section, func(s *Section) {
			s.Questions = Add(s.Questions, NewQuestion(t))
		})
		return true, nil
	})
}

func (f *Form) RemoveQuestion(section, i int) {
	f.edit(func(d *Draft) (bool, error) {
		if _, ok := d.question(section, i); !ok {
			return false, nil
		}
		d.Sections = Update(d.Sections, section, func(s *Section) {
			s.Questions = RemoveAt(s.Questions, i)
		})
		return true, nil
	})
}

func (f *Form) MoveQuestion(section, i int, dir Direction) {
	f.edit(func(d *Draft) (bool, error) {
		_, from := d.question(section, i)
		_, to := d.question(section, i+int(dir))
		if !from || !to {
			return false, nil
		}
		d.Sections = Update(d.Sections, section, func(s *Section) {
			s.Questions = MoveTo(s.Questions, i, i+int(dir))
		})
		return true, nil
	})
}

// edit applies fn unless the draft is read-only or already submitted. Changes
// are refused while a submission is in flight. A change after a failed
// submission brings the form back to editing.
func (f *Form) edit(fn func(d *Draft) (bool, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.draft.readOnly || f.state == Succeeded {
		return nil
	}
	if f.state == Submitting {
		return ErrSubmitInProgress
	}

	d := f.draft
	changed, err := fn(&d)
	if err != nil || !changed {
		return err
	}
	f.draft = d

	if f.state == Failed {
		f.state = Editing
		f.message = ""
	}
	return nil
}

// BuildPayload returns the body Submit would send.
func (f *Form) BuildPayload() (model.Survey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.Payload()
}

// Submit sends the draft with POST in create mode or PUT in edit mode. Only
// one submission runs at a time; on failure the form keeps the message and can
// be submitted again.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.draft.readOnly:
		f.mu.Unlock()
		return ErrReadOnly
	case f.state == Submitting:
		f.mu.Unlock()
		return ErrSubmitInProgress
	case f.state == Succeeded:
		f.mu.Unlock()
		return ErrSubmitted
	case f.mode == EditMode && f.surveyID == 0:
		f.mu.Unlock()
		return ErrMissingSurveyID
	}

	payload, err := f.draft.Payload()
	if err != nil {
		f.state = Failed
		f.message = err.Error()
		f.mu.Unlock()
		return err
	}
	f.state = Submitting
	f.message = ""
	mode, id := f.mode, f.surveyID
	f.mu.Unlock()

	var created int64
	if mode == CreateMode {
		created, err = f.backend.CreateSurvey(ctx, payload)
	} else {
		err = f.backend.UpdateSurvey(ctx, id, payload)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = Failed
		f.message = err.Error()
		log.Warnf("survey save failed: %s", f.message)
		return err
	}
	f.state = Succeeded
	if mode == CreateMode {
		f.surveyID = created
	}
	return nil
}
