// Package draft holds the in-memory model of a survey being authored and the
// form controller that edits and submits it.
package draft

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mbolis/survey-studio/model"
)

// ID identifies a record the backend has already stored. The zero value is a
// new record, which is sent without an identifier so the backend assigns one.
type ID struct {
	value int64
	set   bool
}

func Existing(id int64) ID {
	return ID{value: id, set: true}
}

func (id ID) Value() (int64, bool) {
	return id.value, id.set
}

func (id ID) IsNew() bool {
	return !id.set
}

func (id ID) ptr() *int64 {
	if !id.set {
		return nil
	}
	v := id.value
	return &v
}

func idFrom(p *int64) ID {
	if p == nil {
		return ID{}
	}
	return Existing(*p)
}

type Section struct {
	ID        ID
	Name      string
	Questions []Question
	priority  int
}

func (s *Section) Priority() int     { return s.priority }
func (s *Section) SetPriority(p int) { s.priority = p }

type Question struct {
	ID       ID
	Text     string
	Type     model.QuestionType
	Answers  string
	priority int
}

func (q *Question) Priority() int     { return q.priority }
func (q *Question) SetPriority(p int) { q.priority = p }

// NewQuestion returns a blank question of the given type. Likert questions
// start with the default scale, text questions never carry answers.
func NewQuestion(t model.QuestionType) Question {
	q := Question{}
	q.setType(t)
	return q
}

func (q *Question) setType(t model.QuestionType) {
	q.Type = t
	switch {
	case t == model.QuestionText:
		q.Answers = ""
	case t == model.QuestionLikert && q.Answers == "":
		q.Answers = model.DefaultLikertScale
	}
}

// Draft is a survey being created or edited. Sections always hold at least one
// entry and every priority equals its 1-based position.
type Draft struct {
	Name        string
	Status      model.Status
	StartDate   string
	EndDate     string
	UsersToSend string
	Sections    []Section

	readOnly bool
}

// New returns an empty draft with one blank section.
func New() Draft {
	return Draft{
		Status:   model.StatusDraft,
		Sections: Add([]Section(nil), Section{Questions: []Question{}}),
	}
}

// FromSurvey hydrates a draft from a fetched survey. Sections and questions are
// ordered by their stored priority and renumbered. A published survey yields a
// read-only draft.
func FromSurvey(s model.Survey) Draft {
	d := Draft{
		Name:        s.Name,
		Status:      s.Status,
		StartDate:   deref(s.StartDate),
		EndDate:     deref(s.EndDate),
		UsersToSend: strings.Join(s.UsersToSend, ", "),
		readOnly:    s.Published(),
	}
	if d.Status == "" {
		d.Status = model.StatusDraft
	}

	sections := byPriority(s.Sections, func(s model.Section) int { return s.Priority })
	for _, ws := range sections {
		sec := Section{ID: idFrom(ws.SectionID), Name: ws.SectionName, Questions: []Question{}}
		questions := byPriority(ws.Questions, func(q model.Question) int { return q.QuestionPriority })
		for _, wq := range questions {
			q := Question{ID: idFrom(wq.QuestionID), Text: wq.QuestionText, Answers: wq.QuestionAnswers}
			t := wq.QuestionType
			if t == "" {
				t = model.QuestionText
			}
			q.setType(t)
			sec.Questions = Add(sec.Questions, q)
		}
		d.Sections = Add(d.Sections, sec)
	}
	if len(d.Sections) == 0 {
		d.Sections = Add(d.Sections, Section{Questions: []Question{}})
	}
	return d
}

// Template hydrates a draft for a new survey modelled on s. Identifiers are
// dropped and the draft stays editable whatever the status of s.
func Template(s model.Survey) Draft {
	d := FromSurvey(s)
	d.readOnly = false
	for i := range d.Sections {
		d.Sections[i].ID = ID{}
		for j := range d.Sections[i].Questions {
			d.Sections[i].Questions[j].ID = ID{}
		}
	}
	return d
}

// ReadOnly reports whether the draft belongs to a published survey.
func (d Draft) ReadOnly() bool {
	return d.readOnly
}

func (d Draft) clone() Draft {
	c := d
	c.Sections = make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		s.Questions = slices.Clone(s.Questions)
		c.Sections[i] = s
	}
	return c
}

// normalize restores the draft invariants on a draft built by hand.
func (d *Draft) normalize() {
	if len(d.Sections) == 0 {
		d.Sections = Add(d.Sections, Section{Questions: []Question{}})
		return
	}
	renumber(d.Sections)
	for i := range d.Sections {
		if d.Sections[i].Questions == nil {
			d.Sections[i].Questions = []Question{}
		}
		renumber(d.Sections[i].Questions)
	}
}

func (d Draft) hasSection(i int) bool {
	return inRange(d.Sections, i)
}

func (d Draft) question(section, i int) (Question, bool) {
	if !d.hasSection(section) || !inRange(d.Sections[section].Questions, i) {
		return Question{}, false
	}
	return d.Sections[section].Questions[i], true
}

func (d *Draft) replaceQuestion(section, i int, q Question) {
	d.Sections = Update(d.Sections, section, func(s *Section) {
		s.Questions = Update(s.Questions, i, func(old *Question) { *old = q })
	})
}

// byPriority orders items by stored priority, keeping the incoming order for
// ties and for items without one.
func byPriority[T any](items []T, priority func(T) int) []T {
	type keyed struct {
		key  int
		item T
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		k := priority(it)
		if k <= 0 {
			k = i + 1
		}
		ks[i] = keyed{k, it}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int { return cmp.Compare(a.key, b.key) })

	out := make([]T, len(ks))
	for i, k := range ks {
		out[i] = k.item
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
