package draft

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/survey-studio/model"
)

type fakeBackend struct {
	mu      sync.Mutex
	created []model.Survey
	updated map[int64]model.Survey
	err     error
	block   chan struct{}
}

func (b *fakeBackend) CreateSurvey(ctx context.Context, s model.Survey) (int64, error) {
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return 0, b.err
	}
	b.created = append(b.created, s)
	return int64(len(b.created)), nil
}

func (b *fakeBackend) UpdateSurvey(ctx context.Context, id int64, s model.Survey) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	if b.updated == nil {
		b.updated = map[int64]model.Survey{}
	}
	b.updated[id] = s
	return nil
}

func ptr[T any](v T) *T { return &v }

func sectionNames(d Draft) []string {
	out := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		out[i] = s.Name
	}
	return out
}

func requireDraftInvariants(t *testing.T, d Draft) {
	t.Helper()
	require.NotEmpty(t, d.Sections)
	for i, s := range d.Sections {
		require.Equal(t, i+1, s.Priority(), "section %d", i)
		for j, q := range s.Questions {
			require.Equal(t, j+1, q.Priority(), "section %d question %d", i, j)
		}
	}
}

func publishedSurvey() model.Survey {
	return model.Survey{
		SurveyID:    9,
		Name:        "Live",
		Status:      model.StatusPublished,
		UsersToSend: []string{"a@x.com"},
		Sections: []model.Section{{
			SectionID:   ptr(int64(1)),
			SectionName: "Only",
			Priority:    1,
			Questions: []model.Question{{
				QuestionID: ptr(int64(2)), QuestionText: "Q", QuestionType: model.QuestionText, QuestionPriority: 1,
			}},
		}},
	}
}

func TestNewFormStartsWithOneBlankSection(t *testing.T) {
	f := NewCreateForm(&fakeBackend{})
	d := f.Draft()

	require.Len(t, d.Sections, 1)
	assert.Equal(t, 1, d.Sections[0].Priority())
	assert.True(t, d.Sections[0].ID.IsNew())
	assert.Equal(t, model.StatusDraft, d.Status)
	assert.Equal(t, Editing, f.State())
}

func TestSectionEditing(t *testing.T) {
	f := NewCreateForm(&fakeBackend{})
	require.NoError(t, f.SetField(SectionField(0, FieldSectionName), "A"))
	f.AddSection()
	require.NoError(t, f.SetField(SectionField(1, FieldSectionName), "B"))
	f.AddSection()
	require.NoError(t, f.SetField(SectionField(2, FieldSectionName), "C"))

	f.MoveSection(0, Down)
	assert.Equal(t, []string{"B", "A", "C"}, sectionNames(f.Draft()))

	f.MoveSection(0, Up)
	f.MoveSection(2, Down)
	assert.Equal(t, []string{"B", "A", "C"}, sectionNames(f.Draft()))

	f.RemoveSection(1)
	assert.Equal(t, []string{"B", "C"}, sectionNames(f.Draft()))
	requireDraftInvariants(t, f.Draft())
}

func TestRemoveLastSectionIsRefused(t *testing.T) {
	f := NewCreateForm(&fakeBackend{})
	f.RemoveSection(0)
	assert.Len(t, f.Draft().Sections, 1)

	f.AddSection()
	f.RemoveSection(0)
	f.RemoveSection(0)
	assert.Len(t, f.Draft().Sections, 1)
}

func TestAddQuestionDefaults(t *testing.T) {
	f := NewCreateForm(&fakeBackend{})
	require.NoError(t, f.AddQuestion(0, model.QuestionLikert))
	require.NoError(t, f.AddQuestion(0, model.QuestionText))

	qs := f.Draft().Sections[0].Questions
	require.Len(t, qs, 2)
	assert.Equal(t, "1,2,3,4,5", qs[0].Answers)
	assert.Equal(t, "", qs[1].Answers)
	assert.Equal(t, 2, qs[1].Priority())

	assert.ErrorIs(t, f.AddQuestion(3, model.QuestionText), ErrNoSuchItem)
	assert.Error(t, f.AddQuestion(0, model.QuestionType("Choice")))
}

func TestQuestionEditingIsScopedToItsSection(t *testing.T) {
	f := NewCreateForm(&fakeBackend{})
	f.AddSection()
	for _, text := range []string{"Q1", "Q2", "Q3"} {
		require.NoError(t, f.AddQuestion(0, model.QuestionText))
		n := len(f.Draft().Sections[0].Questions)
		require.NoError(t, f.SetField(QuestionField(0, n-1, FieldQuestionText), text))
	}
	require.NoError(t, f.AddQuestion(1, model.QuestionLikert))
	other := f.Draft().Sections[1]

	f.MoveQuestion(0, 2, Up)
	f.MoveQuestion(0, 0, Up)
	f.RemoveQuestion(0, 0)

	d := f.Draft()
	texts := []string{}
	for _, q := range d.Sections[0].Questions {
		texts = append(texts, q.Text)
	}
	assert.Equal(t, []string{"Q3", "Q2"}, texts)
	assert.Equal(t, other, d.Sections[1])
	requireDraftInvariants(t, d)
}

func TestChangingQuestionType(t *testing.T) {
	f := NewCreateForm(&fakeBackend{})
	require.NoError(t, f.AddQuestion(0, model.QuestionText))

	require.NoError(t, f.SetField(QuestionField(0, 0, FieldQuestionType), "likert"))
	assert.Equal(t, model.DefaultLikertScale, f.Draft().Sections[0].Questions[0].Answers)

	require.NoError(t, f.SetField(QuestionField(0, 0, FieldQuestionAnswers), "bad,ok,good"))
	require.NoError(t, f.SetField(QuestionField(0, 0, FieldQuestionType), "Text"))
	q := f.Draft().Sections[0].Questions[0]
	assert.Equal(t, model.QuestionText, q.Type)
	assert.Equal(t, "", q.Answers)

	assert.ErrorIs(t, f.SetField(QuestionField(0, 0, FieldQuestionAnswers), "1,2"), ErrTextAnswers)
	assert.Error(t, f.SetField(QuestionField(0, 0, FieldQuestionType), "Choice"))
	assert.ErrorIs(t, f.SetField(QuestionField(0, 1, FieldQuestionText), "x"), ErrNoSuchItem)
}

func TestSetFieldRejectsUnknownInput(t *testing.T) {
	f := NewCreateForm(&fakeBackend{})
	before := f.Draft()

	assert.ErrorIs(t, f.SetField(SurveyField("colour"), "red"), ErrUnknownField)
	assert.Error(t, f.SetField(SurveyField(FieldStatus), "ARCHIVED"))
	assert.ErrorIs(t, f.SetField(SectionField(4, FieldSectionName), "x"), ErrNoSuchItem)
	assert.Equal(t, before, f.Draft())

	require.NoError(t, f.SetField(SurveyField(FieldStatus), "published"))
	assert.Equal(t, model.StatusPublished, f.Draft().Status)
}

func TestReadOnlyDraftIgnoresEveryChange(t *testing.T) {
	f := NewEditForm(&fakeBackend{}, publishedSurvey())
	require.True(t, f.ReadOnly())
	before := f.Draft()

	assert.NoError(t, f.SetField(SurveyField(FieldName), "Changed"))
	assert.NoError(t, f.SetField(QuestionField(0, 0, FieldQuestionText), "Changed"))
	f.AddSection()
	f.RemoveSection(0)
	f.MoveSection(0, Down)
	assert.NoError(t, f.AddQuestion(0, model.QuestionLikert))
	f.RemoveQuestion(0, 0)
	f.MoveQuestion(0, 0, Down)

	assert.Equal(t, before, f.Draft())
	assert.ErrorIs(t, f.Submit(context.Background()), ErrReadOnly)
}

func TestFromSurveyOrdersByPriority(t *testing.T) {
	d := FromSurvey(model.Survey{
		Name:        "S",
		UsersToSend: []string{"a@x.com", "b@y.com"},
		Sections: []model.Section{
			{SectionName: "second", Priority: 2, Questions: []model.Question{
				{QuestionText: "b", QuestionType: model.QuestionText, QuestionPriority: 5},
				{QuestionText: "a", QuestionType: model.QuestionLikert, QuestionPriority: 1, QuestionAnswers: "1,2,3"},
			}},
			{SectionName: "first", Priority: 1},
		},
	})

	assert.Equal(t, []string{"first", "second"}, sectionNames(d))
	assert.Equal(t, "a", d.Sections[1].Questions[0].Text)
	assert.Equal(t, "1,2,3", d.Sections[1].Questions[0].Answers)
	assert.Equal(t, "a@x.com, b@y.com", d.UsersToSend)
	assert.Equal(t, model.StatusDraft, d.Status)
	assert.False(t, d.ReadOnly())
	requireDraftInvariants(t, d)
}

func TestFromSurveyWithoutSections(t *testing.T) {
	d := FromSurvey(model.Survey{Name: "Empty", Status: model.StatusDraft})
	require.Len(t, d.Sections, 1)
	assert.Equal(t, 1, d.Sections[0].Priority())
}

func TestSubmitCreate(t *testing.T) {
	backend := &fakeBackend{}
	f := NewCreateForm(backend)
	require.NoError(t, f.SetField(SurveyField(FieldName), "Team pulse"))
	require.NoError(t, f.SetField(SurveyField(FieldEndDate), "2024-05-01T10:30"))
	require.NoError(t, f.SetField(SurveyField(FieldUsersToSend), " a@x.com, ,b@y.com "))
	require.NoError(t, f.AddQuestion(0, model.QuestionLikert))

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, Succeeded, f.State())
	assert.EqualValues(t, 1, f.SurveyID())

	require.Len(t, backend.created, 1)
	sent := backend.created[0]
	assert.Equal(t, "Team pulse", sent.Name)
	assert.Nil(t, sent.StartDate)
	assert.Equal(t, "2024-05-01T10:30:00", *sent.EndDate)
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, sent.UsersToSend)
	assert.Nil(t, sent.Sections[0].SectionID)
	assert.Nil(t, sent.Sections[0].Questions[0].QuestionID)

	assert.ErrorIs(t, f.Submit(context.Background()), ErrSubmitted)
	f.AddSection()
	assert.Len(t, f.Draft().Sections, 1, "no edits after success")
}

func TestSubmitUpdateKeepsIDs(t *testing.T) {
	backend := &fakeBackend{}
	s := publishedSurvey()
	s.Status = model.StatusDraft
	f := NewEditForm(backend, s)

	f.AddSection()
	require.NoError(t, f.SetField(SectionField(1, FieldSectionName), "New"))
	require.NoError(t, f.Submit(context.Background()))

	sent := backend.updated[9]
	require.Len(t, sent.Sections, 2)
	assert.EqualValues(t, 1, *sent.Sections[0].SectionID)
	assert.EqualValues(t, 2, *sent.Sections[0].Questions[0].QuestionID)
	assert.Nil(t, sent.Sections[1].SectionID)
	assert.Equal(t, 2, sent.Sections[1].Priority)
}

func TestSubmitEditWithoutIDFails(t *testing.T) {
	f := NewEditForm(&fakeBackend{}, model.Survey{Name: "x", Status: model.StatusDraft})
	assert.ErrorIs(t, f.Submit(context.Background()), ErrMissingSurveyID)
}

func TestSubmitFailureAllowsRetry(t *testing.T) {
	backend := &fakeBackend{err: errors.New("Name required")}
	f := NewCreateForm(backend)
	require.NoError(t, f.SetField(SurveyField(FieldName), "x"))

	err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, Failed, f.State())
	assert.Equal(t, "Name required", f.Message())

	require.NoError(t, f.SetField(SurveyField(FieldName), "y"))
	assert.Equal(t, Editing, f.State())
	assert.Empty(t, f.Message())

	backend.err = nil
	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, Succeeded, f.State())
}

func TestSubmitValidatesDraft(t *testing.T) {
	f := NewCreateForm(&fakeBackend{})
	require.NoError(t, f.AddQuestion(0, model.QuestionLikert))
	require.NoError(t, f.SetField(QuestionField(0, 0, FieldQuestionAnswers), " "))

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.ErrorIs(t, err, ErrLikertScale)
	assert.Equal(t, Failed, f.State())
	assert.Equal(t, "survey name is required; section 1, question 1: likert question needs a scale", f.Message())
}

func TestSubmitRefusesConcurrentSubmission(t *testing.T) {
	backend := &fakeBackend{block: make(chan struct{})}
	f := NewCreateForm(backend)
	require.NoError(t, f.SetField(SurveyField(FieldName), "x"))

	done := make(chan error)
	go func() { done <- f.Submit(context.Background()) }()

	require.Eventually(t, func() bool { return f.State() == Submitting }, time.Second, time.Millisecond)
	assert.ErrorIs(t, f.Submit(context.Background()), ErrSubmitInProgress)

	close(backend.block)
	require.NoError(t, <-done)
	assert.Len(t, backend.created, 1)
}

func TestEditsWaitForSubmissionToEnd(t *testing.T) {
	backend := &fakeBackend{block: make(chan struct{})}
	f := NewCreateForm(backend)
	require.NoError(t, f.SetField(SurveyField(FieldName), "x"))

	done := make(chan error)
	go func() { done <- f.Submit(context.Background()) }()
	require.Eventually(t, func() bool { return f.State() == Submitting }, time.Second, time.Millisecond)

	assert.ErrorIs(t, f.AddQuestion(0, model.QuestionText), ErrSubmitInProgress)
	assert.ErrorIs(t, f.SetField(SurveyField(FieldName), "y"), ErrSubmitInProgress)
	f.AddSection()
	f.MoveSection(0, Down)

	close(backend.block)
	require.NoError(t, <-done)
	assert.Equal(t, Succeeded, f.State())

	d := f.Draft()
	assert.Equal(t, "x", d.Name)
	require.Len(t, d.Sections, 1)
	assert.Empty(t, d.Sections[0].Questions)
	sent := backend.created[0]
	assert.Equal(t, "x", sent.Name)
	assert.Len(t, sent.Sections, 1)
}

func TestCreateFormFromEmptyDraft(t *testing.T) {
	f := NewCreateFormFrom(&fakeBackend{}, Draft{Name: "x"})
	d := f.Draft()
	require.Len(t, d.Sections, 1)
	assert.Equal(t, 1, d.Sections[0].Priority())
	assert.NotNil(t, d.Sections[0].Questions)
	requireDraftInvariants(t, d)
}

func TestCreateFormFromRenumbersHandBuiltDraft(t *testing.T) {
	d := Draft{Name: "x", Sections: []Section{
		{Name: "a", Questions: []Question{{Text: "q1", Type: model.QuestionText}, {Text: "q2", Type: model.QuestionText}}},
		{Name: "b"},
	}}
	f := NewCreateFormFrom(&fakeBackend{}, d)
	f.AddSection()

	got := f.Draft()
	requireDraftInvariants(t, got)
	require.Len(t, got.Sections, 3)
	for i, s := range got.Sections {
		assert.Equal(t, i+1, s.Priority(), s.Name)
	}
	assert.Equal(t, 1, got.Sections[0].Questions[0].Priority())
	assert.Equal(t, 2, got.Sections[0].Questions[1].Priority())
	assert.Zero(t, d.Sections[0].Priority(), "the caller's draft is left alone")
}

func TestTemplateDropsIDs(t *testing.T) {
	backend := &fakeBackend{}
	f := NewCreateFormFrom(backend, Template(publishedSurvey()))
	require.False(t, f.ReadOnly())

	require.NoError(t, f.SetField(SurveyField(FieldStatus), "DRAFT"))
	require.NoError(t, f.Submit(context.Background()))

	sent := backend.created[0]
	assert.Equal(t, "Live", sent.Name)
	assert.Nil(t, sent.Sections[0].SectionID)
	assert.Nil(t, sent.Sections[0].Questions[0].QuestionID)
	assert.Equal(t, "Q", sent.Sections[0].Questions[0].QuestionText)
}
