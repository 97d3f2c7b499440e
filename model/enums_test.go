package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"DRAFT":        StatusDraft,
		"draft":        StatusDraft,
		" Published ": StatusPublished,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStatus("ARCHIVED")
	assert.Error(t, err)
}

func TestParseQuestionType(t *testing.T) {
	got, err := ParseQuestionType("LIKERT")
	require.NoError(t, err)
	assert.Equal(t, QuestionLikert, got)

	got, err = ParseQuestionType("text")
	require.NoError(t, err)
	assert.Equal(t, QuestionText, got)

	_, err = ParseQuestionType("Choice")
	assert.Error(t, err)
}

func TestSurveyDecodeNormalizesEnums(t *testing.T) {
	var s Survey
	err := json.Unmarshal([]byte(`{
		"surveyId": 7,
		"name": "Onboarding",
		"status": "published",
		"startDate": null,
		"sections": [{"sectionId": 3, "sectionName": "A", "priority": 1,
			"questions": [{"questionText": "How?", "questionType": "likert", "questionPriority": 1, "questionAnswers": "1,2,3"}]}]
	}`), &s)
	require.NoError(t, err)

	assert.Equal(t, StatusPublished, s.Status)
	assert.True(t, s.Published())
	assert.Nil(t, s.StartDate)
	require.Len(t, s.Sections, 1)
	require.NotNil(t, s.Sections[0].SectionID)
	assert.EqualValues(t, 3, *s.Sections[0].SectionID)
	assert.Equal(t, QuestionLikert, s.Sections[0].Questions[0].QuestionType)
	assert.Nil(t, s.Sections[0].Questions[0].QuestionID)
}

func TestSurveyDecodeRejectsUnknownStatus(t *testing.T) {
	var s Survey
	err := json.Unmarshal([]byte(`{"name": "x", "status": "ARCHIVED"}`), &s)
	assert.Error(t, err)
}

func TestSurveyEncodeOmitsMissingIDs(t *testing.T) {
	b, err := json.Marshal(Section{SectionName: "A", Priority: 1, Questions: []Question{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sectionName":"A","priority":1,"questions":[]}`, string(b))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Draft", StatusDraft.Label())
	assert.Equal(t, "Published", StatusPublished.Label())
	assert.Equal(t, "-", Status("").Label())
	assert.Equal(t, "-", Status("ARCHIVED").Label())
}
