package contentgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lasty/internal/llm"
	"github.com/abhisek/lasty/internal/progress"
)

func mockJSON(s string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(s)}
}

func TestGenerateSentence_StripsQuotes(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(`{"sentence":"\"Das Haus ist sehr alt.\""}`))
	g := New(mock, DefaultConfig())

	got, err := g.GenerateSentence(context.Background(), SentenceRequest{
		Word:     "Haus",
		Language: "German",
		Topics:   []string{"travel", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Das Haus ist sehr alt.", got)

	require.Len(t, mock.Calls, 1)
	req := mock.Calls[0]
	assert.Equal(t, SentenceSchema, req.Schema)
	assert.Equal(t, sentenceSystemPrompt, req.System)
	msg := req.Messages[0].Content
	assert.Contains(t, msg, "Practice word: Haus")
	assert.Contains(t, msg, "Topics: travel")
	assert.NotContains(t, msg, "Grammar patterns")
}

func TestGenerateSentence_DefaultTopicsAndHint(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(`{"sentence":"Ich gehe nach Hause."}`))
	g := New(mock, DefaultConfig())

	_, err := g.GenerateSentence(context.Background(), SentenceRequest{
		Word:        "Hause",
		Language:    "German",
		GrammarHint: "Grammar: Dative case",
	})
	require.NoError(t, err)

	msg := mock.Calls[0].Messages[0].Content
	assert.Contains(t, msg, "Topics: general topics")
	assert.Contains(t, msg, "Grammar patterns to practice: Grammar: Dative case")
}

func TestGenerateSentence_Empty(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(`{"sentence":"  \"\" "}`))
	g := New(mock, DefaultConfig())

	_, err := g.GenerateSentence(context.Background(), SentenceRequest{Word: "Haus", Language: "German"})
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestGenerateSentence_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	g := New(mock, DefaultConfig())

	_, err := g.GenerateSentence(context.Background(), SentenceRequest{Word: "Haus", Language: "German"})
	assert.Error(t, err)
}

func TestGenerateSentence_SetsPurpose(t *testing.T) {
	var purpose string
	mock := llm.NewMockProviderFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		purpose = llm.PurposeFrom(ctx)
		return llm.JSONResponse(map[string]string{"sentence": "Das Haus."})
	})
	g := New(mock, DefaultConfig())

	_, err := g.GenerateSentence(context.Background(), SentenceRequest{Word: "Haus", Language: "German"})
	require.NoError(t, err)
	assert.Equal(t, llm.PurposeSentence, purpose)
}

func TestGenerateTranslation(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(`{"translation":"The house is very old."}`))
	cfg := DefaultConfig()
	g := New(mock, cfg)

	got, err := g.GenerateTranslation(context.Background(), "Das Haus ist sehr alt.", "English")
	require.NoError(t, err)
	assert.Equal(t, "The house is very old.", got)

	req := mock.Calls[0]
	assert.Equal(t, TranslationSchema, req.Schema)
	assert.Equal(t, cfg.ClassifyTemperature, req.Temperature)
	assert.True(t, strings.HasPrefix(req.Messages[0].Content, "Translate into English:"))
}

func TestGenerateDistractors_FiltersAndCaps(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(`{"options":["Hund","haus","Baum","hund",""," Tisch ","Stuhl"]}`))
	g := New(mock, DefaultConfig())

	got, err := g.GenerateDistractors(context.Background(), "Haus", "German", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hund", "Baum", "Tisch"}, got)
}

func TestGenerateDistractors_NoneUsable(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(`{"options":["HAUS"]}`))
	g := New(mock, DefaultConfig())

	_, err := g.GenerateDistractors(context.Background(), "Haus", "German", 3)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestGenerateDistractors_ZeroCount(t *testing.T) {
	mock := llm.NewMockProvider()
	g := New(mock, DefaultConfig())

	got, err := g.GenerateDistractors(context.Background(), "Haus", "German", 0)
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, mock.CallCount())
}

func TestClassifyAnswer_ExactMatchSkipsModel(t *testing.T) {
	mock := llm.NewMockProvider()
	g := New(mock, DefaultConfig())

	v, err := g.ClassifyAnswer(context.Background(), "Haus", " HAUS", "German")
	require.NoError(t, err)
	assert.Equal(t, progress.OutcomeCorrect, v.Outcome)
	assert.Equal(t, 0, mock.CallCount())
}

func TestClassifyAnswer_Synonym(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(`{"outcome":"synonym_accepted","error_description":"Vocabulary: synonym","explanation":"Gebäude also fits."}`))
	g := New(mock, DefaultConfig())

	v, err := g.ClassifyAnswer(context.Background(), "Haus", "Gebäude", "German")
	require.NoError(t, err)
	assert.Equal(t, progress.OutcomeSynonymAccepted, v.Outcome)
	assert.Empty(t, v.ErrorDescription)
	assert.Equal(t, "Gebäude also fits.", v.Explanation)
	assert.Equal(t, "llm", v.Source)
}

func TestClassifyAnswer_IncorrectFillsDescription(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(`{"outcome":"incorrect","error_description":"","explanation":""}`))
	g := New(mock, DefaultConfig())

	v, err := g.ClassifyAnswer(context.Background(), "Katze", "Katse", "German")
	require.NoError(t, err)
	assert.Equal(t, progress.OutcomeIncorrect, v.Outcome)
	assert.Equal(t, DescLetterSubstitution, v.ErrorDescription)
}

func TestClassifyAnswer_UnknownLabel(t *testing.T) {
	mock := llm.NewMockProvider(mockJSON(`{"outcome":"almost","error_description":"Vocabulary: Near miss","explanation":""}`))
	g := New(mock, DefaultConfig())

	v, err := g.ClassifyAnswer(context.Background(), "Katze", "Hund", "German")
	require.NoError(t, err)
	assert.Equal(t, progress.OutcomeUnclassified, v.Outcome)
	assert.True(t, v.Outcome.IsMistake())
	assert.Equal(t, "Vocabulary: Near miss", v.ErrorDescription)
}

func TestClassifyAnswer_FallsBackToRules(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("boom")})
	g := New(mock, DefaultConfig())

	v, err := g.ClassifyAnswer(context.Background(), "Haus", "Hauses", "German")
	require.NoError(t, err)
	assert.Equal(t, progress.OutcomeMorphologicalError, v.Outcome)
	assert.Equal(t, "rules", v.Source)
}
