package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBank_Valid(t *testing.T) {
	raw := []byte(`{
		"topics": [{"id": "chapter-01", "name": "Cells"}],
		"questions": [{
			"id": "q1",
			"question": "Unit of life?",
			"options": ["Cell", "Atom"],
			"correct_answer": "Cell",
			"chapter": "chapter-01",
			"difficulty": "easy"
		}]
	}`)

	bank, err := ParseBank(raw)
	require.NoError(t, err)
	require.Len(t, bank.Questions, 1)
	assert.Equal(t, "Cell", bank.Questions[0].CorrectAnswer)
	assert.Equal(t, DifficultyEasy, bank.Questions[0].Difficulty)
	assert.True(t, bank.Topics[0].IsChapter())
}

func TestParseBank_SchemaViolation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing questions", `{"topics": []}`},
		{"single option", `{"questions": [{"id": "q", "question": "x", "options": ["a"], "correct_answer": "a"}]}`},
		{"bad difficulty", `{"questions": [{"id": "q", "question": "x", "options": ["a", "b"], "correct_answer": "a", "difficulty": "hard"}]}`},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBank([]byte(tt.raw))
			require.Error(t, err)
			assert.False(t, IsBankError(err))
		})
	}
}

func TestParseBank_SemanticProblems(t *testing.T) {
	raw := []byte(`{"questions": [
		{"id": "q1", "question": "x", "options": ["a", "b"], "correct_answer": "c"},
		{"id": "q1", "question": "y", "options": ["a", "b"], "correct_answer": "a"}
	]}`)

	bank, err := ParseBank(raw)
	require.Error(t, err)
	assert.True(t, IsBankError(err))
	require.NotNil(t, bank)

	var be *BankError
	require.ErrorAs(t, err, &be)
	assert.Len(t, be.Problems, 2)
}

func TestCheckAnswer_ExactMatch(t *testing.T) {
	q := Question{Options: []string{"Mitochondria", "Ribosome"}, CorrectAnswer: "Mitochondria"}

	assert.True(t, CheckAnswer("Mitochondria", q))
	assert.False(t, CheckAnswer("mitochondria", q))
	assert.False(t, CheckAnswer(" Mitochondria", q))
	assert.False(t, CheckAnswer("Ribosome", q))
}

func TestTopicIsChapter(t *testing.T) {
	assert.True(t, Topic{ID: "chapter-07"}.IsChapter())
	assert.False(t, Topic{ID: "chapter-07", IsGeneral: true}.IsChapter())
	assert.False(t, Topic{ID: "previous-years"}.IsChapter())
}

func TestOptionIndex(t *testing.T) {
	q := Question{Options: []string{"a", "b", "c"}}
	assert.Equal(t, 1, q.OptionIndex("b"))
	assert.Equal(t, -1, q.OptionIndex("z"))
}
