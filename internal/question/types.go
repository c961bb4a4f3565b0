package question

import "strings"

// Difficulty is the author-assigned difficulty of a question.
type Difficulty string

const (
	DifficultyUnset     Difficulty = ""
	DifficultyEasy      Difficulty = "easy"
	DifficultyDifficult Difficulty = "difficult"
)

// ChapterPrefix marks topic ids that name a textbook chapter.
const ChapterPrefix = "chapter-"

// Question is a single multiple-choice question. Questions are reference
// data owned by the bank; the engine never mutates them.
type Question struct {
	// ID is the stable identifier (or question number as a string).
	ID string `json:"id"`

	// Text is the prompt displayed to the learner.
	Text string `json:"question"`

	// Options is the ordered list of answer choices. Order is fixed for
	// display and for selection matching.
	Options []string `json:"options"`

	// CorrectAnswer must equal one of Options for the question to be
	// answerable correctly.
	CorrectAnswer string `json:"correct_answer"`

	Hint        string     `json:"hint,omitempty"`
	Explanation string     `json:"explanation,omitempty"`
	Chapter     string     `json:"chapter,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	Source      string     `json:"source,omitempty"`
}

// Answerable reports whether CorrectAnswer is one of the options.
func (q Question) Answerable() bool {
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// OptionIndex returns the index of option in Options, or -1.
func (q Question) OptionIndex(option string) int {
	for i, o := range q.Options {
		if o == option {
			return i
		}
	}
	return -1
}

// Topic groups questions by chapter or by a non-chapter theme.
type Topic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsGeneral   bool   `json:"isGeneral,omitempty"`
}

// IsChapter reports whether the topic is a numbered chapter that takes part
// in chapter-distributed exams.
func (t Topic) IsChapter() bool {
	return !t.IsGeneral && strings.HasPrefix(t.ID, ChapterPrefix)
}

// IDs returns the ids of qs in order.
func IDs(qs []Question) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}
