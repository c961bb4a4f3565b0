package analytics

import (
	"fmt"
	"sort"
)

// Priority orders recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	}
	return 2
}

// RecommendationKind names why a chapter was flagged.
type RecommendationKind string

const (
	KindInsufficientPractice RecommendationKind = "insufficient-practice"
	KindLowAccuracy          RecommendationKind = "low-accuracy"
	KindCanImprove           RecommendationKind = "can-improve"
)

// Recommendation suggests more practice on one chapter.
type Recommendation struct {
	TopicID            string
	Kind               RecommendationKind
	Priority           Priority
	Attempted          int
	Accuracy           float64
	SuggestedQuestions int
	Message            string
}

// Recommendations flags chapters that need practice:
//   - fewer than 5 questions answered, none included: medium priority, 10-n more
//   - under 60% accuracy: high priority, 20 more
//   - 60% up to but excluding 75%: low priority, 10 more
//
// The result is sorted by priority, then accuracy, then topic.
func Recommendations(chapters []ChapterStats) []Recommendation {
	var out []Recommendation
	for _, c := range chapters {
		if !isChapter(c.TopicID) {
			continue
		}
		acc := c.Accuracy()
		r := Recommendation{TopicID: c.TopicID, Attempted: c.TotalQuestions, Accuracy: acc}
		switch {
		case c.TotalQuestions < MinChapterQuestions:
			r.Kind = KindInsufficientPractice
			r.Priority = PriorityMedium
			r.SuggestedQuestions = 10 - c.TotalQuestions
			if c.TotalQuestions == 0 {
				r.Message = fmt.Sprintf("No questions practiced in %s yet. Try %d.", c.TopicID, r.SuggestedQuestions)
			} else {
				r.Message = fmt.Sprintf("Only %d questions practiced in %s. Try %d more.", c.TotalQuestions, c.TopicID, r.SuggestedQuestions)
			}
		case acc < 60:
			r.Kind = KindLowAccuracy
			r.Priority = PriorityHigh
			r.SuggestedQuestions = 20
			r.Message = fmt.Sprintf("Accuracy in %s is %.0f%%. Review the chapter and practice %d more questions.", c.TopicID, acc, r.SuggestedQuestions)
		case acc < 75:
			r.Kind = KindCanImprove
			r.Priority = PriorityLow
			r.SuggestedQuestions = 10
			r.Message = fmt.Sprintf("%s is at %.0f%%. %d more questions could push it past 75%%.", c.TopicID, acc, r.SuggestedQuestions)
		default:
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority.rank() != b.Priority.rank() {
			return a.Priority.rank() < b.Priority.rank()
		}
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		return a.TopicID < b.TopicID
	})
	return out
}
