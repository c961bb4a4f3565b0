package question

// CheckAnswer reports whether selected is the correct answer for q.
// Scoring is exact string equality; no trimming or case folding.
func CheckAnswer(selected string, q Question) bool {
	return selected == q.CorrectAnswer
}
