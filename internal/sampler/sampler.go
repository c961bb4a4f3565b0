// Package sampler builds the question list presented in a session: uniform
// shuffles, chapter-proportional distribution and flat sampling.
package sampler

import (
	"math/rand"

	"github.com/abhisek/examprep/internal/question"
)

// Bucket is one chapter's ordered question pool. Distribute takes buckets as
// a slice so that chapter order, which decides who receives the remainder,
// is explicit.
type Bucket struct {
	Chapter   string
	Questions []question.Question
}

// Result is a sampled question list plus a fill report.
type Result struct {
	Questions []question.Question

	// Requested is the count the caller asked for (0 = everything).
	Requested int

	// Partial is true when fewer than Requested questions were available.
	Partial bool
}

// Empty reports whether no eligible question was found.
func (r Result) Empty() bool {
	return len(r.Questions) == 0
}

// Shuffle returns a uniformly permuted copy of xs (Fisher–Yates).
// The input slice is not modified. A nil rng uses the global source.
func Shuffle[T any](xs []T, rng *rand.Rand) []T {
	out := make([]T, len(xs))
	copy(out, xs)
	for i := len(out) - 1; i > 0; i-- {
		j := intn(rng, i+1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Distribute spreads total questions across chapters as evenly as integer
// division allows. With n chapters, base = total/n and the first total%n
// chapters receive one extra. Each bucket is shuffled before its quota is
// taken; a bucket smaller than its quota contributes everything it has.
// The concatenated selection is shuffled again before it is returned.
func Distribute(buckets []Bucket, total int, rng *rand.Rand) Result {
	res := Result{Requested: total}
	if len(buckets) == 0 || total <= 0 {
		res.Partial = total > 0
		return res
	}

	base := total / len(buckets)
	remainder := total % len(buckets)

	var picked []question.Question
	for i, b := range buckets {
		quota := base
		if i < remainder {
			quota++
		}
		if quota == 0 {
			continue
		}
		shuffled := Shuffle(b.Questions, rng)
		if len(shuffled) > quota {
			shuffled = shuffled[:quota]
		}
		picked = append(picked, shuffled...)
	}

	res.Questions = Shuffle(picked, rng)
	res.Partial = len(res.Questions) < total
	return res
}

// SampleFlat samples from a single pool with no chapter grouping.
// For count > 0 it shuffles and takes min(count, len(pool)). For count <= 0
// listAll decides: true returns the whole pool in its input order (list-all
// modes), false returns the whole pool shuffled.
func SampleFlat(pool []question.Question, count int, listAll bool, rng *rand.Rand) Result {
	res := Result{Requested: count}
	if count <= 0 {
		res.Requested = 0
		if listAll {
			res.Questions = append([]question.Question(nil), pool...)
		} else {
			res.Questions = Shuffle(pool, rng)
		}
		return res
	}

	shuffled := Shuffle(pool, rng)
	if len(shuffled) > count {
		shuffled = shuffled[:count]
	}
	res.Questions = shuffled
	res.Partial = len(shuffled) < count
	return res
}

// GroupByChapter builds buckets for the given chapter order. Questions whose
// chapter is not listed are dropped, as are chapters with no questions, so
// that an empty chapter does not absorb part of the quota.
func GroupByChapter(chapters []string, pool []question.Question) []Bucket {
	idx := make(map[string]int, len(chapters))
	buckets := make([]Bucket, len(chapters))
	for i, ch := range chapters {
		idx[ch] = i
		buckets[i].Chapter = ch
	}
	for _, q := range pool {
		if i, ok := idx[q.Chapter]; ok {
			buckets[i].Questions = append(buckets[i].Questions, q)
		}
	}
	out := buckets[:0]
	for _, b := range buckets {
		if len(b.Questions) > 0 {
			out = append(out, b)
		}
	}
	return out
}

func intn(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.Intn(n)
	}
	return rng.Intn(n)
}
