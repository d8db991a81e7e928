package dataset

import (
	"strconv"
	"strings"

	"restaurant_map/internal/models"
)

// ScoreRange matches current scores in [Min, Max]. Max < 0 means no upper bound.
// Ungraded matches only records that have never been graded.
type ScoreRange struct {
	Min      int
	Max      int
	Ungraded bool
}

// ParseScoreRange accepts "6-10", "21+" and "unknown".
func ParseScoreRange(s string) (*ScoreRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if s == string(models.BucketUnknown) {
		return &ScoreRange{Ungraded: true}, nil
	}
	if floor, ok := strings.CutSuffix(s, "+"); ok {
		n, err := strconv.Atoi(floor)
		if err != nil || n < 0 {
			return nil, models.Invalidf("invalid score range %q", s)
		}
		return &ScoreRange{Min: n, Max: -1}, nil
	}
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return nil, models.Invalidf("invalid score range %q", s)
	}
	from, err1 := strconv.Atoi(lo)
	to, err2 := strconv.Atoi(hi)
	if err1 != nil || err2 != nil || from < 0 || to < from {
		return nil, models.Invalidf("invalid score range %q", s)
	}
	return &ScoreRange{Min: from, Max: to}, nil
}

func (sr ScoreRange) Match(r *models.Restaurant) bool {
	score, ok := r.CurrentScore()
	if sr.Ungraded || !ok {
		return sr.Ungraded && !ok
	}
	return score >= sr.Min && (sr.Max < 0 || score <= sr.Max)
}

// Filter selects records by exact cuisine, exact borough and current-score range.
// Zero fields match everything.
type Filter struct {
	Cuisine string
	Borough string
	Score   *ScoreRange
}

func (f Filter) Empty() bool {
	return f.Cuisine == "" && f.Borough == "" && f.Score == nil
}

func (f Filter) Match(r *models.Restaurant) bool {
	if f.Cuisine != "" && r.Cuisine != f.Cuisine {
		return false
	}
	if f.Borough != "" && r.Borough != f.Borough {
		return false
	}
	if f.Score != nil && !f.Score.Match(r) {
		return false
	}
	return true
}
