package risk

import "github.com/vigilhq/vigil/internal/integrity"

// Rule defines how one event type contributes to the session score.
// Score is added for each occurrence until MaxHits occurrences have been
// counted; further occurrences contribute nothing.
type Rule struct {
	Score   int
	MaxHits int
}

// Thresholds are the inclusive minimum scores for the elevated levels.
// NORMAL has an implied floor of zero.
type Thresholds struct {
	Suspicious int
	HighRisk   int
}

// DefaultRules is the static rule table. Event types absent from the table
// (FACE_DETECTED, WINDOW_FOCUS) are recorded but never scored.
var DefaultRules = map[integrity.EventType]Rule{
	integrity.EventFaceMissing:   {Score: 20, MaxHits: 3},
	integrity.EventMultipleFaces: {Score: 20, MaxHits: 1},
	integrity.EventTabSwitch:     {Score: 10, MaxHits: 5},
	integrity.EventWindowBlur:    {Score: 10, MaxHits: 5},
}

// DefaultThresholds map scores onto levels: 40+ is SUSPICIOUS, 70+ is
// HIGH_RISK.
var DefaultThresholds = Thresholds{
	Suspicious: 40,
	HighRisk:   70,
}

// LevelForScore returns the level for a score using descending comparison
// against the thresholds.
func (t Thresholds) LevelForScore(score int) Level {
	switch {
	case score >= t.HighRisk:
		return LevelHighRisk
	case score >= t.Suspicious:
		return LevelSuspicious
	default:
		return LevelNormal
	}
}
