package risk

import (
	"sort"

	"github.com/vigilhq/vigil/internal/integrity"
)

// Engine computes a session's risk result from its full event history.
// It holds no mutable state: the same history always yields the same
// result, and recomputing after every admitted event keeps the stored
// score reproducible from the event log.
type Engine struct {
	rules      map[integrity.EventType]Rule
	thresholds Thresholds
}

// NewEngine creates an engine with the default rule table and thresholds.
func NewEngine() *Engine {
	return NewEngineWithRules(DefaultRules, DefaultThresholds)
}

// NewEngineWithRules creates an engine with a custom rule table. The table
// is copied so later mutation by the caller cannot affect scoring.
func NewEngineWithRules(rules map[integrity.EventType]Rule, thresholds Thresholds) *Engine {
	copied := make(map[integrity.EventType]Rule, len(rules))
	for t, r := range rules {
		copied[t] = r
	}
	return &Engine{rules: copied, thresholds: thresholds}
}

// Compute scores the given event history. Events are processed in ascending
// timestamp order regardless of the order they arrive in: a backfilled
// out-of-order timestamp must not change which occurrences count as the
// "first" hits under a rule's cap. The sort is stable so events sharing a
// timestamp keep their relative input order.
func (e *Engine) Compute(sessionID string, events []EventRecord) *Result {
	ordered := make([]EventRecord, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	score := 0
	occurrences := make(map[integrity.EventType]int)
	countableHits := make(map[integrity.EventType]int)
	reasons := []Reason{}

	for _, ev := range ordered {
		occurrences[ev.Type]++

		rule, ok := e.rules[ev.Type]
		if !ok {
			continue
		}
		if countableHits[ev.Type] >= rule.MaxHits {
			continue
		}

		score += rule.Score
		countableHits[ev.Type]++
		reasons = append(reasons, Reason{
			EventType:  ev.Type,
			Timestamp:  ev.Timestamp,
			ScoreAdded: rule.Score,
		})
	}

	return &Result{
		SessionID: sessionID,
		Score:     score,
		Level:     e.thresholds.LevelForScore(score),
		EventCounts: EventCounts{
			TabSwitch:   occurrences[integrity.EventTabSwitch],
			WindowBlur:  occurrences[integrity.EventWindowBlur],
			FaceMissing: occurrences[integrity.EventFaceMissing],
		},
		Reasons: reasons,
	}
}
