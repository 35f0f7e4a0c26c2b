// Package report derives human-facing integrity reports from risk results.
// All numbers are computed upstream by the risk engine; this package only
// reshapes and annotates them.
package report

import (
	"fmt"

	"github.com/vigilhq/vigil/internal/integrity"
	"github.com/vigilhq/vigil/internal/risk"
)

// maxExpectedMovementScore normalizes the weighted movement score onto a
// 0-100 percentage. A session that accumulates 30 weighted movement points
// is considered fully restless.
const maxExpectedMovementScore = 30

// Summary carries the headline numbers of a final report.
type Summary struct {
	RiskScore          int        `json:"risk_score"`
	RiskLevel          risk.Level `json:"risk_level"`
	MovementPercentage int        `json:"movement_percentage"`
}

// BehaviorCounts lists raw behavior occurrences surfaced to reviewers.
type BehaviorCounts struct {
	FaceMissing           int  `json:"face_missing"`
	TabSwitch             int  `json:"tab_switch"`
	WindowBlur            int  `json:"window_blur"`
	MultipleFacesDetected bool `json:"multiple_faces_detected"`
}

// Interpretation holds free-text readings of each behavior dimension.
// Fields are present only when the corresponding count is non-zero.
type Interpretation struct {
	FacePresence     string `json:"face_presence,omitempty"`
	TabBehavior      string `json:"tab_behavior,omitempty"`
	FocusBehavior    string `json:"focus_behavior,omitempty"`
	ExternalPresence string `json:"external_presence,omitempty"`
}

// FinalReport is the reviewer-facing integrity report for one session.
type FinalReport struct {
	SessionID         string         `json:"session_id"`
	Summary           Summary        `json:"summary"`
	BehaviorCounts    BehaviorCounts `json:"behavior_counts"`
	Interpretation    Interpretation `json:"interpretation"`
	AINote            string         `json:"ai_note"`
	FinalDecisionNote string         `json:"final_decision_note"`
}

// Build transforms a risk result into a final report. Pure function.
func Build(r *risk.Result) *FinalReport {
	counts := r.EventCounts

	multipleFaces := false
	for _, reason := range r.Reasons {
		if reason.EventType == integrity.EventMultipleFaces {
			multipleFaces = true
			break
		}
	}

	movementScore := counts.FaceMissing*3 + counts.TabSwitch*2 + counts.WindowBlur*1
	movementPercentage := movementScore * 100 / maxExpectedMovementScore
	if movementPercentage > 100 {
		movementPercentage = 100
	}

	interp := Interpretation{}
	if counts.FaceMissing > 0 {
		interp.FacePresence = fmt.Sprintf("Candidate left the camera frame %d times", counts.FaceMissing)
	}
	if counts.TabSwitch > 0 {
		interp.TabBehavior = fmt.Sprintf("Tab switching observed %d times", counts.TabSwitch)
	}
	if counts.WindowBlur > 0 {
		interp.FocusBehavior = fmt.Sprintf("Window focus was lost %d times", counts.WindowBlur)
	}
	if multipleFaces {
		interp.ExternalPresence = "More than one face was detected during the interview"
	}

	return &FinalReport{
		SessionID: r.SessionID,
		Summary: Summary{
			RiskScore:          r.Score,
			RiskLevel:          r.Level,
			MovementPercentage: movementPercentage,
		},
		BehaviorCounts: BehaviorCounts{
			FaceMissing:           counts.FaceMissing,
			TabSwitch:             counts.TabSwitch,
			WindowBlur:            counts.WindowBlur,
			MultipleFacesDetected: multipleFaces,
		},
		Interpretation: interp,
		AINote: "This report summarizes observed candidate behavior during the interview. " +
			"AI provides behavioral indicators only.",
		FinalDecisionNote: "Final interview decisions should always be made by the interviewer.",
	}
}
