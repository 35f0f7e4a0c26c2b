// Package integrity defines the catalog of integrity signals that external
// monitors (face detector, browser tracker) can report during a session.
package integrity

// EventType identifies a detected integrity signal.
type EventType string

const (
	EventFaceDetected  EventType = "FACE_DETECTED"
	EventFaceMissing   EventType = "FACE_MISSING"
	EventMultipleFaces EventType = "MULTIPLE_FACES"
	EventTabSwitch     EventType = "TAB_SWITCH"
	EventWindowBlur    EventType = "WINDOW_BLUR"
	EventWindowFocus   EventType = "WINDOW_FOCUS"
)

// Severity is the signal source's own assessment of how serious the signal
// is. It is recorded and surfaced in reports but never consulted by scoring.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// EventTypes lists every known event type.
func EventTypes() []EventType {
	return []EventType{
		EventFaceDetected,
		EventFaceMissing,
		EventMultipleFaces,
		EventTabSwitch,
		EventWindowBlur,
		EventWindowFocus,
	}
}

// ValidEventType reports whether t is a known event type.
func ValidEventType(t EventType) bool {
	switch t {
	case EventFaceDetected, EventFaceMissing, EventMultipleFaces,
		EventTabSwitch, EventWindowBlur, EventWindowFocus:
		return true
	}
	return false
}

// ValidSeverity reports whether s is a known severity level.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// ValidConfidence reports whether a detector confidence is in [0, 1].
// Confidence is optional; callers should only validate it when present.
func ValidConfidence(c float64) bool {
	return c >= 0.0 && c <= 1.0
}
