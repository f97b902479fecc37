package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case SymptomList:
		o.printSymptoms(v)
	case Prediction:
		o.printPrediction(v)
	case History:
		o.printHistory(v)
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

// Session response type (matches API)
type Session struct {
	Token         string    `json:"token"`
	Username      string    `json:"username,omitempty"`
	View          string    `json:"view"`
	State         string    `json:"state"`
	Authenticated bool      `json:"authenticated"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// SymptomList response type
type SymptomList struct {
	Symptoms []string `json:"symptoms"`
}

// Prediction response type
type Prediction struct {
	Symptoms        []string `json:"symptoms"`
	Disease         string   `json:"disease"`
	Confidence      float64  `json:"confidence"`
	Advice          string   `json:"advice"`
	ConsultationURL string   `json:"consultation_url"`
	Session         Session  `json:"session"`
}

// HistoryEntry response type
type HistoryEntry struct {
	ID         string    `json:"id"`
	Symptoms   []string  `json:"symptoms"`
	Disease    string    `json:"disease"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// History response type
type History struct {
	Username string         `json:"username"`
	Entries  []HistoryEntry `json:"entries"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSession(s Session) {
	if s.Authenticated {
		o.printf("User: %s\n", s.Username)
	} else {
		o.printf("User: (not logged in)\n")
	}
	o.printf("View: %s\n", s.View)
	o.printf("State: %s\n", s.State)
	o.printf("Expires: %s\n", s.ExpiresAt.Local().Format(time.DateTime))
}

func (o *Output) printSymptoms(s SymptomList) {
	for _, symptom := range s.Symptoms {
		o.printf("  - %s\n", symptom)
	}
}

func (o *Output) printPrediction(p Prediction) {
	o.printf("Symptoms: %s\n", strings.Join(p.Symptoms, ", "))
	o.printf("Prediction: %s\n", p.Disease)
	o.printf("Confidence: %.2f%%\n", p.Confidence)
	o.printf("\n%s\n", p.Advice)
	o.printf("\nConsult a doctor: %s\n", p.ConsultationURL)
}

func (o *Output) printHistory(h History) {
	if len(h.Entries) == 0 {
		o.printf("No history found.\n")
		return
	}

	for i, e := range h.Entries {
		o.printf("%d. %s  %s (%.2f%%)\n", i+1, e.CreatedAt.Local().Format(time.DateTime), e.Disease, e.Confidence)
		o.printf("   Symptoms: %s\n", strings.Join(e.Symptoms, ", "))
	}
}
