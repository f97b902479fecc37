package response

import (
	"time"

	"github.com/mcoot/symptomcheck/internal/model"
)

// Session is the public view of a session
type Session struct {
	Token         string    `json:"token"`
	Username      string    `json:"username,omitempty"`
	View          string    `json:"view"`
	State         string    `json:"state"`
	Authenticated bool      `json:"authenticated"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// SessionFromModel converts a model session to a response
func SessionFromModel(s *model.Session) Session {
	return Session{
		Token:         s.Token,
		Username:      s.Username,
		View:          string(s.View),
		State:         s.State(),
		Authenticated: s.IsAuthenticated(),
		ExpiresAt:     s.ExpiresAt,
	}
}

// Symptoms lists the selectable symptoms in vocabulary order
type Symptoms struct {
	Symptoms []string `json:"symptoms"`
}

// Prediction is the result of a prediction request
type Prediction struct {
	Symptoms        []string `json:"symptoms"`
	Disease         string   `json:"disease"`
	Confidence      float64  `json:"confidence"`
	Advice          string   `json:"advice"`
	ConsultationURL string   `json:"consultation_url"`
	Session         Session  `json:"session"`
}

// PredictionFromModel converts a prediction to a response
func PredictionFromModel(p *model.Prediction, s *model.Session) Prediction {
	return Prediction{
		Symptoms:        p.Symptoms,
		Disease:         p.Disease.String(),
		Confidence:      p.Confidence,
		Advice:          p.Advice(),
		ConsultationURL: model.ConsultationURL,
		Session:         SessionFromModel(s),
	}
}

// HistoryEntry is one past prediction
type HistoryEntry struct {
	ID         string    `json:"id"`
	Symptoms   []string  `json:"symptoms"`
	Disease    string    `json:"disease"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// History lists a user's predictions, most recent first
type History struct {
	Username string         `json:"username"`
	Entries  []HistoryEntry `json:"entries"`
}

// HistoryFromModel converts history entries to a response
func HistoryFromModel(username string, entries []*model.HistoryEntry) History {
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{
			ID:         e.ID,
			Symptoms:   e.Symptoms,
			Disease:    e.Disease.String(),
			Confidence: e.Confidence,
			CreatedAt:  e.CreatedAt,
		}
	}
	return History{Username: username, Entries: out}
}
