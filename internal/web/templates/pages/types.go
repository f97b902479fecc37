package pages

import (
	"fmt"
	"slices"
	"time"

	"github.com/a-h/templ"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/web/templates/layout"
)

// LoginData holds data for the login page
type LoginData struct {
	layout.PageData
	Username string
	Error    string
}

// RegisterData holds data for the registration page
type RegisterData struct {
	layout.PageData
	Username    string
	Error       string
	FieldErrors map[string]string
}

// Feature is one entry in the home page feature list
type Feature struct {
	Name        string
	Description string
}

// Features describes what the site offers
var Features = []Feature{
	{"Disease Prediction", "Input your symptoms and receive a predicted disease along with confidence level."},
	{"Personalized History", "View a history of your past predictions and symptoms."},
	{"User-Friendly Interface", "A simple, intuitive design to make it easy for everyone to use."},
	{"Professional Healthcare Links", "Direct access to professional medical advice through consultation links."},
	{"Secure Login and Registration", "Only authorized users can access prediction history and personal data."},
}

// HomeData holds data for the home page
type HomeData struct {
	layout.PageData
	Features []Feature
}

// PredictData holds data for the prediction page
type PredictData struct {
	layout.PageData
	Symptoms []string // full vocabulary, in order
	Selected []string
	Warning  string
	Error    string
	Result   *model.Prediction
}

func (d PredictData) isSelected(symptom string) bool {
	return slices.Contains(d.Selected, symptom)
}

// HistoryData holds data for the history page
type HistoryData struct {
	layout.PageData
	Entries []*model.HistoryEntry // most recent first
}

// ErrorData holds data for the error page
type ErrorData struct {
	layout.PageData
	Message string
}

// FormatConfidence renders a percentage with two decimals
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.2f%%", confidence)
}

func machineTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func displayTime(t time.Time) string {
	return t.UTC().Format("2 Jan 2006 15:04")
}

var consultationURL = templ.URL(model.ConsultationURL)
