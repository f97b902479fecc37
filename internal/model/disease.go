package model

import "fmt"

// Disease is a class label produced by the classifier
type Disease string

// Diseases with dedicated advisory text
const (
	DiseaseA Disease = "Disease A"
	DiseaseB Disease = "Disease B"
)

var advisories = map[Disease]string{
	DiseaseA: "It looks like you might be suffering from Disease A. Please ensure to get sufficient rest, stay hydrated, and consult a specialist as soon as possible.",
	DiseaseB: "It seems like Disease B is likely. We recommend visiting a healthcare provider to confirm the diagnosis and get proper treatment.",
}

// ConsultationURL links to an external doctor consultation service, shown after each prediction
const ConsultationURL = "https://www.practo.com/"

// String returns the label
func (d Disease) String() string {
	return string(d)
}

// HasAdvisory reports whether the disease has dedicated advisory text
func (d Disease) HasAdvisory() bool {
	_, ok := advisories[d]
	return ok
}

// Advice returns the advisory text for the disease, falling back to a generic message
func (d Disease) Advice() string {
	if text, ok := advisories[d]; ok {
		return text
	}
	return fmt.Sprintf("Based on your symptoms, the model predicts %s. It would be best to follow up with a healthcare professional for proper guidance.", d)
}
