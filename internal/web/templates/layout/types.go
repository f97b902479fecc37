package layout

import (
	"github.com/a-h/templ"

	"github.com/mcoot/symptomcheck/internal/model"
)

// FlashMessage is a one-shot notice carried across a redirect
type FlashMessage struct {
	Type    string // success, info, warning, error
	Message string
}

// PageData is shared by every page
type PageData struct {
	Title    string
	Username string // empty when anonymous
	View     model.View
	Flash    *FlashMessage
}

type navLink struct {
	view  model.View
	href  templ.SafeURL
	label string
}

var memberLinks = []navLink{
	{model.ViewHome, "/home", "Home"},
	{model.ViewPredict, "/predict", "Predict"},
	{model.ViewHistory, "/history", "History"},
}

var guestLinks = []navLink{
	{model.ViewLogin, "/login", "Login"},
	{model.ViewRegister, "/register", "Register"},
}

func navLinks(data PageData) []navLink {
	if data.Username != "" {
		return memberLinks
	}
	return guestLinks
}
