package request

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// NavigateRequest is the request body for changing the current view
type NavigateRequest struct {
	View string `json:"view" validate:"required"`
}

// PredictRequest is the request body for a prediction.
// An empty list is passed through so the caller gets EMPTY_SELECTION rather than a validation error.
type PredictRequest struct {
	Symptoms []string `json:"symptoms" validate:"dive,required"`
}
