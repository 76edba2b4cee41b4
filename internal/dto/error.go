package dto

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	// Fatal marks configuration errors an operator must fix.
	Fatal bool `json:"fatal,omitempty"`
	// Missing lists unresolved system accounts or settings.
	Missing []string `json:"missing,omitempty"`
}
