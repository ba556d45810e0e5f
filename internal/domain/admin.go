package domain

// AdminContext is the authenticated operator injected into admin handlers.
type AdminContext struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}
