package domain

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID string
	Admin  bool
}
