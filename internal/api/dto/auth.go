package dto

// CredentialsForm is posted by both the signup and login pages
type CredentialsForm struct {
	Username string `form:"username" binding:"required,max=64"`
	Password string `form:"password" binding:"required,max=72"` // bcrypt limit
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Time   string `json:"time"`
}
