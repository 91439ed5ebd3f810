package dto

// Success payloads are flat: the frontend reads message/userId/email/role
// directly off the body.

type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

type LoginResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CheckResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
}

type AdminResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Role    string `json:"role"`
}
