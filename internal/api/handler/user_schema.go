package handler

// --- Request types ---

// Shape rules beyond presence (email format, password length, trimming) are
// enforced by the domain service so that they apply uniformly after
// normalization; the validator only fast-fails missing fields.

type createUserRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Active   *bool  `json:"active"`
	RoleID   int    `json:"idRol"    validate:"required"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Active   *bool   `json:"active"`
	RoleID   *int    `json:"idRol"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Response envelope ---

// envelope is the canonical shape of every non-error response. Token is only
// set on login.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Token   string `json:"token,omitempty"`
}

func ok(message string, data any) envelope {
	return envelope{Success: true, Message: message, Data: data}
}

func okList(message string, data any, count int) envelope {
	return envelope{Success: true, Message: message, Data: data, Count: &count}
}
