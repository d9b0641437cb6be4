package identity

// User is the authenticated principal attached to a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Phone string `json:"phone,omitempty"`
}

// Clinic is the organization a clinic-admin session is scoped to. Present
// only on ADMIN sessions.
type Clinic struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	PlanID   string `json:"plan_id,omitempty"`
}

// Credentials are the fields every role's login form submits.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the patient registration payload.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}
