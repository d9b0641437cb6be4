package identity

import "strings"

// Role is the closed set of access roles. Every session carries exactly one.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN" // clinic admin
	RoleDoctor     Role = "DOCTOR"
	RoleUser       Role = "USER" // patient
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleDoctor, RoleUser:
		return true
	}
	return false
}

// DashboardPath maps a role to its own landing route. The mapping is total:
// unknown roles fall back to the public root so a revoked or unrecognized
// role never lands on another role's dashboard.
func (r Role) DashboardPath() string {
	switch r {
	case RoleSuperAdmin:
		return "/super-admin/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleDoctor:
		return "/doctor/dashboard"
	case RoleUser:
		return "/app/bookings"
	default:
		return "/"
	}
}

// LoginPath maps a role to its login route.
func (r Role) LoginPath() string {
	switch r {
	case RoleSuperAdmin:
		return "/super-admin/login"
	case RoleAdmin:
		return "/admin/login"
	case RoleDoctor:
		return "/doctor/login"
	default:
		return "/login"
	}
}

// LoginPathForRequest chooses the login route for an unauthenticated request
// by inspecting the attempted path prefix, so a bounced visitor lands on the
// login form for the area they were trying to reach.
func LoginPathForRequest(path string) string {
	switch {
	case strings.HasPrefix(path, "/super-admin"):
		return RoleSuperAdmin.LoginPath()
	case strings.HasPrefix(path, "/doctor"):
		return RoleDoctor.LoginPath()
	case strings.HasPrefix(path, "/admin"):
		return RoleAdmin.LoginPath()
	default:
		return RoleUser.LoginPath()
	}
}
