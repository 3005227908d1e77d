package domain

// Role is an application role stored on the user document.
type Role string

const (
	RoleScout         Role = "scout"
	RoleDirector      Role = "director"
	RoleAdmin         Role = "admin"
	RoleGlobal        Role = "global"
	RoleAgent         Role = "agente"
	RoleTreasurer     Role = "tesorero"
	RoleCommunication Role = "comunicacion"
	RoleExternalScout Role = "scout_externo"
)

// Roles returns every known role.
func Roles() []Role {
	return []Role{
		RoleScout, RoleDirector, RoleAdmin, RoleGlobal,
		RoleAgent, RoleTreasurer, RoleCommunication, RoleExternalScout,
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// CanApproveUsers reports whether the role may act on pending access requests.
func (r Role) CanApproveUsers() bool {
	return r == RoleDirector || r == RoleAdmin
}

// User is a document in the users collection, keyed by lower-cased email.
type User struct {
	Email     string   `firestore:"-" json:"email"`
	Name      string   `firestore:"name" json:"name"`
	Role      Role     `firestore:"role" json:"role"`
	Sport     Category `firestore:"sport,omitempty" json:"sport,omitempty"`
	Approved  bool     `firestore:"approved" json:"approved"`
	FCMTokens []string `firestore:"fcmTokens,omitempty" json:"-"`
}

// PendingUserRequest is an unapproved account awaiting a director or admin.
type PendingUserRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PendingRequest converts an unapproved user into an access request.
func (u User) PendingRequest() PendingUserRequest {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	return PendingUserRequest{ID: u.Email, Name: name, Email: u.Email}
}
