package auth

import "github.com/proneo/platform/internal/domain"

// ApproverRoles returns roles that can act on pending access requests and
// edit the shared picklists.
func ApproverRoles() []domain.Role {
	return []domain.Role{domain.RoleDirector, domain.RoleAdmin}
}

// AdminRoles returns roles that can manage existing users.
func AdminRoles() []domain.Role {
	return []domain.Role{domain.RoleAdmin}
}
