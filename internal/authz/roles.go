package authz

// AdminEmail is the login of the seeded administrator account.
const AdminEmail = "admin"

type Role string

const (
	RoleStandard      Role = "padrao"
	RoleAdministrator Role = "administrador"
)

// RoleForNewAccount decides the role stored with a freshly created account.
func RoleForNewAccount(email string) Role {
	if email == AdminEmail {
		return RoleAdministrator
	}
	return RoleStandard
}

// DecodeRole maps a stored papel value; anything unknown is a standard role.
func DecodeRole(stored string) Role {
	if Role(stored) == RoleAdministrator {
		return RoleAdministrator
	}
	return RoleStandard
}

// Session is the acting identity handed to every gated operation.
type Session struct {
	Email string
	Role  Role
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdministrator
}

// Permit is the ownership rule shared by every owned resource:
// the owner or an administrator may modify it.
func Permit(actor Session, ownerEmail string) bool {
	return actor.IsAdmin() || (actor.Email != "" && actor.Email == ownerEmail)
}
