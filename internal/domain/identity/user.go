package identity

import (
	"strings"

	"github.com/opsync/backend/internal/domain/shared"
)

// Role represents a user's role, which maps to a fixed permission set
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleClerk   Role = "clerk"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleClerk:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Permission names guarding route groups
const (
	PermissionInvoicesRead    = "invoices:read"
	PermissionInvoicesWrite   = "invoices:write"
	PermissionPurchasingRead  = "purchasing:read"
	PermissionPurchasingWrite = "purchasing:write"
	PermissionCatalogWrite    = "catalog:write"
	PermissionPartnersWrite   = "partners:write"
	PermissionUsersManage     = "users:manage"
)

// rolePermissions is the closed role → permission table. Clerks read and
// record; managers additionally approve and maintain the catalog and
// partners; admins manage users on top of that.
var rolePermissions = map[Role]map[string]bool{
	RoleClerk: {
		PermissionInvoicesRead:   true,
		PermissionInvoicesWrite:  true,
		PermissionPurchasingRead: true,
	},
	RoleManager: {
		PermissionInvoicesRead:    true,
		PermissionInvoicesWrite:   true,
		PermissionPurchasingRead:  true,
		PermissionPurchasingWrite: true,
		PermissionCatalogWrite:    true,
		PermissionPartnersWrite:   true,
	},
	RoleAdmin: {
		PermissionInvoicesRead:    true,
		PermissionInvoicesWrite:   true,
		PermissionPurchasingRead:  true,
		PermissionPurchasingWrite: true,
		PermissionCatalogWrite:    true,
		PermissionPartnersWrite:   true,
		PermissionUsersManage:     true,
	},
}

// HasPermission reports whether the role grants the named permission
func (r Role) HasPermission(permission string) bool {
	return rolePermissions[r][permission]
}

// User is an operator account. Passwords are stored as bcrypt hashes;
// hashing happens in the auth service, never here.
type User struct {
	shared.BaseAggregateRoot
	Username     string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:255"`
	Role         Role   `gorm:"size:20;not null;default:clerk"`
	Active       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active user with a pre-hashed password
func NewUser(username, passwordHash, displayName string, role Role) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Username cannot be empty")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Password hash cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown role: "+role.String())
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		PasswordHash:      passwordHash,
		DisplayName:       displayName,
		Role:              role,
		Active:            true,
	}, nil
}

// ChangeRole assigns a new role to the user
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Unknown role: "+role.String())
	}
	u.Role = role
	u.Touch()
	return nil
}

// Deactivate disables the account without deleting it
func (u *User) Deactivate() {
	u.Active = false
	u.Touch()
}

// CanLogin reports whether the account may authenticate
func (u *User) CanLogin() bool {
	return u.Active
}
