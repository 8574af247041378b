package users

import (
	"time"

	"github.com/google/uuid"
)

// Role is the canonical role enumeration shared by every service.
// Comparison is always a case-sensitive exact match; anything outside
// this set is treated as unauthorized.
type Role string

const (
	RoleAdministrator    Role = "administrator"
	RoleInventoryManager Role = "inventory_manager"
	RoleSalesStaff       Role = "sales_staff"
	RoleResourceManager  Role = "resource_manager"
)

// AllRoles lists every valid role, in a stable order.
func AllRoles() []Role {
	return []Role{RoleAdministrator, RoleInventoryManager, RoleSalesStaff, RoleResourceManager}
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleAdministrator), string(RoleInventoryManager), string(RoleSalesStaff), string(RoleResourceManager):
		return true
	default:
		return false
	}
}

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"not null;default:'sales_staff'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
