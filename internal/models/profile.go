package models

import "time"

// Role names used by the portal.
const (
	RoleAdministracion = "administracion"
	RoleCoordinacion   = "coordinacion"
	RoleTecnico        = "tecnico"
	RoleOperario       = "operario"
	RoleInvitado       = "invitado"
)

// Profile is the portal-side view of an identity from the external auth store.
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	FullName  string    `json:"full_name" gorm:"column:full_name"`
	Email     string    `json:"email" gorm:"column:email"`
	Role      string    `json:"role" gorm:"column:role"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName maps the struct to the profiles table.
func (Profile) TableName() string {
	return "profiles"
}

// EffectiveRole returns the profile role, or invitado when none is set.
func (p *Profile) EffectiveRole() string {
	if p == nil || p.Role == "" {
		return RoleInvitado
	}
	return p.Role
}
