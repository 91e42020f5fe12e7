package dto

import "time"

// CreateRoleRequest rol personalizado; permisos "objeto:acción" con comodín "*".
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Permissions []string `json:"permissions" validate:"required,min=1,dive,permission"`
}

// RoleResponse salida de un rol.
type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssignRoleRequest asigna un rol a un usuario; ServiceID vacío = todo el tenant.
type AssignRoleRequest struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	RoleID    string `json:"role_id" validate:"required,uuid"`
	ServiceID string `json:"service_id" validate:"omitempty,uuid"`
}

// AssignmentResponse salida de una asignación.
type AssignmentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RoleID    string    `json:"role_id"`
	ServiceID string    `json:"service_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// PermissionCheckResponse resultado de una verificación puntual.
type PermissionCheckResponse struct {
	UserID     string `json:"user_id"`
	ServiceID  string `json:"service_id,omitempty"`
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
}
