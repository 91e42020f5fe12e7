package dto

import "time"

// CreateServiceRequest entrada para crear una dependencia municipal.
type CreateServiceRequest struct {
	Code     string `json:"code" validate:"required,min=1,max=30"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Location string `json:"location" validate:"max=200"`
}

// ServiceResponse salida de una dependencia.
type ServiceResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServiceListResponse lista de dependencias.
type ServiceListResponse struct {
	Items []ServiceResponse `json:"items"`
}
