// Package mapper convierte entidades de dominio en DTOs de salida.
// Lo comparten los casos de uso que devuelven los mismos recursos.
package mapper

import (
	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
)

// Request convierte una requisición con sus líneas.
func Request(r *entity.Request) dto.RequestResponse {
	items := make([]dto.RequestItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.RequestItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			DestinationCode: it.DestinationCode,
			Role:            it.Role,
		})
	}
	return dto.RequestResponse{
		ID:              r.ID,
		TenantID:        r.TenantID,
		Number:          r.Number,
		Type:            r.Type,
		Status:          r.Status,
		ServiceID:       r.ServiceID,
		RequesterID:     r.RequesterID,
		RequesterName:   r.RequesterName,
		RequesterEmail:  r.RequesterEmail,
		Notes:           r.Notes,
		Items:           items,
		Approval:        signature(r.Approval),
		Pickup:          signature(r.Pickup),
		RejectionReason: r.RejectionReason,
		PickupLockBy:    r.PickupLockBy,
		PickupLockUntil: r.PickupLockUntil,
		SubmittedAt:     r.SubmittedAt,
		DecidedAt:       r.DecidedAt,
		FulfilledAt:     r.FulfilledAt,
		FulfilledBy:     r.FulfilledBy,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func signature(s *entity.Signature) *dto.SignatureResponse {
	if s == nil {
		return nil
	}
	return &dto.SignatureResponse{UserID: s.UserID, Name: s.Name, Hash: s.Hash, SignedAt: s.SignedAt}
}

// RequestEvent convierte una fila de bitácora.
func RequestEvent(e *entity.RequestEvent) dto.RequestEventResponse {
	return dto.RequestEventResponse{
		ID:         e.ID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		Action:     e.Action,
		ActorID:    e.ActorID,
		Note:       e.Note,
		CreatedAt:  e.CreatedAt,
	}
}

// Unit convierte una unidad física.
func Unit(u *entity.ProductUnit) dto.UnitResponse {
	return dto.UnitResponse{
		ID:         u.ID,
		ProductID:  u.ProductID,
		Code:       u.Code,
		Serial:     u.Serial,
		Status:     u.Status,
		AssignedTo: u.AssignedTo,
		InvoiceID:  u.InvoiceID,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Movement convierte una fila del libro de movimientos.
func Movement(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:         m.ID,
		ProductID:  m.ProductID,
		UnitID:     m.UnitID,
		RequestID:  m.RequestID,
		InvoiceID:  m.InvoiceID,
		Type:       m.Type,
		Quantity:   m.Quantity,
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		Reason:     m.Reason,
		CreatedAt:  m.CreatedAt,
		CreatedBy:  m.CreatedBy,
	}
}

// Asset convierte un bien patrimonial.
func Asset(a *entity.MunicipalAsset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:          a.ID,
		UnitID:      a.UnitID,
		ProductID:   a.ProductID,
		AssetTag:    a.AssetTag,
		Status:      a.Status,
		ServiceID:   a.ServiceID,
		Location:    a.Location,
		CustodianID: a.CustodianID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AssetPtr igual que Asset pero admite nil.
func AssetPtr(a *entity.MunicipalAsset) *dto.AssetResponse {
	if a == nil {
		return nil
	}
	out := Asset(a)
	return &out
}

// User convierte un usuario; nunca expone el hash.
func User(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
