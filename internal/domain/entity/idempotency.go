package entity

import (
	"encoding/json"
	"time"
)

// Operaciones protegidas por clave de idempotencia.
const (
	IdempotencyOpExecuteRequest = "request.execute"
)

// IdempotencyKey registro de una operación ya ejecutada con la respuesta serializada.
type IdempotencyKey struct {
	Key        string
	TenantID   string
	Operation  string
	ResourceID string
	Response   json.RawMessage
	CreatedBy  string
	CreatedAt  time.Time
}
