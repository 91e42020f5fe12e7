package dto

import "time"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Conteos operativos del tenant; los mapas van indexados por estado o tipo.
type DashboardSummaryDTO struct {
	RequestsByStatus   map[string]int `json:"requests_by_status"`
	UnitsByStatus      map[string]int `json:"units_by_status"`
	OpenTickets        int            `json:"open_tickets"`
	SLABreaches        int            `json:"sla_breaches"`
	MovementsLast7Days map[string]int `json:"movements_last_7_days"`

	// Metadatos del período
	GeneratedAt time.Time `json:"generated_at"`
	DateLabel   string    `json:"date_label"` // ej: "Octubre 2026"
}
