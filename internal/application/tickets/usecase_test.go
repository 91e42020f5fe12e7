package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/testutil/memstore"
)

type env struct {
	f   *memstore.Fixture
	uc  *UseCase
	now time.Time
}

func newEnv() *env {
	f := memstore.NewFixture()
	f.Auth.Grant(f.Warehouse.ID, "", entity.PermTicketsManage)
	e := &env{f: f, now: f.Now}
	e.uc = NewUseCase(f.Store.Repos(), f.Store.TxRunner(), f.Auth, f.Events)
	e.uc.now = func() time.Time { return e.now }
	return e
}

func (e *env) open(t *testing.T, priority string) *dto.TicketResponse {
	t.Helper()
	out, err := e.uc.Create(context.Background(), e.f.Actor(e.f.Staff), dto.CreateTicketRequest{
		Title:       "  Impresora sin tóner ",
		Description: "Piso 2",
		Priority:    priority,
		ServiceID:   e.f.Service.ID,
	})
	require.NoError(t, err)
	return out
}

func TestCreate_PlazosPorPrioridad(t *testing.T) {
	e := newEnv()
	out := e.open(t, entity.TicketPriorityHigh)

	assert.Equal(t, "TCK-000001", out.Number)
	assert.Equal(t, "Impresora sin tóner", out.Title)
	assert.Equal(t, entity.TicketStatusOpen, out.Status)
	assert.Equal(t, entity.TicketLevel1, out.Level)
	assert.Equal(t, []string{}, out.RequestIDs)
	assert.True(t, out.SLA.ResponseDueAt.Equal(e.now.Add(4*time.Hour)))
	assert.True(t, out.SLA.ResolutionDueAt.Equal(e.now.Add(24*time.Hour)))
	assert.False(t, out.SLA.ResponseBreached)

	crit := e.open(t, entity.TicketPriorityCritical)
	assert.Equal(t, "TCK-000002", crit.Number)
	assert.True(t, crit.SLA.ResponseDueAt.Equal(e.now.Add(time.Hour)))
	assert.Equal(t, []string{"ticket.created", "ticket.created"}, e.f.Events.Types())
}

func TestCreate_Errores(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	staff := e.f.Actor(e.f.Staff)

	_, err := e.uc.Create(ctx, staff, dto.CreateTicketRequest{Title: "Falla", Priority: "URGENTE"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.uc.Create(ctx, staff, dto.CreateTicketRequest{Title: "   ", Priority: entity.TicketPriorityLow})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.uc.Create(ctx, staff, dto.CreateTicketRequest{Title: "Falla", Priority: entity.TicketPriorityLow, ServiceID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.uc.Create(ctx, staff, dto.CreateTicketRequest{Title: "Falla", Priority: entity.TicketPriorityLow, AssigneeID: e.f.Warehouse.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden, "asignar exige tickets:manage")

	out, err := e.uc.Create(ctx, e.f.Actor(e.f.Warehouse), dto.CreateTicketRequest{Title: "Falla", Priority: entity.TicketPriorityLow, AssigneeID: e.f.Warehouse.ID})
	require.NoError(t, err)
	assert.Equal(t, e.f.Warehouse.ID, out.AssigneeID)
}

func TestAddMessage_PrimeraRespuestaIniciaElTicket(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	tk := e.open(t, entity.TicketPriorityMedium)

	_, err := e.uc.AddMessage(ctx, e.f.Actor(e.f.Staff), tk.ID, dto.AddMessageRequest{Body: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// el creador no cuenta como respuesta
	_, err = e.uc.AddMessage(ctx, e.f.Actor(e.f.Staff), tk.ID, dto.AddMessageRequest{Body: "¿alguna novedad?"})
	require.NoError(t, err)
	got, err := e.uc.Get(ctx, e.f.Actor(e.f.Staff), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusOpen, got.Ticket.Status)
	assert.Nil(t, got.Ticket.SLA.FirstResponseAt)

	_, err = e.uc.AddMessage(ctx, e.f.Actor(e.f.Admin), tk.ID, dto.AddMessageRequest{Body: "revisando"})
	require.NoError(t, err)

	e.now = e.now.Add(time.Minute)
	_, err = e.uc.AddMessage(ctx, e.f.Actor(e.f.Warehouse), tk.ID, dto.AddMessageRequest{Body: "voy en camino"})
	require.NoError(t, err)

	got, err = e.uc.Get(ctx, e.f.Actor(e.f.Staff), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusInProgress, got.Ticket.Status)
	require.NotNil(t, got.Ticket.SLA.FirstResponseAt)
	assert.True(t, got.Ticket.SLA.FirstResponseAt.Equal(e.f.Now), "la primera respuesta fue la del admin")
	require.Len(t, got.Messages, 4)
	assert.True(t, got.Messages[2].IsSystem)
	assert.Equal(t, "Estado OPEN -> IN_PROGRESS", got.Messages[2].Body)
	assert.Contains(t, e.f.Events.Types(), "ticket.in_progress")
}

func TestAddMessage_TercerosSinPermiso(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	tk, err := e.uc.Create(ctx, e.f.Actor(e.f.Warehouse), dto.CreateTicketRequest{Title: "Red caída", Priority: entity.TicketPriorityHigh})
	require.NoError(t, err)

	_, err = e.uc.AddMessage(ctx, e.f.Actor(e.f.Staff), tk.ID, dto.AddMessageRequest{Body: "a mí también"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.uc.AddMessage(ctx, e.f.Actor(e.f.Staff), uuid.NewString(), dto.AddMessageRequest{Body: "hola"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSLA_IncumplimientoDeRespuesta(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	tk := e.open(t, entity.TicketPriorityCritical)

	e.now = e.now.Add(2 * time.Hour)
	s, err := e.uc.SLAState(ctx, e.f.Actor(e.f.Staff), tk.ID)
	require.NoError(t, err)
	assert.True(t, s.ResponseBreached)
	assert.False(t, s.ResolutionBreached)
	assert.True(t, s.EvaluatedAt.Equal(e.now))

	// responder tarde no borra el incumplimiento
	_, err = e.uc.AddMessage(ctx, e.f.Actor(e.f.Warehouse), tk.ID, dto.AddMessageRequest{Body: "atendido"})
	require.NoError(t, err)
	_, err = e.uc.ChangeStatus(ctx, e.f.Actor(e.f.Warehouse), tk.ID, dto.ChangeTicketStatusRequest{To: entity.TicketStatusResolved})
	require.NoError(t, err)

	e.now = e.now.Add(10 * time.Hour)
	s, err = e.uc.SLAState(ctx, e.f.Actor(e.f.Staff), tk.ID)
	require.NoError(t, err)
	assert.True(t, s.ResponseBreached)
	assert.False(t, s.ResolutionBreached, "resuelto dentro de las 4 horas")
}

func TestChangeStatus_CicloCompleto(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	wh := e.f.Actor(e.f.Warehouse)
	tk := e.open(t, entity.TicketPriorityLow)

	_, err := e.uc.ChangeStatus(ctx, e.f.Actor(e.f.Staff), tk.ID, dto.ChangeTicketStatusRequest{To: entity.TicketStatusResolved})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	resolved, err := e.uc.ChangeStatus(ctx, wh, tk.ID, dto.ChangeTicketStatusRequest{To: entity.TicketStatusResolved, Note: "tóner cambiado"})
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusResolved, resolved.Status)
	require.NotNil(t, resolved.SLA.ResolvedAt)

	reopened, err := e.uc.ChangeStatus(ctx, wh, tk.ID, dto.ChangeTicketStatusRequest{To: entity.TicketStatusInProgress})
	require.NoError(t, err)
	assert.Nil(t, reopened.SLA.ResolvedAt)

	_, err = e.uc.ChangeStatus(ctx, wh, tk.ID, dto.ChangeTicketStatusRequest{To: entity.TicketStatusClosed})
	assert.ErrorIs(t, err, domain.ErrConflict, "IN_PROGRESS no cierra directo")

	_, err = e.uc.ChangeStatus(ctx, wh, tk.ID, dto.ChangeTicketStatusRequest{To: entity.TicketStatusResolved})
	require.NoError(t, err)
	closed, err := e.uc.ChangeStatus(ctx, wh, tk.ID, dto.ChangeTicketStatusRequest{To: entity.TicketStatusClosed})
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)

	_, err = e.uc.ChangeStatus(ctx, wh, tk.ID, dto.ChangeTicketStatusRequest{To: entity.TicketStatusOpen})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = e.uc.AddMessage(ctx, e.f.Actor(e.f.Staff), tk.ID, dto.AddMessageRequest{Body: "gracias"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := e.uc.Get(ctx, wh, tk.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "Estado OPEN -> RESOLVED: tóner cambiado", got.Messages[0].Body)
}

func TestEscalate_HastaL3(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	wh := e.f.Actor(e.f.Warehouse)
	tk := e.open(t, entity.TicketPriorityHigh)

	l2, err := e.uc.Escalate(ctx, wh, tk.ID, dto.EscalateTicketRequest{Note: "requiere proveedor"})
	require.NoError(t, err)
	assert.Equal(t, entity.TicketLevel2, l2.Level)
	l3, err := e.uc.Escalate(ctx, wh, tk.ID, dto.EscalateTicketRequest{})
	require.NoError(t, err)
	assert.Equal(t, entity.TicketLevel3, l3.Level)

	_, err = e.uc.Escalate(ctx, wh, tk.ID, dto.EscalateTicketRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := e.uc.Get(ctx, wh, tk.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Escalado L1 -> L2: requiere proveedor", got.Messages[0].Body)
	assert.Equal(t, []string{"ticket.created", "ticket.escalated", "ticket.escalated"}, e.f.Events.Types())
}

func TestLinkRequest(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	wh := e.f.Actor(e.f.Warehouse)
	tk := e.open(t, entity.TicketPriorityMedium)
	req := entity.Request{
		ID: uuid.NewString(), TenantID: e.f.Tenant.ID, Number: "REQ-000009", Type: entity.RequestTypeSupply,
		Status: entity.RequestStatusDraft, ServiceID: e.f.Service.ID, RequesterID: e.f.Staff.ID,
		CreatedAt: e.now, UpdatedAt: e.now,
	}
	require.NoError(t, e.f.Store.Repos().Requests.Create(ctx, &req))

	out, err := e.uc.LinkRequest(ctx, wh, tk.ID, dto.LinkRequestRequest{RequestID: req.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{req.ID}, out.RequestIDs)

	_, err = e.uc.LinkRequest(ctx, wh, tk.ID, dto.LinkRequestRequest{RequestID: req.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = e.uc.LinkRequest(ctx, wh, tk.ID, dto.LinkRequestRequest{RequestID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := e.uc.Get(ctx, wh, tk.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1, "el vínculo duplicado no deja mensaje")
	assert.Equal(t, "Requisición vinculada REQ-000009", got.Messages[0].Body)
}

func TestList_FiltraPorPrioridad(t *testing.T) {
	e := newEnv()
	e.open(t, entity.TicketPriorityHigh)
	e.open(t, entity.TicketPriorityLow)

	out, err := e.uc.List(context.Background(), e.f.Actor(e.f.Staff), entity.TicketFilter{Priority: entity.TicketPriorityLow})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, entity.TicketPriorityLow, out.Items[0].Priority)
}
