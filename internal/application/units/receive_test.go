package units

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/dto"
	"github.com/jhoicas/municipal-ops-api/internal/domain"
	"github.com/jhoicas/municipal-ops-api/internal/domain/entity"
	"github.com/jhoicas/municipal-ops-api/internal/testutil/memstore"
)

func TestReceiveInvoice_GeneraCodigosYSumaSaldo(t *testing.T) {
	f := memstore.NewFixture()
	f.Auth.Grant(f.Warehouse.ID, "", entity.PermStockReceive)
	uc := newUseCase(f)
	ctx := context.Background()

	out, err := uc.ReceiveInvoice(ctx, f.Actor(f.Warehouse), dto.ReceiveInvoiceRequest{
		Supplier: " Tecnología Andina SAS ",
		Number:   "FV-1001",
		Total:    decimal.RequireFromString("7250000"),
		Lines: []dto.ReceiveLineInput{
			{ProductID: f.Serialized.ID, Quantity: decimal.NewFromInt(2), Serials: []string{"SN-A", "SN-B"}},
			{ProductID: f.Bulk.ID, Quantity: decimal.RequireFromString("5.5")},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Units, 2)
	assert.Equal(t, "LAP-01-0001", out.Units[0].Code)
	assert.Equal(t, "LAP-01-0002", out.Units[1].Code)
	assert.Equal(t, "SN-B", out.Units[1].Serial)
	assert.Equal(t, out.InvoiceID, out.Units[0].InvoiceID)
	assert.Len(t, out.Movements, 3)
	for _, m := range out.Movements {
		assert.Equal(t, entity.MovementTypeIn, m.Type)
	}
	assert.True(t, f.Stock(f.Serialized.ID).Equal(decimal.NewFromInt(2)))
	assert.True(t, f.Stock(f.Bulk.ID).Equal(decimal.RequireFromString("5.5")))

	inv, err := f.Store.Repos().Invoices.GetByID(ctx, f.Tenant.ID, out.InvoiceID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, "Tecnología Andina SAS", inv.Supplier)
	assert.True(t, inv.IssuedAt.Equal(f.Now), "sin fecha de emisión se usa la de registro")

	// la numeración de códigos continúa en la siguiente factura
	next, err := uc.ReceiveInvoice(ctx, f.Actor(f.Warehouse), dto.ReceiveInvoiceRequest{
		Supplier: "Tecnología Andina SAS",
		Number:   "FV-1002",
		Lines:    []dto.ReceiveLineInput{{ProductID: f.Serialized.ID, Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "LAP-01-0003", next.Units[0].Code)
	assert.Equal(t, []string{"stock.received", "stock.received"}, f.Events.Types())
}

func TestReceiveInvoice_FacturaDuplicadaNoDejaEfectos(t *testing.T) {
	f := memstore.NewFixture()
	f.Auth.Grant(f.Warehouse.ID, "", entity.PermStockReceive)
	uc := newUseCase(f)
	ctx := context.Background()
	in := dto.ReceiveInvoiceRequest{
		Supplier: "Papelería Central",
		Number:   "A-77",
		Lines:    []dto.ReceiveLineInput{{ProductID: f.Bulk.ID, Quantity: decimal.NewFromInt(10)}},
	}

	_, err := uc.ReceiveInvoice(ctx, f.Actor(f.Warehouse), in)
	require.NoError(t, err)
	_, err = uc.ReceiveInvoice(ctx, f.Actor(f.Warehouse), in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.True(t, f.Stock(f.Bulk.ID).Equal(decimal.NewFromInt(10)))
}

func TestReceiveInvoice_CodigoExistenteRevierteTodo(t *testing.T) {
	f := memstore.NewFixture()
	f.Auth.Grant(f.Warehouse.ID, "", entity.PermStockReceive)
	uc := newUseCase(f)
	ctx := context.Background()
	f.AddUnits(f.Serialized.ID, "LAP-0002")

	_, err := uc.ReceiveInvoice(ctx, f.Actor(f.Warehouse), dto.ReceiveInvoiceRequest{
		Supplier: "Tecnología Andina SAS",
		Number:   "FV-2000",
		Lines: []dto.ReceiveLineInput{
			{ProductID: f.Bulk.ID, Quantity: decimal.NewFromInt(4)},
			{ProductID: f.Serialized.ID, Quantity: decimal.NewFromInt(2), Codes: []string{"LAP-0001", "LAP-0002"}},
		},
	})
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Nil(t, f.Unit("LAP-0001"))
	assert.True(t, f.Stock(f.Bulk.ID).IsZero())
	assert.True(t, f.Stock(f.Serialized.ID).Equal(decimal.NewFromInt(1)))
	assert.Empty(t, f.Events.Types())
}

func TestReceiveInvoice_Validaciones(t *testing.T) {
	f := memstore.NewFixture()
	f.Auth.Grant(f.Warehouse.ID, "", entity.PermStockReceive)
	uc := newUseCase(f)
	ctx := context.Background()

	line := func(l dto.ReceiveLineInput) dto.ReceiveInvoiceRequest {
		return dto.ReceiveInvoiceRequest{Supplier: "Proveedor", Number: "X-1", Lines: []dto.ReceiveLineInput{l}}
	}
	cases := []struct {
		name string
		in   dto.ReceiveInvoiceRequest
	}{
		{"sin líneas", dto.ReceiveInvoiceRequest{Supplier: "Proveedor", Number: "X-1"}},
		{"sin proveedor", dto.ReceiveInvoiceRequest{Supplier: " ", Number: "X-1", Lines: []dto.ReceiveLineInput{{ProductID: f.Bulk.ID, Quantity: decimal.NewFromInt(1)}}}},
		{"cantidad cero", line(dto.ReceiveLineInput{ProductID: f.Bulk.ID, Quantity: decimal.Zero})},
		{"serializado fraccionario", line(dto.ReceiveLineInput{ProductID: f.Serialized.ID, Quantity: decimal.RequireFromString("1.5")})},
		{"códigos incompletos", line(dto.ReceiveLineInput{ProductID: f.Serialized.ID, Quantity: decimal.NewFromInt(2), Codes: []string{"LAP-0001"}})},
		{"seriales de más", line(dto.ReceiveLineInput{ProductID: f.Serialized.ID, Quantity: decimal.NewFromInt(1), Serials: []string{"A", "B"}})},
		{"códigos en granel", line(dto.ReceiveLineInput{ProductID: f.Bulk.ID, Quantity: decimal.NewFromInt(1), Codes: []string{"PAP-1"}})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.ReceiveInvoice(ctx, f.Actor(f.Warehouse), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := uc.ReceiveInvoice(ctx, f.Actor(f.Staff), line(dto.ReceiveLineInput{ProductID: f.Bulk.ID, Quantity: decimal.NewFromInt(1)}))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReceiveInvoice_TopesPorLineaYPorFactura(t *testing.T) {
	f := memstore.NewFixture()
	f.Auth.Grant(f.Warehouse.ID, "", entity.PermStockReceive)
	uc := newUseCase(f)
	ctx := context.Background()
	commits := f.Store.Commits()

	_, err := uc.ReceiveInvoice(ctx, f.Actor(f.Warehouse), dto.ReceiveInvoiceRequest{
		Supplier: "Proveedor",
		Number:   "X-9",
		Lines:    []dto.ReceiveLineInput{{ProductID: f.Serialized.ID, Quantity: decimal.NewFromInt(100000000)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ReceiveInvoice(ctx, f.Actor(f.Warehouse), dto.ReceiveInvoiceRequest{
		Supplier: "Proveedor",
		Number:   "X-9",
		Lines:    []dto.ReceiveLineInput{{ProductID: f.Serialized.ID, Quantity: decimal.NewFromInt(MaxSerializedPerLine + 1)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	lines := make([]dto.ReceiveLineInput, MaxInvoiceLines+1)
	for i := range lines {
		lines[i] = dto.ReceiveLineInput{ProductID: f.Bulk.ID, Quantity: decimal.NewFromInt(1)}
	}
	_, err = uc.ReceiveInvoice(ctx, f.Actor(f.Warehouse), dto.ReceiveInvoiceRequest{Supplier: "Proveedor", Number: "X-9", Lines: lines})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, commits, f.Store.Commits())
	assert.True(t, f.Stock(f.Serialized.ID).IsZero())

	// en el tope la factura entra completa
	out, err := uc.ReceiveInvoice(ctx, f.Actor(f.Warehouse), dto.ReceiveInvoiceRequest{
		Supplier: "Proveedor",
		Number:   "X-9",
		Lines:    []dto.ReceiveLineInput{{ProductID: f.Serialized.ID, Quantity: decimal.NewFromInt(MaxSerializedPerLine)}},
	})
	require.NoError(t, err)
	assert.Len(t, out.Units, MaxSerializedPerLine)
}

func TestUnitCode(t *testing.T) {
	assert.Equal(t, "LAP-01-0007", UnitCode("lap-01", 7))
	assert.Equal(t, "IMP-12345", UnitCode("IMP", 12345))
}
