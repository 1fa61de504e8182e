package purchasing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrasoft/gestion-api/internal/application/apptest"
	"github.com/obrasoft/gestion-api/internal/application/dto"
	"github.com/obrasoft/gestion-api/internal/application/purchasing"
	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testUserID = "00000000-0000-0000-0000-000000000001"

type fixture struct {
	store *apptest.Store
	uc    *purchasing.UseCase

	proveedorID string
	prodA       string
	prodB       string
}

// newFixture arma un store con un proveedor y dos productos de catálogo.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := apptest.NewStore()
	repos := store.Repos()

	f := &fixture{
		store:       store,
		proveedorID: uuid.New().String(),
		prodA:       uuid.New().String(),
		prodB:       uuid.New().String(),
	}
	store.Proveedores[f.proveedorID] = &entity.Proveedor{ID: f.proveedorID, Nombre: "Ferretería Central"}
	store.Productos[f.prodA] = &entity.Producto{
		ID: f.prodA, Nombre: "Cemento 50kg",
		PrecioVenta:   decimal.NewFromInt(120),
		CostoUnitario: decimal.NewFromInt(100),
	}
	store.Productos[f.prodB] = &entity.Producto{
		ID: f.prodB, Nombre: "Arena m3",
		PrecioVenta:   decimal.NewFromInt(60),
		CostoUnitario: decimal.NewFromInt(50),
	}

	f.uc = purchasing.NewUseCase(&apptest.TxRunner{S: store}, repos.Compras, repos.Proveedores, repos.Productos)
	return f
}

func detalle(productoID string, cantidad int64, precio int64) dto.DetalleRequest {
	return dto.DetalleRequest{
		ProductoID:     productoID,
		Cantidad:       cantidad,
		PrecioUnitario: decimal.NewFromInt(precio),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

// Guardar y recargar reproduce exactamente las líneas persistidas.
func TestCreate_GuardarYRecargarReproduceLineas(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Create(context.Background(), testUserID, dto.SaveCompraRequest{
		ProveedorID: f.proveedorID,
		MedioPago:   "efectivo",
		Detalles: []dto.DetalleRequest{
			detalle(f.prodA, 2, 100),
			detalle(f.prodB, 5, 50),
		},
	})
	require.NoError(t, err)

	reloaded, err := f.uc.GetByID(resp.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Detalles, 2)
	assert.Equal(t, f.prodA, reloaded.Detalles[0].ProductoID)
	assert.True(t, decimal.NewFromInt(200).Equal(reloaded.Detalles[0].Subtotal),
		"subtotal = cantidad × precio, recalculado en el servidor")
	assert.True(t, decimal.NewFromInt(450).Equal(reloaded.TotalCompra))
	assert.Equal(t, "450,00", reloaded.TotalDisplay)
	assert.Equal(t, entity.EstadoActiva, reloaded.Estado)
}

// Cada línea de compra emite una entrada (+) al libro de stock.
func TestCreate_EmiteEntradasDeStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), testUserID, dto.SaveCompraRequest{
		ProveedorID: f.proveedorID,
		MedioPago:   "efectivo",
		Detalles:    []dto.DetalleRequest{detalle(f.prodA, 10, 100)},
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(10).Equal(f.store.Stock(f.prodA)),
		"el stock debe salir del agregado del libro")
	require.Len(t, f.store.Movimientos, 1)
	assert.Equal(t, entity.OrigenCompra, f.store.Movimientos[0].Origen)
	assert.Equal(t, entity.SignoEntrada, f.store.Movimientos[0].Signo)
}

// Precio en cero usa el costo de referencia del producto.
func TestCreate_PrecioCeroUsaCostoDeReferencia(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Create(context.Background(), testUserID, dto.SaveCompraRequest{
		ProveedorID: f.proveedorID,
		MedioPago:   "transferencia",
		Detalles:    []dto.DetalleRequest{{ProductoID: f.prodA, Cantidad: 3}},
	})
	require.NoError(t, err)

	reloaded, err := f.uc.GetByID(resp.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(reloaded.Detalles[0].PrecioUnitario))
	assert.True(t, decimal.NewFromInt(300).Equal(reloaded.TotalCompra))
}

func TestCreate_ValidaEntrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	casos := []struct {
		nombre string
		req    dto.SaveCompraRequest
	}{
		{"sin proveedor", dto.SaveCompraRequest{MedioPago: "efectivo", Detalles: []dto.DetalleRequest{detalle(f.prodA, 1, 100)}}},
		{"sin medio de pago", dto.SaveCompraRequest{ProveedorID: f.proveedorID, Detalles: []dto.DetalleRequest{detalle(f.prodA, 1, 100)}}},
		{"sin detalles", dto.SaveCompraRequest{ProveedorID: f.proveedorID, MedioPago: "efectivo"}},
		{"cantidad cero", dto.SaveCompraRequest{ProveedorID: f.proveedorID, MedioPago: "efectivo", Detalles: []dto.DetalleRequest{detalle(f.prodA, 0, 100)}}},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, err := f.uc.Create(ctx, testUserID, c.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := f.uc.Create(ctx, testUserID, dto.SaveCompraRequest{
		ProveedorID: uuid.New().String(),
		MedioPago:   "efectivo",
		Detalles:    []dto.DetalleRequest{detalle(f.prodA, 1, 100)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "proveedor inexistente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Update: reemplazo completo del detalle
// ──────────────────────────────────────────────────────────────────────────────

// Editar [(A,2,100)] a [(A,3,100),(B,1,50)] deja exactamente ese conjunto
// persistido y total 350: sin líneas residuales de la versión anterior.
func TestUpdate_ReemplazaConjuntoCompletoDeLineas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.uc.Create(ctx, testUserID, dto.SaveCompraRequest{
		ProveedorID: f.proveedorID,
		MedioPago:   "efectivo",
		Detalles:    []dto.DetalleRequest{detalle(f.prodA, 2, 100)},
	})
	require.NoError(t, err)

	updated, err := f.uc.Update(ctx, testUserID, created.ID, dto.SaveCompraRequest{
		ProveedorID: f.proveedorID,
		MedioPago:   "efectivo",
		Detalles: []dto.DetalleRequest{
			detalle(f.prodA, 3, 100),
			detalle(f.prodB, 1, 50),
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Detalles, 2, "el detalle anterior se reemplaza por completo")
	assert.True(t, decimal.NewFromInt(350).Equal(updated.TotalCompra))

	got := map[string]int64{}
	for _, d := range updated.Detalles {
		got[d.ProductoID] = d.Cantidad
	}
	assert.Equal(t, map[string]int64{f.prodA: 3, f.prodB: 1}, got)
}

// La edición ajusta el stock por reverso + reaplicación: el libro conserva
// el historial completo y el agregado queda en el valor de la última versión.
func TestUpdate_AjustaStockPorCompensacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.uc.Create(ctx, testUserID, dto.SaveCompraRequest{
		ProveedorID: f.proveedorID,
		MedioPago:   "efectivo",
		Detalles:    []dto.DetalleRequest{detalle(f.prodA, 2, 100)},
	})
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, testUserID, created.ID, dto.SaveCompraRequest{
		ProveedorID: f.proveedorID,
		MedioPago:   "efectivo",
		Detalles:    []dto.DetalleRequest{detalle(f.prodA, 3, 100)},
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(3).Equal(f.store.Stock(f.prodA)))
	assert.Len(t, f.store.Movimientos, 3, "alta inicial + reverso + nueva alta; nunca se reescribe")
}

func TestUpdate_CompraInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Update(context.Background(), testUserID, uuid.New().String(), dto.SaveCompraRequest{
		ProveedorID: f.proveedorID,
		MedioPago:   "efectivo",
		Detalles:    []dto.DetalleRequest{detalle(f.prodA, 1, 100)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete y cierre lógico
// ──────────────────────────────────────────────────────────────────────────────

// Borrar una compra no deja detalles huérfanos y devuelve el stock a su
// valor previo vía entradas compensatorias.
func TestDelete_SinHuerfanosYStockCompensado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.uc.Create(ctx, testUserID, dto.SaveCompraRequest{
		ProveedorID: f.proveedorID,
		MedioPago:   "efectivo",
		Detalles:    []dto.DetalleRequest{detalle(f.prodA, 5, 100)},
	})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(5).Equal(f.store.Stock(f.prodA)))

	require.NoError(t, f.uc.Delete(ctx, testUserID, created.ID))

	assert.Empty(t, f.store.CompraDets[created.ID], "sin detalles huérfanos")
	assert.NotContains(t, f.store.Compras, created.ID)
	assert.True(t, f.store.Stock(f.prodA).IsZero(), "el reverso anula el efecto de la compra")
	assert.Len(t, f.store.Movimientos, 2, "el historial conserva alta y reverso")
}

func TestSoftClose_MarcaCerradaSinTocarDetalles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.uc.Create(ctx, testUserID, dto.SaveCompraRequest{
		ProveedorID: f.proveedorID,
		MedioPago:   "efectivo",
		Detalles:    []dto.DetalleRequest{detalle(f.prodA, 5, 100)},
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.SoftClose(created.ID))

	reloaded, err := f.uc.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoCerrada, reloaded.Estado)
	assert.Len(t, reloaded.Detalles, 1, "el cierre lógico conserva el historial")
	assert.True(t, decimal.NewFromInt(5).Equal(f.store.Stock(f.prodA)), "el cierre no toca el stock")
}

// ──────────────────────────────────────────────────────────────────────────────
// List
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorProveedor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	otroProveedor := uuid.New().String()
	f.store.Proveedores[otroProveedor] = &entity.Proveedor{ID: otroProveedor, Nombre: "Corralón Sur"}

	for i, provID := range []string{f.proveedorID, f.proveedorID, otroProveedor} {
		_, err := f.uc.Create(ctx, testUserID, dto.SaveCompraRequest{
			ProveedorID: provID,
			Fecha:       time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
			MedioPago:   "efectivo",
			Detalles:    []dto.DetalleRequest{detalle(f.prodA, 1, 100)},
		})
		require.NoError(t, err)
	}

	todas, err := f.uc.List("", 20, 0)
	require.NoError(t, err)
	assert.Len(t, todas, 3)

	delProveedor, err := f.uc.List(f.proveedorID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, delProveedor, 2)
}
