package catalog_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrasoft/gestion-api/internal/application/apptest"
	"github.com/obrasoft/gestion-api/internal/application/catalog"
	"github.com/obrasoft/gestion-api/internal/application/dto"
	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
)

func newFixture(t *testing.T) (*apptest.Store, *catalog.UseCase) {
	t.Helper()
	store := apptest.NewStore()
	repos := store.Repos()
	return store, catalog.NewUseCase(repos.Clientes, repos.Proveedores, repos.Productos)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateCliente_RucCIDuplicadoFalla(t *testing.T) {
	_, uc := newFixture(t)

	_, err := uc.CreateCliente(dto.SaveClienteRequest{Nombre: "Juan Gómez", RucCI: "80012345-6"})
	require.NoError(t, err)

	_, err = uc.CreateCliente(dto.SaveClienteRequest{Nombre: "Otro Nombre", RucCI: "80012345-6"})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "RucCI es único")
}

func TestUpdateCliente_PermiteConservarSuPropioRucCI(t *testing.T) {
	_, uc := newFixture(t)

	created, err := uc.CreateCliente(dto.SaveClienteRequest{Nombre: "Juan Gómez", RucCI: "80012345-6"})
	require.NoError(t, err)

	updated, err := uc.UpdateCliente(created.ID, dto.SaveClienteRequest{
		Nombre: "Juan A. Gómez", RucCI: "80012345-6", Telefono: "0981-111222",
	})
	require.NoError(t, err)
	assert.Equal(t, "Juan A. Gómez", updated.Nombre)

	// Pero no tomar el RucCI de otro cliente.
	otro, err := uc.CreateCliente(dto.SaveClienteRequest{Nombre: "María López", RucCI: "80099999-1"})
	require.NoError(t, err)
	_, err = uc.UpdateCliente(otro.ID, dto.SaveClienteRequest{Nombre: "María López", RucCI: "80012345-6"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// La búsqueda ignora acentos y mayúsculas.
func TestListClientes_BusquedaNormalizada(t *testing.T) {
	_, uc := newFixture(t)

	for _, c := range []dto.SaveClienteRequest{
		{Nombre: "José Martínez", RucCI: "1"},
		{Nombre: "Ana Pereira", RucCI: "2"},
	} {
		_, err := uc.CreateCliente(c)
		require.NoError(t, err)
	}

	found, err := uc.ListClientes("JOSE MARTINEZ", 20, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "José Martínez", found[0].Nombre)
}

// Un cliente con ventas no se puede borrar: el error es recuperable y el
// caller puede ofrecer el cierre lógico de sus documentos.
func TestDeleteCliente_BloqueadoPorVentas(t *testing.T) {
	store, uc := newFixture(t)

	created, err := uc.CreateCliente(dto.SaveClienteRequest{Nombre: "Juan Gómez", RucCI: "80012345-6"})
	require.NoError(t, err)

	ventaID := uuid.New().String()
	store.Ventas[ventaID] = &entity.Venta{ID: ventaID, ClienteID: created.ID, Estado: entity.EstadoActiva}

	err = uc.DeleteCliente(created.ID)
	assert.ErrorIs(t, err, domain.ErrReferenced)
	assert.Contains(t, store.Clientes, created.ID, "el cliente sigue intacto tras el intento")

	// Sin referencias el borrado procede.
	delete(store.Ventas, ventaID)
	require.NoError(t, uc.DeleteCliente(created.ID))
	assert.NotContains(t, store.Clientes, created.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateProducto_StockInicialCero(t *testing.T) {
	_, uc := newFixture(t)

	created, err := uc.CreateProducto(dto.SaveProductoRequest{
		Nombre:      "Cemento 50kg",
		PrecioVenta: decimal.NewFromFloat(1234.5),
	})
	require.NoError(t, err)
	assert.True(t, created.Stock.IsZero(), "toda existencia entra por movimientos")
	assert.Equal(t, "1.234,50", created.PrecioDisplay)
}

func TestCreateProducto_ValidaPrecios(t *testing.T) {
	_, uc := newFixture(t)

	_, err := uc.CreateProducto(dto.SaveProductoRequest{Nombre: "X", PrecioVenta: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateProducto(dto.SaveProductoRequest{Nombre: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateProducto_ProveedorInexistente(t *testing.T) {
	_, uc := newFixture(t)
	_, err := uc.CreateProducto(dto.SaveProductoRequest{
		Nombre:      "Cemento 50kg",
		PrecioVenta: decimal.NewFromInt(100),
		ProveedorID: uuid.New().String(),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// GetProducto adjunta el stock derivado del libro.
func TestGetProducto_AdjuntaStockDelLedger(t *testing.T) {
	store, uc := newFixture(t)

	created, err := uc.CreateProducto(dto.SaveProductoRequest{
		Nombre:      "Arena m3",
		PrecioVenta: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	store.Movimientos = append(store.Movimientos, &entity.MovimientoStock{
		ID:         uuid.New().String(),
		ProductoID: created.ID,
		Signo:      entity.SignoEntrada,
		Cantidad:   decimal.NewFromInt(7),
		Origen:     entity.OrigenAjuste,
	})

	got, err := uc.GetProducto(created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(7).Equal(got.Stock))
}

// Un producto con movimientos no se borra: su historial lo referencia.
func TestDeleteProducto_BloqueadoPorMovimientos(t *testing.T) {
	store, uc := newFixture(t)

	created, err := uc.CreateProducto(dto.SaveProductoRequest{
		Nombre:      "Hierro 8mm",
		PrecioVenta: decimal.NewFromInt(45),
	})
	require.NoError(t, err)

	store.Movimientos = append(store.Movimientos, &entity.MovimientoStock{
		ID:         uuid.New().String(),
		ProductoID: created.ID,
		Signo:      entity.SignoEntrada,
		Cantidad:   decimal.NewFromInt(1),
		Origen:     entity.OrigenAjuste,
	})

	assert.ErrorIs(t, uc.DeleteProducto(created.ID), domain.ErrReferenced)
}

// ──────────────────────────────────────────────────────────────────────────────
// Proveedores
// ──────────────────────────────────────────────────────────────────────────────

func TestProveedor_CicloCompleto(t *testing.T) {
	store, uc := newFixture(t)

	created, err := uc.CreateProveedor(dto.SaveProveedorRequest{
		Nombre: "Ferretería Central", Telefono: "021-555000",
	})
	require.NoError(t, err)

	updated, err := uc.UpdateProveedor(created.ID, dto.SaveProveedorRequest{
		Nombre: "Ferretería Central S.A.", Direccion: "Av. España 1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ferretería Central S.A.", updated.Nombre)

	found, err := uc.ListProveedores("ferreteria", 20, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1, "la búsqueda ignora el acento de Ferretería")

	// Bloqueado mientras un producto lo referencia.
	prodID := uuid.New().String()
	store.Productos[prodID] = &entity.Producto{ID: prodID, Nombre: "Clavos", ProveedorID: created.ID}
	assert.ErrorIs(t, uc.DeleteProveedor(created.ID), domain.ErrReferenced)

	delete(store.Productos, prodID)
	require.NoError(t, uc.DeleteProveedor(created.ID))
}
