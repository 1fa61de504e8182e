package postgres_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
	"github.com/obrasoft/gestion-api/internal/infrastructure/postgres"
	"github.com/obrasoft/gestion-api/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests de integración contra PostgreSQL real. Los repositorios usan columnas
// UUID opcionales (proveedor_id, referencia_id, created_by, producto_id) que
// el dominio modela como string vacío; estos tests ejercitan el ida y vuelta
// NULL <-> '' y los filtros opcionales de los List, que solo un servidor
// Postgres puede validar (el planificador rechaza comparaciones uuid/text mal
// tipadas en el parse, antes de ejecutar nada).
//
// Requieren TEST_DATABASE_URL apuntando a una base descartable: cada test
// recrea el schema completo.
// ──────────────────────────────────────────────────────────────────────────────

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido, se omiten los tests de integración")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	// pgx v5 no admite varios statements por Exec en protocolo extendido:
	// el reset y cada CREATE del schema van por separado.
	_, err = pool.Exec(ctx, `DROP SCHEMA public CASCADE`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `CREATE SCHEMA public`)
	require.NoError(t, err)

	schema, err := os.ReadFile("migrations/001_schema.sql")
	require.NoError(t, err)
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err = pool.Exec(ctx, stmt)
		require.NoError(t, err, "statement: %s", stmt)
	}
	return pool
}

func seedProveedor(t *testing.T, pool *pgxpool.Pool, nombre string) *entity.Proveedor {
	t.Helper()
	p := &entity.Proveedor{
		ID:        uuid.NewString(),
		Nombre:    nombre,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, postgres.NewProveedorRepository(pool).Create(p))
	return p
}

func seedCliente(t *testing.T, pool *pgxpool.Pool, nombre, rucCI string) *entity.Cliente {
	t.Helper()
	c := &entity.Cliente{
		ID:        uuid.NewString(),
		Nombre:    nombre,
		RucCI:     rucCI,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, postgres.NewClienteRepository(pool).Create(c))
	return c
}

func seedProducto(t *testing.T, pool *pgxpool.Pool, nombre, proveedorID string) *entity.Producto {
	t.Helper()
	p := &entity.Producto{
		ID:          uuid.NewString(),
		Nombre:      nombre,
		PrecioVenta: decimal.NewFromInt(100),
		ProveedorID: proveedorID,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, postgres.NewProductoRepository(pool).Create(p))
	return p
}

// TestProductoRepoProveedorOpcional cubre el proveedor_id opcional: NULL en la
// tabla, string vacío en el dominio, y el UUID intacto cuando sí existe.
func TestProductoRepoProveedorOpcional(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewProductoRepository(pool)
	proveedor := seedProveedor(t, pool, "Aceros del Sur")

	conProveedor := seedProducto(t, pool, "Varilla 12mm", proveedor.ID)
	sinProveedor := seedProducto(t, pool, "Arena lavada", "")

	got, err := repo.GetByID(conProveedor.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, proveedor.ID, got.ProveedorID)
	assert.True(t, got.Stock.IsZero())

	got, err = repo.GetByID(sinProveedor.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.ProveedorID)

	// Update también debe poder quitar y poner el proveedor.
	conProveedor.ProveedorID = ""
	require.NoError(t, repo.Update(conProveedor))
	got, err = repo.GetByID(conProveedor.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ProveedorID)

	list, err := repo.List("", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = repo.List("arena", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sinProveedor.ID, list[0].ID)
}

// TestMovimientoRepoLibroYFiltros cubre el libro de stock completo: inserción
// con y sin referencia/usuario, el stock como suma de signos y los filtros
// opcionales del historial.
func TestMovimientoRepoLibroYFiltros(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewMovimientoRepository(pool)
	producto := seedProducto(t, pool, "Cemento 50kg", "")

	userID := uuid.NewString()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, username, pass_hash) VALUES ($1, 'almacenero', 'x')`, userID)
	require.NoError(t, err)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	referencia := uuid.NewString()

	entrada := &entity.MovimientoStock{
		ID:         uuid.NewString(),
		ProductoID: producto.ID,
		Signo:      entity.SignoEntrada,
		Cantidad:   decimal.NewFromInt(40),
		Origen:     entity.OrigenCompra,
		Fecha:      base,
	}
	require.NoError(t, repo.Append(entrada))

	salida := &entity.MovimientoStock{
		ID:           uuid.NewString(),
		ProductoID:   producto.ID,
		Signo:        entity.SignoSalida,
		Cantidad:     decimal.NewFromInt(15),
		Origen:       entity.OrigenVenta,
		ReferenciaID: referencia,
		Nota:         "venta mostrador",
		Fecha:        base.Add(time.Hour),
		CreatedBy:    userID,
	}
	require.NoError(t, repo.Append(salida))

	stock, err := repo.CurrentStock(producto.ID)
	require.NoError(t, err)
	assert.True(t, stock.Equal(decimal.NewFromInt(25)), "stock = %s", stock)

	// Sin filtros: más reciente primero.
	list, err := repo.List(repository.MovimientoFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, salida.ID, list[0].ID)
	assert.Equal(t, referencia, list[0].ReferenciaID)
	assert.Equal(t, userID, list[0].CreatedBy)
	assert.Equal(t, entrada.ID, list[1].ID)
	assert.Empty(t, list[1].ReferenciaID)
	assert.Empty(t, list[1].CreatedBy)

	list, err = repo.List(repository.MovimientoFilter{ProductoID: producto.ID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repo.List(repository.MovimientoFilter{ProductoID: uuid.NewString(), Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = repo.List(repository.MovimientoFilter{Origen: entity.OrigenCompra, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entrada.ID, list[0].ID)

	desde := base.Add(30 * time.Minute)
	list, err = repo.List(repository.MovimientoFilter{Desde: &desde, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, salida.ID, list[0].ID)

	hasta := base.Add(30 * time.Minute)
	list, err = repo.List(repository.MovimientoFilter{Hasta: &hasta, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entrada.ID, list[0].ID)
}

// TestCompraRepoListPorProveedor cubre el filtro opcional de proveedor.
func TestCompraRepoListPorProveedor(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewCompraRepository(pool)
	prov1 := seedProveedor(t, pool, "Ferretería Norte")
	prov2 := seedProveedor(t, pool, "Ferretería Sur")

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	compra1 := &entity.Compra{
		ID:          uuid.NewString(),
		ProveedorID: prov1.ID,
		Fecha:       base,
		MedioPago:   "efectivo",
		TotalCompra: decimal.NewFromInt(3000),
		Estado:      entity.EstadoActiva,
		CreatedAt:   base,
		UpdatedAt:   base,
	}
	require.NoError(t, repo.Create(compra1))
	compra2 := &entity.Compra{
		ID:          uuid.NewString(),
		ProveedorID: prov2.ID,
		Fecha:       base.Add(time.Hour),
		MedioPago:   "transferencia",
		TotalCompra: decimal.NewFromInt(1200),
		Estado:      entity.EstadoActiva,
		CreatedAt:   base,
		UpdatedAt:   base,
	}
	require.NoError(t, repo.Create(compra2))

	list, err := repo.List("", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, compra2.ID, list[0].ID, "más reciente primero")

	list, err = repo.List(prov1.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, compra1.ID, list[0].ID)
	assert.True(t, list[0].TotalCompra.Equal(decimal.NewFromInt(3000)))
}

// TestVentaRepoListPorCliente cubre el filtro opcional de cliente.
func TestVentaRepoListPorCliente(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewVentaRepository(pool)
	cli1 := seedCliente(t, pool, "Constructora Ita", "80012345-1")
	cli2 := seedCliente(t, pool, "María Benítez", "4567890")

	base := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	venta1 := &entity.Venta{
		ID:         uuid.NewString(),
		ClienteID:  cli1.ID,
		Fecha:      base,
		MedioPago:  "efectivo",
		TotalVenta: decimal.NewFromInt(500),
		Estado:     entity.EstadoActiva,
		CreatedAt:  base,
		UpdatedAt:  base,
	}
	require.NoError(t, repo.Create(venta1))
	venta2 := &entity.Venta{
		ID:         uuid.NewString(),
		ClienteID:  cli2.ID,
		Fecha:      base.Add(time.Hour),
		MedioPago:  "tarjeta",
		TotalVenta: decimal.NewFromInt(800),
		Estado:     entity.EstadoActiva,
		CreatedAt:  base,
		UpdatedAt:  base,
	}
	require.NoError(t, repo.Create(venta2))

	list, err := repo.List("", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, venta2.ID, list[0].ID, "más reciente primero")

	list, err = repo.List(cli2.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, venta2.ID, list[0].ID)
}

// TestObraRepoGastoConProductoOpcional cubre el producto_id opcional de los
// gastos: un gasto de mano de obra sin producto y uno de material con él.
func TestObraRepoGastoConProductoOpcional(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewObraRepository(pool)
	producto := seedProducto(t, pool, "Ladrillo común", "")

	now := time.Now().UTC()
	obra := &entity.Obra{
		ID:        uuid.NewString(),
		Nombre:    "Vivienda Lambaré",
		Estado:    entity.ObraActiva,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(obra))

	trabajo := &entity.Trabajo{
		ID:        uuid.NewString(),
		ObraID:    obra.ID,
		Nombre:    "Mampostería",
		CreatedAt: now,
	}
	require.NoError(t, repo.CreateTrabajo(trabajo))

	manoObra := &entity.Gasto{
		ID:            uuid.NewString(),
		TrabajoID:     trabajo.ID,
		Tipo:          "mano_obra",
		Concepto:      "Jornal oficial albañil",
		Cantidad:      decimal.NewFromInt(3),
		CostoUnitario: decimal.NewFromInt(200),
		CostoTotal:    decimal.NewFromInt(600),
		Fecha:         now,
		CreatedAt:     now,
	}
	require.NoError(t, repo.CreateGasto(manoObra))

	material := &entity.Gasto{
		ID:            uuid.NewString(),
		TrabajoID:     trabajo.ID,
		Tipo:          "material",
		Concepto:      "Ladrillos para muro norte",
		Unidad:        "un",
		Cantidad:      decimal.NewFromInt(500),
		CostoUnitario: decimal.NewFromFloat(1.50),
		CostoTotal:    decimal.NewFromInt(750),
		Fecha:         now,
		ProductoID:    producto.ID,
		CreatedAt:     now.Add(time.Second),
	}
	require.NoError(t, repo.CreateGasto(material))

	got, err := repo.GetGasto(manoObra.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.ProductoID)
	assert.True(t, got.CostoTotal.Equal(decimal.NewFromInt(600)))

	got, err = repo.GetGasto(material.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, producto.ID, got.ProductoID)

	list, err := repo.ListGastos(trabajo.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, manoObra.ID, list[0].ID, "orden de creación")
	assert.Equal(t, material.ID, list[1].ID)
}
