// Package http expone la API REST: routing, middlewares de auth/RBAC y
// traducción de errores de dominio a respuestas JSON.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/obrasoft/gestion-api/internal/application/auth"
	"github.com/obrasoft/gestion-api/internal/application/catalog"
	"github.com/obrasoft/gestion-api/internal/application/inventory"
	"github.com/obrasoft/gestion-api/internal/application/obras"
	"github.com/obrasoft/gestion-api/internal/application/purchasing"
	"github.com/obrasoft/gestion-api/internal/application/sales"
)

// RouterDeps agrupa las dependencias inyectadas al router.
type RouterDeps struct {
	AuthUC       *auth.UseCase
	CatalogUC    *catalog.UseCase
	InventarioUC *inventory.UseCase
	ComprasUC    *purchasing.UseCase
	VentasUC     *sales.UseCase
	ObrasUC      *obras.UseCase
	JWTSecret    string
}

// Router registra todas las rutas de la API.
// Estructura: /api/auth es público; el resto exige Bearer token. Las
// escrituras exigen además el permiso puntual del recurso; el rol admin
// pasa cualquier verificación.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC)
	userHandler := NewUserHandler(deps.AuthUC)
	clienteHandler := NewClienteHandler(deps.CatalogUC)
	proveedorHandler := NewProveedorHandler(deps.CatalogUC)
	productoHandler := NewProductoHandler(deps.CatalogUC)
	compraHandler := NewCompraHandler(deps.ComprasUC)
	ventaHandler := NewVentaHandler(deps.VentasUC)
	obraHandler := NewObraHandler(deps.ObrasUC)
	inventarioHandler := NewInventarioHandler(deps.InventarioUC)

	// Rutas públicas
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	me := protected.Group("/users/me")
	me.Get("/", authHandler.Me)
	me.Post("/password", authHandler.ChangePassword)

	users := protected.Group("/users", RequireRole("admin"))
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id/active", userHandler.SetActive)
	users.Put("/:id/roles/:role", userHandler.AssignRole)
	users.Delete("/:id/roles/:role", userHandler.RemoveRole)

	clientes := protected.Group("/clientes")
	clientes.Post("/", RequirePermission("clientes.create"), clienteHandler.Create)
	clientes.Get("/", clienteHandler.List)
	clientes.Get("/:id", clienteHandler.GetByID)
	clientes.Put("/:id", RequirePermission("clientes.update"), clienteHandler.Update)
	clientes.Delete("/:id", RequirePermission("clientes.delete"), clienteHandler.Delete)

	proveedores := protected.Group("/proveedores")
	proveedores.Post("/", RequirePermission("proveedores.create"), proveedorHandler.Create)
	proveedores.Get("/", proveedorHandler.List)
	proveedores.Get("/:id", proveedorHandler.GetByID)
	proveedores.Put("/:id", RequirePermission("proveedores.update"), proveedorHandler.Update)
	proveedores.Delete("/:id", RequirePermission("proveedores.delete"), proveedorHandler.Delete)

	productos := protected.Group("/productos")
	productos.Post("/", RequirePermission("productos.create"), productoHandler.Create)
	productos.Get("/", productoHandler.List)
	productos.Get("/:id", productoHandler.GetByID)
	productos.Put("/:id", RequirePermission("productos.update"), productoHandler.Update)
	productos.Delete("/:id", RequirePermission("productos.delete"), productoHandler.Delete)

	compras := protected.Group("/compras")
	compras.Post("/", RequirePermission("compras.create"), compraHandler.Create)
	compras.Get("/", compraHandler.List)
	compras.Get("/:id", compraHandler.GetByID)
	compras.Put("/:id", RequirePermission("compras.update"), compraHandler.Update)
	compras.Post("/:id/cerrar", RequirePermission("compras.update"), compraHandler.Close)
	compras.Delete("/:id", RequirePermission("compras.delete"), compraHandler.Delete)

	ventas := protected.Group("/ventas")
	ventas.Post("/", RequirePermission("ventas.create"), ventaHandler.Create)
	ventas.Get("/", ventaHandler.List)
	ventas.Get("/:id", ventaHandler.GetByID)
	ventas.Put("/:id", RequirePermission("ventas.update"), ventaHandler.Update)
	ventas.Post("/:id/cerrar", RequirePermission("ventas.update"), ventaHandler.Close)
	ventas.Delete("/:id", RequirePermission("ventas.delete"), ventaHandler.Delete)

	obrasGroup := protected.Group("/obras")
	obrasGroup.Post("/", RequirePermission("obras.create"), obraHandler.Create)
	obrasGroup.Get("/", obraHandler.List)
	obrasGroup.Get("/:id", obraHandler.GetByID)
	obrasGroup.Put("/:id", RequirePermission("obras.update"), obraHandler.Update)
	obrasGroup.Post("/:id/cerrar", RequirePermission("obras.update"), obraHandler.Close)
	obrasGroup.Delete("/:id", RequirePermission("obras.delete"), obraHandler.Delete)
	obrasGroup.Get("/:id/costos", obraHandler.Costos)
	obrasGroup.Post("/:id/trabajos", RequirePermission("obras.update"), obraHandler.CreateTrabajo)
	obrasGroup.Get("/:id/trabajos", obraHandler.ListTrabajos)

	trabajos := protected.Group("/trabajos")
	trabajos.Put("/:id", RequirePermission("obras.update"), obraHandler.UpdateTrabajo)
	trabajos.Delete("/:id", RequirePermission("obras.update"), obraHandler.DeleteTrabajo)
	trabajos.Post("/:id/gastos", RequirePermission("obras.update"), obraHandler.CreateGasto)
	trabajos.Get("/:id/gastos", obraHandler.ListGastos)

	gastos := protected.Group("/gastos")
	gastos.Delete("/:id", RequirePermission("obras.update"), obraHandler.DeleteGasto)

	inventario := protected.Group("/inventario")
	inventario.Post("/movimientos", RequirePermission("inventario.ajustar"), inventarioHandler.RegisterAjuste)
	inventario.Get("/movimientos", inventarioHandler.ListMovimientos)
	inventario.Get("/stock/:id", inventarioHandler.Stock)
}
