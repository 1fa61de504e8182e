// Package catalog implementa los catálogos maestros: clientes, proveedores
// y productos. CRUD directo, sin transacciones multi-tabla.
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/obrasoft/gestion-api/internal/application/dto"
	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
	"github.com/obrasoft/gestion-api/pkg/money"
	"github.com/obrasoft/gestion-api/pkg/normalize"
)

// UseCase casos de uso de catálogos.
type UseCase struct {
	clientes    repository.ClienteRepository
	proveedores repository.ProveedorRepository
	productos   repository.ProductoRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	clientes repository.ClienteRepository,
	proveedores repository.ProveedorRepository,
	productos repository.ProductoRepository,
) *UseCase {
	return &UseCase{clientes: clientes, proveedores: proveedores, productos: productos}
}

// ──────────────────────────── Clientes ────────────────────────────

// CreateCliente registra un cliente. RucCI es único: si ya existe retorna
// domain.ErrDuplicate.
func (uc *UseCase) CreateCliente(in dto.SaveClienteRequest) (*dto.ClienteResponse, error) {
	if strings.TrimSpace(in.Nombre) == "" || strings.TrimSpace(in.RucCI) == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.clientes.GetByRucCI(in.RucCI)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	cliente := &entity.Cliente{
		ID:        uuid.New().String(),
		Nombre:    strings.TrimSpace(in.Nombre),
		RucCI:     strings.TrimSpace(in.RucCI),
		Telefono:  in.Telefono,
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.clientes.Create(cliente); err != nil {
		return nil, err
	}
	return toClienteResponse(cliente), nil
}

// UpdateCliente actualiza un cliente existente.
func (uc *UseCase) UpdateCliente(id string, in dto.SaveClienteRequest) (*dto.ClienteResponse, error) {
	if strings.TrimSpace(in.Nombre) == "" || strings.TrimSpace(in.RucCI) == "" {
		return nil, domain.ErrInvalidInput
	}
	cliente, err := uc.clientes.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cliente == nil {
		return nil, domain.ErrNotFound
	}
	if other, err := uc.clientes.GetByRucCI(in.RucCI); err != nil {
		return nil, err
	} else if other != nil && other.ID != id {
		return nil, domain.ErrDuplicate
	}

	cliente.Nombre = strings.TrimSpace(in.Nombre)
	cliente.RucCI = strings.TrimSpace(in.RucCI)
	cliente.Telefono = in.Telefono
	cliente.Email = in.Email
	cliente.UpdatedAt = time.Now()
	if err := uc.clientes.Update(cliente); err != nil {
		return nil, err
	}
	return toClienteResponse(cliente), nil
}

// GetCliente devuelve un cliente por id.
func (uc *UseCase) GetCliente(id string) (*dto.ClienteResponse, error) {
	cliente, err := uc.clientes.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cliente == nil {
		return nil, domain.ErrNotFound
	}
	return toClienteResponse(cliente), nil
}

// ListClientes lista clientes. El término de búsqueda se normaliza (acentos
// y mayúsculas fuera) antes de consultar.
func (uc *UseCase) ListClientes(search string, limit, offset int) ([]*dto.ClienteResponse, error) {
	clientes, err := uc.clientes.List(normalize.SearchKey(search), limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClienteResponse, 0, len(clientes))
	for _, c := range clientes {
		out = append(out, toClienteResponse(c))
	}
	return out, nil
}

// DeleteCliente borra un cliente. Si tiene ventas asociadas el borrado queda
// bloqueado por FK y retorna domain.ErrReferenced.
func (uc *UseCase) DeleteCliente(id string) error {
	cliente, err := uc.clientes.GetByID(id)
	if err != nil {
		return err
	}
	if cliente == nil {
		return domain.ErrNotFound
	}
	return uc.clientes.Delete(id)
}

// ──────────────────────────── Proveedores ────────────────────────────

// CreateProveedor registra un proveedor.
func (uc *UseCase) CreateProveedor(in dto.SaveProveedorRequest) (*dto.ProveedorResponse, error) {
	if strings.TrimSpace(in.Nombre) == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	proveedor := &entity.Proveedor{
		ID:        uuid.New().String(),
		Nombre:    strings.TrimSpace(in.Nombre),
		Telefono:  in.Telefono,
		Direccion: in.Direccion,
		Correo:    in.Correo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.proveedores.Create(proveedor); err != nil {
		return nil, err
	}
	return toProveedorResponse(proveedor), nil
}

// UpdateProveedor actualiza un proveedor existente.
func (uc *UseCase) UpdateProveedor(id string, in dto.SaveProveedorRequest) (*dto.ProveedorResponse, error) {
	if strings.TrimSpace(in.Nombre) == "" {
		return nil, domain.ErrInvalidInput
	}
	proveedor, err := uc.proveedores.GetByID(id)
	if err != nil {
		return nil, err
	}
	if proveedor == nil {
		return nil, domain.ErrNotFound
	}
	proveedor.Nombre = strings.TrimSpace(in.Nombre)
	proveedor.Telefono = in.Telefono
	proveedor.Direccion = in.Direccion
	proveedor.Correo = in.Correo
	proveedor.UpdatedAt = time.Now()
	if err := uc.proveedores.Update(proveedor); err != nil {
		return nil, err
	}
	return toProveedorResponse(proveedor), nil
}

// GetProveedor devuelve un proveedor por id.
func (uc *UseCase) GetProveedor(id string) (*dto.ProveedorResponse, error) {
	proveedor, err := uc.proveedores.GetByID(id)
	if err != nil {
		return nil, err
	}
	if proveedor == nil {
		return nil, domain.ErrNotFound
	}
	return toProveedorResponse(proveedor), nil
}

// ListProveedores lista proveedores con búsqueda normalizada.
func (uc *UseCase) ListProveedores(search string, limit, offset int) ([]*dto.ProveedorResponse, error) {
	proveedores, err := uc.proveedores.List(normalize.SearchKey(search), limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProveedorResponse, 0, len(proveedores))
	for _, p := range proveedores {
		out = append(out, toProveedorResponse(p))
	}
	return out, nil
}

// DeleteProveedor borra un proveedor. ErrReferenced si tiene compras o
// productos asociados.
func (uc *UseCase) DeleteProveedor(id string) error {
	proveedor, err := uc.proveedores.GetByID(id)
	if err != nil {
		return err
	}
	if proveedor == nil {
		return domain.ErrNotFound
	}
	return uc.proveedores.Delete(id)
}

// ──────────────────────────── Productos ────────────────────────────

// CreateProducto registra un producto. El stock inicial es cero: toda
// existencia entra después por movimientos (compras o ajustes).
func (uc *UseCase) CreateProducto(in dto.SaveProductoRequest) (*dto.ProductoResponse, error) {
	if strings.TrimSpace(in.Nombre) == "" || in.PrecioVenta.IsNegative() || in.CostoUnitario.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.ProveedorID != "" {
		proveedor, err := uc.proveedores.GetByID(in.ProveedorID)
		if err != nil {
			return nil, err
		}
		if proveedor == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	producto := &entity.Producto{
		ID:            uuid.New().String(),
		Nombre:        strings.TrimSpace(in.Nombre),
		PrecioVenta:   in.PrecioVenta,
		CostoUnitario: in.CostoUnitario,
		Unidad:        in.Unidad,
		ProveedorID:   in.ProveedorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.productos.Create(producto); err != nil {
		return nil, err
	}
	return toProductoResponse(producto), nil
}

// UpdateProducto actualiza un producto. Cambiar el precio de venta no toca
// documentos ya persistidos: los detalles guardan snapshots.
func (uc *UseCase) UpdateProducto(id string, in dto.SaveProductoRequest) (*dto.ProductoResponse, error) {
	if strings.TrimSpace(in.Nombre) == "" || in.PrecioVenta.IsNegative() || in.CostoUnitario.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	producto, err := uc.productos.GetByID(id)
	if err != nil {
		return nil, err
	}
	if producto == nil {
		return nil, domain.ErrNotFound
	}
	if in.ProveedorID != "" {
		proveedor, err := uc.proveedores.GetByID(in.ProveedorID)
		if err != nil {
			return nil, err
		}
		if proveedor == nil {
			return nil, domain.ErrNotFound
		}
	}

	producto.Nombre = strings.TrimSpace(in.Nombre)
	producto.PrecioVenta = in.PrecioVenta
	producto.CostoUnitario = in.CostoUnitario
	producto.Unidad = in.Unidad
	producto.ProveedorID = in.ProveedorID
	producto.UpdatedAt = time.Now()
	if err := uc.productos.Update(producto); err != nil {
		return nil, err
	}
	return toProductoResponse(producto), nil
}

// GetProducto devuelve un producto con su stock actual.
func (uc *UseCase) GetProducto(id string) (*dto.ProductoResponse, error) {
	producto, err := uc.productos.GetByID(id)
	if err != nil {
		return nil, err
	}
	if producto == nil {
		return nil, domain.ErrNotFound
	}
	return toProductoResponse(producto), nil
}

// ListProductos lista productos con búsqueda normalizada y stock adjunto.
func (uc *UseCase) ListProductos(search string, limit, offset int) ([]*dto.ProductoResponse, error) {
	productos, err := uc.productos.List(normalize.SearchKey(search), limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductoResponse, 0, len(productos))
	for _, p := range productos {
		out = append(out, toProductoResponse(p))
	}
	return out, nil
}

// DeleteProducto borra un producto. ErrReferenced si aparece en detalles o
// movimientos.
func (uc *UseCase) DeleteProducto(id string) error {
	producto, err := uc.productos.GetByID(id)
	if err != nil {
		return err
	}
	if producto == nil {
		return domain.ErrNotFound
	}
	return uc.productos.Delete(id)
}

func toClienteResponse(c *entity.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:       c.ID,
		Nombre:   c.Nombre,
		RucCI:    c.RucCI,
		Telefono: c.Telefono,
		Email:    c.Email,
	}
}

func toProveedorResponse(p *entity.Proveedor) *dto.ProveedorResponse {
	return &dto.ProveedorResponse{
		ID:        p.ID,
		Nombre:    p.Nombre,
		Telefono:  p.Telefono,
		Direccion: p.Direccion,
		Correo:    p.Correo,
	}
}

func toProductoResponse(p *entity.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:            p.ID,
		Nombre:        p.Nombre,
		PrecioVenta:   p.PrecioVenta,
		PrecioDisplay: money.FormatAmount(p.PrecioVenta),
		CostoUnitario: p.CostoUnitario,
		Unidad:        p.Unidad,
		ProveedorID:   p.ProveedorID,
		Stock:         p.Stock,
		FechaCreacion: p.CreatedAt,
	}
}
