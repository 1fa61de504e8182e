// Package apptest provee dobles en memoria de los puertos de persistencia
// para probar los casos de uso sin PostgreSQL. Los fakes respetan la
// semántica observable de los repositorios reales: unicidad de RucCI,
// borrados bloqueados por referencias (ErrReferenced) y el stock como
// agregado del libro de movimientos.
package apptest

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/obrasoft/gestion-api/internal/application/ports"
	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
	"github.com/obrasoft/gestion-api/pkg/normalize"
)

// Store estado compartido por todos los fakes de una prueba.
type Store struct {
	Clientes    map[string]*entity.Cliente
	Proveedores map[string]*entity.Proveedor
	Productos   map[string]*entity.Producto
	Movimientos []*entity.MovimientoStock
	Compras     map[string]*entity.Compra
	CompraDets  map[string][]*entity.CompraDetalle
	Ventas      map[string]*entity.Venta
	VentaDets   map[string][]*entity.VentaDetalle
	Obras       map[string]*entity.Obra
	Trabajos    map[string]*entity.Trabajo
	Gastos      map[string]*entity.Gasto
	Users       map[string]*entity.User
	RolePerms   map[string][]string
}

// NewStore crea un estado vacío.
func NewStore() *Store {
	return &Store{
		Clientes:    map[string]*entity.Cliente{},
		Proveedores: map[string]*entity.Proveedor{},
		Productos:   map[string]*entity.Producto{},
		Compras:     map[string]*entity.Compra{},
		CompraDets:  map[string][]*entity.CompraDetalle{},
		Ventas:      map[string]*entity.Venta{},
		VentaDets:   map[string][]*entity.VentaDetalle{},
		Obras:       map[string]*entity.Obra{},
		Trabajos:    map[string]*entity.Trabajo{},
		Gastos:      map[string]*entity.Gasto{},
		Users:       map[string]*entity.User{},
		RolePerms:   map[string][]string{},
	}
}

// Repos devuelve el bundle de repositorios fake sobre este estado.
func (s *Store) Repos() ports.Repos {
	return ports.Repos{
		Clientes:    &fakeClienteRepo{s},
		Proveedores: &fakeProveedorRepo{s},
		Productos:   &fakeProductoRepo{s},
		Movimientos: &fakeMovimientoRepo{s},
		Compras:     &fakeCompraRepo{s},
		Ventas:      &fakeVentaRepo{s},
		Obras:       &fakeObraRepo{s},
	}
}

// UserRepo devuelve el repositorio fake de usuarios.
func (s *Store) UserRepo() repository.UserRepository {
	return &fakeUserRepo{s}
}

// TxRunner fake: ejecuta fn directamente contra el estado compartido. No
// simula rollback; las pruebas que lo necesiten verifican con errores
// inyectados antes de cualquier escritura.
type TxRunner struct{ S *Store }

// Run ejecuta fn con los repositorios del store.
func (t *TxRunner) Run(_ context.Context, fn func(r ports.Repos) error) error {
	return fn(t.S.Repos())
}

// Stock calcula el stock actual de un producto desde el libro (helper de
// aserción).
func (s *Store) Stock(productoID string) decimal.Decimal {
	total := decimal.Zero
	for _, m := range s.Movimientos {
		if m.ProductoID == productoID {
			total = total.Add(m.Delta())
		}
	}
	return total
}

// ──────────────────────────── Clientes ────────────────────────────

type fakeClienteRepo struct{ s *Store }

func (r *fakeClienteRepo) Create(c *entity.Cliente) error {
	r.s.Clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) GetByID(id string) (*entity.Cliente, error) {
	return r.s.Clientes[id], nil
}

func (r *fakeClienteRepo) GetByRucCI(rucCI string) (*entity.Cliente, error) {
	for _, c := range r.s.Clientes {
		if c.RucCI == rucCI {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeClienteRepo) Update(c *entity.Cliente) error {
	if _, ok := r.s.Clientes[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Clientes[c.ID] = c
	return nil
}

func (r *fakeClienteRepo) List(search string, limit, offset int) ([]*entity.Cliente, error) {
	var out []*entity.Cliente
	for _, c := range r.s.Clientes {
		if search == "" || strings.Contains(normalize.SearchKey(c.Nombre), search) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return page(out, limit, offset), nil
}

func (r *fakeClienteRepo) Delete(id string) error {
	for _, v := range r.s.Ventas {
		if v.ClienteID == id {
			return domain.ErrReferenced
		}
	}
	delete(r.s.Clientes, id)
	return nil
}

// ──────────────────────────── Proveedores ────────────────────────────

type fakeProveedorRepo struct{ s *Store }

func (r *fakeProveedorRepo) Create(p *entity.Proveedor) error {
	r.s.Proveedores[p.ID] = p
	return nil
}

func (r *fakeProveedorRepo) GetByID(id string) (*entity.Proveedor, error) {
	return r.s.Proveedores[id], nil
}

func (r *fakeProveedorRepo) Update(p *entity.Proveedor) error {
	if _, ok := r.s.Proveedores[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Proveedores[p.ID] = p
	return nil
}

func (r *fakeProveedorRepo) List(search string, limit, offset int) ([]*entity.Proveedor, error) {
	var out []*entity.Proveedor
	for _, p := range r.s.Proveedores {
		if search == "" || strings.Contains(normalize.SearchKey(p.Nombre), search) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return page(out, limit, offset), nil
}

func (r *fakeProveedorRepo) Delete(id string) error {
	for _, c := range r.s.Compras {
		if c.ProveedorID == id {
			return domain.ErrReferenced
		}
	}
	for _, p := range r.s.Productos {
		if p.ProveedorID == id {
			return domain.ErrReferenced
		}
	}
	delete(r.s.Proveedores, id)
	return nil
}

// ──────────────────────────── Productos ────────────────────────────

type fakeProductoRepo struct{ s *Store }

func (r *fakeProductoRepo) Create(p *entity.Producto) error {
	r.s.Productos[p.ID] = p
	return nil
}

func (r *fakeProductoRepo) GetByID(id string) (*entity.Producto, error) {
	p, ok := r.s.Productos[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Stock = r.s.Stock(id)
	return &cp, nil
}

func (r *fakeProductoRepo) GetPrecioVenta(id string) (decimal.Decimal, error) {
	p, ok := r.s.Productos[id]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return p.PrecioVenta, nil
}

func (r *fakeProductoRepo) Update(p *entity.Producto) error {
	if _, ok := r.s.Productos[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Productos[p.ID] = p
	return nil
}

func (r *fakeProductoRepo) List(search string, limit, offset int) ([]*entity.Producto, error) {
	var out []*entity.Producto
	for id, p := range r.s.Productos {
		if search == "" || strings.Contains(normalize.SearchKey(p.Nombre), search) {
			cp := *p
			cp.Stock = r.s.Stock(id)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return page(out, limit, offset), nil
}

func (r *fakeProductoRepo) Delete(id string) error {
	for _, m := range r.s.Movimientos {
		if m.ProductoID == id {
			return domain.ErrReferenced
		}
	}
	delete(r.s.Productos, id)
	return nil
}

func (r *fakeProductoRepo) LockForMovement(id string) error {
	if _, ok := r.s.Productos[id]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

// ──────────────────────────── Movimientos ────────────────────────────

type fakeMovimientoRepo struct{ s *Store }

func (r *fakeMovimientoRepo) Append(mov *entity.MovimientoStock) error {
	r.s.Movimientos = append(r.s.Movimientos, mov)
	return nil
}

func (r *fakeMovimientoRepo) CurrentStock(productoID string) (decimal.Decimal, error) {
	return r.s.Stock(productoID), nil
}

func (r *fakeMovimientoRepo) List(filter repository.MovimientoFilter) ([]*entity.MovimientoStock, error) {
	var out []*entity.MovimientoStock
	for _, m := range r.s.Movimientos {
		if filter.ProductoID != "" && m.ProductoID != filter.ProductoID {
			continue
		}
		if filter.Origen != "" && m.Origen != filter.Origen {
			continue
		}
		if filter.Desde != nil && m.Fecha.Before(*filter.Desde) {
			continue
		}
		if filter.Hasta != nil && m.Fecha.After(*filter.Hasta) {
			continue
		}
		out = append(out, m)
	}
	return page(out, filter.Limit, filter.Offset), nil
}

// ──────────────────────────── Compras ────────────────────────────

type fakeCompraRepo struct{ s *Store }

func (r *fakeCompraRepo) Create(c *entity.Compra) error {
	r.s.Compras[c.ID] = c
	return nil
}

func (r *fakeCompraRepo) CreateDetalle(d *entity.CompraDetalle) error {
	r.s.CompraDets[d.CompraID] = append(r.s.CompraDets[d.CompraID], d)
	return nil
}

func (r *fakeCompraRepo) Update(c *entity.Compra) error {
	if _, ok := r.s.Compras[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Compras[c.ID] = c
	return nil
}

func (r *fakeCompraRepo) DeleteDetalles(compraID string) error {
	delete(r.s.CompraDets, compraID)
	return nil
}

func (r *fakeCompraRepo) Delete(id string) error {
	delete(r.s.Compras, id)
	return nil
}

func (r *fakeCompraRepo) SetEstado(id, estado string) error {
	c, ok := r.s.Compras[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Estado = estado
	return nil
}

func (r *fakeCompraRepo) GetByID(id string) (*entity.Compra, error) {
	return r.s.Compras[id], nil
}

func (r *fakeCompraRepo) GetDetalles(compraID string) ([]*entity.CompraDetalle, error) {
	return append([]*entity.CompraDetalle(nil), r.s.CompraDets[compraID]...), nil
}

func (r *fakeCompraRepo) List(proveedorID string, limit, offset int) ([]*entity.Compra, error) {
	var out []*entity.Compra
	for _, c := range r.s.Compras {
		if proveedorID == "" || c.ProveedorID == proveedorID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return page(out, limit, offset), nil
}

// ──────────────────────────── Ventas ────────────────────────────

type fakeVentaRepo struct{ s *Store }

func (r *fakeVentaRepo) Create(v *entity.Venta) error {
	r.s.Ventas[v.ID] = v
	return nil
}

func (r *fakeVentaRepo) CreateDetalle(d *entity.VentaDetalle) error {
	r.s.VentaDets[d.VentaID] = append(r.s.VentaDets[d.VentaID], d)
	return nil
}

func (r *fakeVentaRepo) Update(v *entity.Venta) error {
	if _, ok := r.s.Ventas[v.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Ventas[v.ID] = v
	return nil
}

func (r *fakeVentaRepo) DeleteDetalles(ventaID string) error {
	delete(r.s.VentaDets, ventaID)
	return nil
}

func (r *fakeVentaRepo) Delete(id string) error {
	delete(r.s.Ventas, id)
	return nil
}

func (r *fakeVentaRepo) SetEstado(id, estado string) error {
	v, ok := r.s.Ventas[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Estado = estado
	return nil
}

func (r *fakeVentaRepo) GetByID(id string) (*entity.Venta, error) {
	return r.s.Ventas[id], nil
}

func (r *fakeVentaRepo) GetDetalles(ventaID string) ([]*entity.VentaDetalle, error) {
	return append([]*entity.VentaDetalle(nil), r.s.VentaDets[ventaID]...), nil
}

func (r *fakeVentaRepo) List(clienteID string, limit, offset int) ([]*entity.Venta, error) {
	var out []*entity.Venta
	for _, v := range r.s.Ventas {
		if clienteID == "" || v.ClienteID == clienteID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return page(out, limit, offset), nil
}

// ──────────────────────────── Obras ────────────────────────────

type fakeObraRepo struct{ s *Store }

func (r *fakeObraRepo) Create(o *entity.Obra) error {
	r.s.Obras[o.ID] = o
	return nil
}

func (r *fakeObraRepo) GetByID(id string) (*entity.Obra, error) {
	return r.s.Obras[id], nil
}

func (r *fakeObraRepo) Update(o *entity.Obra) error {
	if _, ok := r.s.Obras[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Obras[o.ID] = o
	return nil
}

func (r *fakeObraRepo) List(estado string, limit, offset int) ([]*entity.Obra, error) {
	var out []*entity.Obra
	for _, o := range r.s.Obras {
		if estado == "" || o.Estado == estado {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return page(out, limit, offset), nil
}

func (r *fakeObraRepo) Delete(id string) error {
	for _, t := range r.s.Trabajos {
		if t.ObraID == id {
			return domain.ErrReferenced
		}
	}
	delete(r.s.Obras, id)
	return nil
}

func (r *fakeObraRepo) SetEstado(id, estado string) error {
	o, ok := r.s.Obras[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Estado = estado
	return nil
}

func (r *fakeObraRepo) CreateTrabajo(t *entity.Trabajo) error {
	r.s.Trabajos[t.ID] = t
	return nil
}

func (r *fakeObraRepo) GetTrabajo(id string) (*entity.Trabajo, error) {
	return r.s.Trabajos[id], nil
}

func (r *fakeObraRepo) ListTrabajos(obraID string) ([]*entity.Trabajo, error) {
	var out []*entity.Trabajo
	for _, t := range r.s.Trabajos {
		if t.ObraID == obraID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeObraRepo) UpdateTrabajo(t *entity.Trabajo) error {
	if _, ok := r.s.Trabajos[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Trabajos[t.ID] = t
	return nil
}

func (r *fakeObraRepo) DeleteTrabajo(id string) error {
	for _, g := range r.s.Gastos {
		if g.TrabajoID == id {
			return domain.ErrReferenced
		}
	}
	delete(r.s.Trabajos, id)
	return nil
}

func (r *fakeObraRepo) CreateGasto(g *entity.Gasto) error {
	r.s.Gastos[g.ID] = g
	return nil
}

func (r *fakeObraRepo) GetGasto(id string) (*entity.Gasto, error) {
	return r.s.Gastos[id], nil
}

func (r *fakeObraRepo) ListGastos(trabajoID string) ([]*entity.Gasto, error) {
	var out []*entity.Gasto
	for _, g := range r.s.Gastos {
		if g.TrabajoID == trabajoID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeObraRepo) DeleteGasto(id string) error {
	delete(r.s.Gastos, id)
	return nil
}

func (r *fakeObraRepo) Costos(obraID string) (*repository.ObraCostos, error) {
	obra, ok := r.s.Obras[obraID]
	if !ok {
		return nil, nil
	}
	costos := &repository.ObraCostos{
		ObraID:      obraID,
		Nombre:      obra.Nombre,
		Presupuesto: obra.PresupuestoTotal,
		GastoTotal:  decimal.Zero,
	}
	trabajos, _ := r.ListTrabajos(obraID)
	for _, t := range trabajos {
		total := decimal.Zero
		for _, g := range r.s.Gastos {
			if g.TrabajoID == t.ID {
				total = total.Add(g.CostoTotal)
			}
		}
		costos.GastoTotal = costos.GastoTotal.Add(total)
		costos.PorTrabajo = append(costos.PorTrabajo, repository.TrabajoCosto{
			TrabajoID: t.ID,
			Nombre:    t.Nombre,
			Total:     total,
		})
	}
	return costos, nil
}

// ──────────────────────────── Usuarios ────────────────────────────

type fakeUserRepo struct{ s *Store }

func (r *fakeUserRepo) Create(u *entity.User) error {
	r.s.Users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	return r.s.Users[id], nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*entity.User, error) {
	for _, u := range r.s.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(u *entity.User) error {
	if _, ok := r.s.Users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.Users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.s.Users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return page(out, limit, offset), nil
}

func (r *fakeUserRepo) SetActive(id string, active bool) error {
	u, ok := r.s.Users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsActive = active
	if !active {
		u.LockedUntil = nil
		u.FailedAttempts = 0
	}
	return nil
}

func (r *fakeUserRepo) AssignRole(userID, roleCode string) error {
	u, ok := r.s.Users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, role := range u.Roles {
		if role == roleCode {
			return nil
		}
	}
	u.Roles = append(u.Roles, roleCode)
	return nil
}

func (r *fakeUserRepo) RemoveRole(userID, roleCode string) error {
	u, ok := r.s.Users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	out := u.Roles[:0]
	for _, role := range u.Roles {
		if role != roleCode {
			out = append(out, role)
		}
	}
	u.Roles = out
	return nil
}

func (r *fakeUserRepo) PermissionsForRoles(roleCodes []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, role := range roleCodes {
		for _, perm := range r.s.RolePerms[role] {
			if !seen[perm] {
				seen[perm] = true
				out = append(out, perm)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
