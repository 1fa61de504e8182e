package entity

import "time"

// Proveedor representa un proveedor de productos.
type Proveedor struct {
	ID        string
	Nombre    string
	Telefono  string
	Direccion string
	Correo    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
