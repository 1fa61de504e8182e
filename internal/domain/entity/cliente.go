package entity

import "time"

// Cliente representa un cliente de la empresa.
// RucCI es único: cédula o RUC del cliente.
type Cliente struct {
	ID        string
	Nombre    string
	RucCI     string
	Telefono  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
