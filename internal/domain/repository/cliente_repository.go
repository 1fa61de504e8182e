package repository

import "github.com/obrasoft/gestion-api/internal/domain/entity"

// ClienteRepository define el puerto de persistencia para Cliente (DIP).
type ClienteRepository interface {
	Create(cliente *entity.Cliente) error
	GetByID(id string) (*entity.Cliente, error)
	GetByRucCI(rucCI string) (*entity.Cliente, error)
	Update(cliente *entity.Cliente) error
	// List filtra por término de búsqueda normalizado (vacío = todos).
	List(search string, limit, offset int) ([]*entity.Cliente, error)
	Delete(id string) error
}
