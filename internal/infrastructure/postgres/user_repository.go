package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
// Los roles viven en user_roles (N:M contra roles por código).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, username, pass_hash, full_name, phone, is_active, must_change_pw, locked_until, failed_attempts, created_at, updated_at`

// Create persiste un usuario nuevo. Username único a nivel de tabla.
func (r *UserRepo) Create(user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		user.ID, user.Username, user.PassHash, user.FullName, user.Phone,
		user.IsActive, user.MustChangePw, user.LockedUntil, user.FailedAttempts,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario con sus roles cargados.
func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	return r.getBy("id", id)
}

// GetByUsername obtiene un usuario con sus roles cargados.
func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	return r.getBy("username", username)
}

func (r *UserRepo) getBy(column, value string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`
	var u entity.User
	err := r.q.QueryRow(context.Background(), query, value).Scan(
		&u.ID, &u.Username, &u.PassHash, &u.FullName, &u.Phone,
		&u.IsActive, &u.MustChangePw, &u.LockedUntil, &u.FailedAttempts,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	roles, err := r.rolesFor(u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

// Update actualiza credenciales, estado de bloqueo y datos personales.
func (r *UserRepo) Update(user *entity.User) error {
	query := `
		UPDATE users SET pass_hash = $2, full_name = $3, phone = $4, is_active = $5,
		       must_change_pw = $6, locked_until = $7, failed_attempts = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		user.ID, user.PassHash, user.FullName, user.Phone, user.IsActive,
		user.MustChangePw, user.LockedUntil, user.FailedAttempts, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// List lista usuarios con sus roles.
func (r *UserRepo) List(limit, offset int) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PassHash, &u.FullName, &u.Phone,
			&u.IsActive, &u.MustChangePw, &u.LockedUntil, &u.FailedAttempts,
			&u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, u := range list {
		roles, err := r.rolesFor(u.ID)
		if err != nil {
			return nil, err
		}
		u.Roles = roles
	}
	return list, nil
}

// SetActive activa o desactiva la cuenta; desactivar limpia el bloqueo.
func (r *UserRepo) SetActive(id string, active bool) error {
	query := `
		UPDATE users SET is_active = $2,
		       locked_until = CASE WHEN $2 THEN locked_until ELSE NULL END,
		       failed_attempts = CASE WHEN $2 THEN failed_attempts ELSE 0 END,
		       updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, id, active)
	if err != nil {
		return fmt.Errorf("set active user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AssignRole vincula un rol por código. Idempotente.
func (r *UserRepo) AssignRole(userID, roleCode string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, r.id FROM roles r WHERE r.code = $2
		ON CONFLICT DO NOTHING`
	_, err := r.q.Exec(context.Background(), query, userID, roleCode)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// RemoveRole desvincula un rol por código.
func (r *UserRepo) RemoveRole(userID, roleCode string) error {
	query := `
		DELETE FROM user_roles
		WHERE user_id = $1 AND role_id = (SELECT id FROM roles WHERE code = $2)`
	_, err := r.q.Exec(context.Background(), query, userID, roleCode)
	if err != nil {
		return fmt.Errorf("remove role: %w", err)
	}
	return nil
}

// PermissionsForRoles resuelve los códigos de permiso de un conjunto de roles.
func (r *UserRepo) PermissionsForRoles(roleCodes []string) ([]string, error) {
	if len(roleCodes) == 0 {
		return nil, nil
	}
	query := `
		SELECT DISTINCT p.code
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN roles r ON r.id = rp.role_id
		WHERE r.code = ANY($1)
		ORDER BY p.code`
	rows, err := r.q.Query(context.Background(), query, roleCodes)
	if err != nil {
		return nil, fmt.Errorf("permissions for roles: %w", err)
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *UserRepo) rolesFor(userID string) ([]string, error) {
	query := `
		SELECT r.code
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.code`
	rows, err := r.q.Query(context.Background(), query, userID)
	if err != nil {
		return nil, fmt.Errorf("roles de user: %w", err)
	}
	defer rows.Close()
	var roles []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, code)
	}
	return roles, rows.Err()
}
