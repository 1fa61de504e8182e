// seed puebla roles, permisos y el usuario administrador inicial.
// Es idempotente: cada inserción usa ON CONFLICT DO NOTHING, se puede
// correr sobre una base ya poblada.
//
// Uso: go run ./cmd/seed
// La contraseña del admin se toma de SEED_ADMIN_PASSWORD (obligatoria la
// primera vez); el usuario queda con must_change_pw = true.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/obrasoft/gestion-api/internal/infrastructure/postgres"
	"github.com/obrasoft/gestion-api/pkg/config"
)

// permisos por rol. El rol admin no necesita permisos explícitos: los
// middlewares lo dejan pasar siempre.
var rolePermissions = map[string][]string{
	"almacen": {
		"productos.create", "productos.update", "productos.delete",
		"proveedores.create", "proveedores.update", "proveedores.delete",
		"compras.create", "compras.update", "compras.delete",
		"inventario.ajustar",
	},
	"ventas": {
		"clientes.create", "clientes.update", "clientes.delete",
		"ventas.create", "ventas.update", "ventas.delete",
	},
	"obras": {
		"obras.create", "obras.update", "obras.delete",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("cargar configuración: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fatal("conexión a PostgreSQL: %v", err)
	}
	defer pool.Close()

	roles := []string{"admin", "almacen", "ventas", "obras"}
	for _, code := range roles {
		if _, err := pool.Exec(ctx,
			`INSERT INTO roles (id, code) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
			uuid.NewString(), code); err != nil {
			fatal("insertar rol %s: %v", code, err)
		}
	}

	seen := map[string]bool{}
	for _, perms := range rolePermissions {
		for _, code := range perms {
			if seen[code] {
				continue
			}
			seen[code] = true
			if _, err := pool.Exec(ctx,
				`INSERT INTO permissions (id, code) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
				uuid.NewString(), code); err != nil {
				fatal("insertar permiso %s: %v", code, err)
			}
		}
	}

	for role, perms := range rolePermissions {
		for _, perm := range perms {
			if _, err := pool.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_id)
				 SELECT r.id, p.id FROM roles r, permissions p
				 WHERE r.code = $1 AND p.code = $2
				 ON CONFLICT DO NOTHING`,
				role, perm); err != nil {
				fatal("vincular %s a %s: %v", perm, role, err)
			}
		}
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		fmt.Println("SEED_ADMIN_PASSWORD no definida: se omite la creación del usuario admin")
		fmt.Println("roles y permisos sembrados")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fatal("hashear contraseña: %v", err)
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO users (id, username, pass_hash, full_name, is_active, must_change_pw)
		 VALUES ($1, 'admin', $2, 'Administrador', true, true)
		 ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), string(hash)); err != nil {
		fatal("insertar admin: %v", err)
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT u.id, r.id FROM users u, roles r
		 WHERE u.username = 'admin' AND r.code = 'admin'
		 ON CONFLICT DO NOTHING`); err != nil {
		fatal("asignar rol admin: %v", err)
	}

	fmt.Println("roles, permisos y usuario admin sembrados")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
