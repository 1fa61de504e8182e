package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/obrasoft/gestion-api/internal/application/auth"
	"github.com/obrasoft/gestion-api/internal/application/catalog"
	"github.com/obrasoft/gestion-api/internal/application/inventory"
	"github.com/obrasoft/gestion-api/internal/application/obras"
	"github.com/obrasoft/gestion-api/internal/application/purchasing"
	"github.com/obrasoft/gestion-api/internal/application/sales"
	"github.com/obrasoft/gestion-api/internal/infrastructure/postgres"
	httpRouter "github.com/obrasoft/gestion-api/internal/interfaces/http"
	"github.com/obrasoft/gestion-api/pkg/config"
	"github.com/obrasoft/gestion-api/pkg/logger"
)

// swaggerMiddleware construye el middleware de Swagger UI si el archivo de
// especificación existe. swagger.New hace panic con un FilePath inexistente,
// y la ausencia de docs no debe impedir levantar el servidor.
func swaggerMiddleware(filePath string) (fiber.Handler, bool) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, false
	}
	return swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: filePath,
		Path:     "docs",
		Title:    "Gestión de Obras API",
	}), true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	dbLog := log.Component("postgres")
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		dbLog.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	dbLog.Info().Str("db", cfg.DB.DBName).Msg("pool de conexiones listo")

	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)
	userRepo := postgres.NewUserRepository(pool)

	authUC := auth.NewUseCase(userRepo, cfg.JWT, cfg.Auth)
	catalogUC := catalog.NewUseCase(repos.Clientes, repos.Proveedores, repos.Productos)
	inventarioUC := inventory.NewUseCase(txRunner, repos.Movimientos, repos.Productos)
	comprasUC := purchasing.NewUseCase(txRunner, repos.Compras, repos.Proveedores, repos.Productos)
	ventasUC := sales.NewUseCase(txRunner, repos.Ventas, repos.Clientes, repos.Productos)
	obrasUC := obras.NewUseCase(txRunner, repos.Obras)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if mw, ok := swaggerMiddleware("./docs/swagger.json"); ok {
		app.Use(mw)
	} else {
		log.Warn().Msg("docs/swagger.json no encontrado, se omite Swagger UI")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		CatalogUC:    catalogUC,
		InventarioUC: inventarioUC,
		ComprasUC:    comprasUC,
		VentasUC:     ventasUC,
		ObrasUC:      obrasUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
