package web

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"guildmirror/internal/archive"
	"guildmirror/internal/config"
	"guildmirror/internal/replicator"
)

// Server is the HTTP front-end: it accepts replication requests, exposes
// run status and the per-entity report, and drives standalone backups.
type Server struct {
	app      *fiber.App
	registry *replicator.Registry
	store    *archive.Store
	cfg      *config.Config
	log      *zap.Logger
}

func NewServer(cfg *config.Config, registry *replicator.Registry, store *archive.Store, log *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "guildmirror",
	})

	s := &Server{
		app:      app,
		registry: registry,
		store:    store,
		cfg:      cfg,
		log:      log,
	}

	app.Use(recovery(log))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api.Post("/replications", s.startReplication)
	api.Get("/replications/:id", s.replicationStatus)
	api.Get("/replications/:id/report", s.replicationReport)
	api.Delete("/replications/:id", s.cancelReplication)

	api.Post("/backups", s.createBackup)
	api.Get("/backups", s.listBackups)
	api.Post("/restores", s.startRestore)
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// recovery turns panics in handlers into a JSON 500 instead of a dead
// connection.
func recovery(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered in handler", zap.Any("panic", r))
				_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "internal server error",
				})
			}
		}()
		return c.Next()
	}
}
