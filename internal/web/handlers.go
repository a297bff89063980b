package web

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"guildmirror/internal/archive"
	"guildmirror/internal/dispatcher"
	"guildmirror/internal/replicator"
)

const backupTimeout = 5 * time.Minute

type replicationRequest struct {
	Token    string `json:"token"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

type backupRequest struct {
	Token   string `json:"token"`
	GuildID string `json:"guild_id"`
}

type restoreRequest struct {
	Token    string `json:"token"`
	TargetID string `json:"target_id"`
	File     string `json:"file"`
}

func (s *Server) startReplication(c *fiber.Ctx) error {
	var req replicationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Token == "" || req.SourceID == "" || req.TargetID == "" {
		return badRequest(c, "token, source_id and target_id are all required")
	}
	if req.SourceID == req.TargetID {
		return badRequest(c, "source and target guild ids must differ")
	}

	id := uuid.NewString()
	client := dispatcher.NewClient(req.Token, s.cfg.API.BaseURL, s.log)

	run, err := s.registry.Start(context.Background(), id, client, req.SourceID, req.TargetID,
		replicator.Options{Strict: s.cfg.Replication.Strict})
	if err != nil {
		client.Close()
		if errors.Is(err, replicator.ErrRunInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return badRequest(c, err.Error())
	}

	s.log.Info("replication accepted",
		zap.String("id", id),
		zap.String("source", req.SourceID),
		zap.String("target", req.TargetID))

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":     id,
		"status": run.Status(),
	})
}

func (s *Server) replicationStatus(c *fiber.Ctx) error {
	run, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no such replication run")
	}
	return c.JSON(run.Status())
}

func (s *Server) replicationReport(c *fiber.Ctx) error {
	run, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no such replication run")
	}
	return c.JSON(fiber.Map{"entities": run.Report()})
}

func (s *Server) cancelReplication(c *fiber.Ctx) error {
	run, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return notFound(c, "no such replication run")
	}
	run.Cancel()
	return c.JSON(fiber.Map{"status": "cancelling"})
}

// createBackup extracts a guild's structure and writes it to the
// archive in one synchronous request.
func (s *Server) createBackup(c *fiber.Ctx) error {
	var req backupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Token == "" || req.GuildID == "" {
		return badRequest(c, "token and guild_id are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	client := dispatcher.NewClient(req.Token, s.cfg.API.BaseURL, s.log)
	defer client.Close()

	snap, err := replicator.Extract(ctx, client, req.GuildID, s.log)
	if err != nil {
		if errors.Is(err, dispatcher.ErrNotFound) {
			return notFound(c, "guild not found or no access")
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	path, err := s.store.Save(snap)
	if err != nil {
		s.log.Error("backup save failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not persist backup"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"path":     path,
		"guild":    snap.Guild,
		"channels": len(snap.Channels),
		"roles":    len(snap.Roles),
	})
}

// startRestore replays a saved backup onto a target guild. The target
// may be the guild the backup was taken from.
func (s *Server) startRestore(c *fiber.Ctx) error {
	var req restoreRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Token == "" || req.TargetID == "" || req.File == "" {
		return badRequest(c, "token, target_id and file are all required")
	}

	snap, err := s.store.LoadNamed(req.File)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return notFound(c, "no such backup file")
		}
		if errors.Is(err, archive.ErrMalformed) {
			return badRequest(c, "backup file is not a valid snapshot")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	id := uuid.NewString()
	client := dispatcher.NewClient(req.Token, s.cfg.API.BaseURL, s.log)

	run, err := s.registry.Start(context.Background(), id, client, snap.Guild.ID, req.TargetID,
		replicator.Options{Strict: s.cfg.Replication.Strict, Snapshot: snap})
	if err != nil {
		client.Close()
		return badRequest(c, err.Error())
	}

	s.log.Info("restore accepted",
		zap.String("id", id),
		zap.String("file", req.File),
		zap.String("target", req.TargetID))

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":     id,
		"status": run.Status(),
	})
}

func (s *Server) listBackups(c *fiber.Ctx) error {
	files, err := s.store.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"backups": files})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}
