package handlers

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"reframe/internal/pipeline"
	"reframe/internal/services/ffmpeg"
	"reframe/internal/smartcrop"
	"reframe/internal/store"
	"reframe/internal/workers"
)

// ReframeHandler serves the analysis and rendering endpoints.
type ReframeHandler struct {
	Pipeline  *pipeline.Pipeline
	Processor *workers.Processor
	Store     *store.Store
	TmpDir    string
}

// RegisterReframeRoutes wires the reframe endpoints.
func RegisterReframeRoutes(app *fiber.App, h *ReframeHandler) {
	app.Post("/reframe/analyze", h.analyze)
	app.Post("/reframe/jobs", h.enqueue)
	app.Get("/reframe/jobs/:id", h.jobStatus)
	app.Post("/reframe/render", h.render)
}

// analyze runs the pipeline synchronously and returns the coords artifact.
func (h *ReframeHandler) analyze(c *fiber.Ctx) error {
	var payload struct {
		URL    string `json:"url"`
		ClipID string `json:"clipId"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if payload.URL == "" {
		return c.Status(400).JSON(fiber.Map{"error": "url is required"})
	}
	if payload.ClipID == "" {
		payload.ClipID = uuid.NewString()
	}

	result, coordsPath, err := h.Pipeline.AnalyzeClip(payload.URL, payload.ClipID, h.TmpDir)
	if err != nil {
		return errJson(c, err)
	}
	return c.JSON(fiber.Map{
		"clipId": payload.ClipID,
		"coords": coordsPath,
		"result": result,
	})
}

// enqueue registers an async job.
func (h *ReframeHandler) enqueue(c *fiber.Ctx) error {
	var payload struct {
		URL    string `json:"url"`
		ClipID string `json:"clipId"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if payload.URL == "" {
		return c.Status(400).JSON(fiber.Map{"error": "url is required"})
	}

	job, err := h.Processor.Enqueue(payload.URL, payload.ClipID)
	if err != nil {
		return errJson(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":     job.ID,
		"clipId": job.ClipID,
		"status": job.Status,
	})
}

func (h *ReframeHandler) jobStatus(c *fiber.Ctx) error {
	job, err := h.Store.Get(c.Params("id"))
	if errors.Is(err, store.ErrJobNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "job not found"})
	}
	if err != nil {
		return errJson(c, err)
	}
	return c.JSON(fiber.Map{
		"id":     job.ID,
		"clipId": job.ClipID,
		"status": job.Status,
		"coords": job.CoordsPath,
		"error":  job.Error,
	})
}

// render applies a previously produced coords artifact to a local video.
func (h *ReframeHandler) render(c *fiber.Ctx) error {
	var payload struct {
		VideoPath  string `json:"videoPath"`
		CoordsPath string `json:"coordsPath"`
		OutputPath string `json:"outputPath"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if payload.VideoPath == "" || payload.CoordsPath == "" || payload.OutputPath == "" {
		return c.Status(400).JSON(fiber.Map{"error": "videoPath, coordsPath and outputPath are required"})
	}

	data, err := os.ReadFile(payload.CoordsPath)
	if err != nil {
		return errJson(c, err)
	}
	result, err := smartcrop.DecodeResult(data)
	if err != nil {
		return errJson(c, err)
	}
	if err := ffmpeg.Render(payload.VideoPath, payload.OutputPath, result); err != nil {
		return errJson(c, err)
	}
	return c.JSON(fiber.Map{"output": payload.OutputPath, "mode": result.Mode()})
}

func errJson(c *fiber.Ctx, err error) error {
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}
