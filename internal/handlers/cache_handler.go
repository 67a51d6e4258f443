package handlers

import (
	"github.com/gofiber/fiber/v2"

	"resumescreen/resume-screener/internal/services"
)

type CacheHandler struct {
	cache services.CacheStore
}

func NewCacheHandler(cache services.CacheStore) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// HandleCacheStatus handles GET /api/cache-status.
func (h *CacheHandler) HandleCacheStatus(c *fiber.Ctx) error {
	return c.JSON(h.cache.Stats())
}
