package ratings

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/M0chiIron/ProjetL3/pkg/apierr"
	"github.com/M0chiIron/ProjetL3/pkg/models"
)

type Handler struct {
	Repo *Repo
	Log  *zap.Logger
}

func NewHandler(repo *Repo, log *zap.Logger) *Handler {
	return &Handler{Repo: repo, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/book/:id/ratings", h.distribution)
}

func (h *Handler) distribution(c *gin.Context) {
	key := models.NormalizeKey(c.Param("id"))
	if key == "" {
		apierr.Respond(c, apierr.Validation("book id required"))
		return
	}

	dist, err := h.Repo.Histogram(c.Request.Context(), key)
	if err != nil {
		h.Log.Error("histogram failed", zap.String("key", key), zap.Error(err))
		apierr.Respond(c, apierr.Storage("ratings failed", err))
		return
	}

	avg := math.Round(Average(dist)*100) / 100

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"ratingDistribution": dist,
		"averageRating":      avg,
	})
}
