package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/M0chiIron/ProjetL3/pkg/apierr"
)

type Handler struct {
	Client *Client
	Log    *zap.Logger
}

func NewHandler(client *Client, log *zap.Logger) *Handler {
	return &Handler{Client: client, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)
}

// search proxies the remote catalog. Either q (keyword) or subject
// (browse) must be set.
func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	subject := strings.TrimSpace(c.Query("subject"))
	limit := parseInt(c.Query("limit"), 20)

	var (
		books []Book
		err   error
	)
	switch {
	case q != "":
		books, err = h.Client.Search(c.Request.Context(), q, limit)
	case subject != "":
		books, err = h.Client.Subject(c.Request.Context(), subject, limit)
	default:
		apierr.Respond(c, apierr.Validation("q or subject required"))
		return
	}

	if err != nil {
		h.Log.Error("catalog search failed", zap.String("q", q), zap.String("subject", subject), zap.Error(err))
		apierr.Respond(c, apierr.Storage("catalog unavailable", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "books": books})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
