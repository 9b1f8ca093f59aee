package library

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/M0chiIron/ProjetL3/internal/auth"
	"github.com/M0chiIron/ProjetL3/internal/events"
	"github.com/M0chiIron/ProjetL3/pkg/apierr"
	"github.com/M0chiIron/ProjetL3/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *events.Hub
	Log  *zap.Logger
}

func NewHandler(repo *Repo, hub *events.Hub, log *zap.Logger) *Handler {
	return &Handler{Repo: repo, Hub: hub, Log: log}
}

// RegisterRoutes wires the owner-scoped library endpoints; rg must carry
// the session middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/add-to-library", h.addToLibrary)
	rg.POST("/remove-from-library", h.removeFromLibrary)
	rg.GET("/library", h.list)
	rg.GET("/book/:id", h.getOne)
}

// RegisterPublicRoutes wires the endpoints that need no session.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/popular-books", h.popular)
}

type addReq struct {
	Key        string            `json:"key"`
	Title      string            `json:"title"`
	AuthorName models.StringList `json:"author_name"`
	CoverID    *int64            `json:"cover_i"`
	Status     string            `json:"type_library"`
	Rating     int               `json:"rating"`
}

func (h *Handler) addToLibrary(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.Validation("invalid json"))
		return
	}

	key := models.NormalizeKey(req.Key)
	if key == "" {
		apierr.Respond(c, apierr.Validation("key required"))
		return
	}
	if req.Title == "" {
		apierr.Respond(c, apierr.Validation("title required"))
		return
	}

	status := models.StatusToRead
	if req.Status != "" {
		status = models.NormalizeStatus(req.Status)
		if status == "" {
			apierr.Respond(c, apierr.Validation("type_library must be one of: to_read, reading, read"))
			return
		}
	}

	if req.Rating < 0 || req.Rating > 5 {
		apierr.Respond(c, apierr.Validation("rating must be between 1 and 5"))
		return
	}

	saved, err := h.Repo.Upsert(c.Request.Context(), models.Book{
		UserID:     userID,
		Key:        key,
		Title:      req.Title,
		AuthorName: req.AuthorName,
		CoverID:    req.CoverID,
		Status:     status,
		Rating:     req.Rating,
	})
	if err != nil {
		h.Log.Error("upsert failed", zap.String("key", key), zap.Error(err))
		apierr.Respond(c, apierr.Storage("save failed", err))
		return
	}

	if h.Hub != nil {
		ev := events.LibraryEvent{
			Type:   events.TypeLibraryUpdate,
			UserID: userID,
			Key:    key,
			Status: saved.Status,
			Rating: saved.Rating,
			At:     time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "book": saved})
}

type removeReq struct {
	BookID int64 `json:"bookId"`
}

func (h *Handler) removeFromLibrary(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var req removeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.Validation("invalid json"))
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), userID, req.BookID)
	if err != nil {
		h.Log.Error("delete failed", zap.Int64("book_id", req.BookID), zap.Error(err))
		apierr.Respond(c, apierr.Storage("delete failed", err))
		return
	}

	if deleted && h.Hub != nil {
		ev := events.LibraryEvent{
			Type:   events.TypeLibraryDelete,
			UserID: userID,
			At:     time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	// Absent or foreign ids are a no-op success, matching owner-scoped
	// deletion semantics.
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) list(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	books, err := h.Repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.Log.Error("list failed", zap.Error(err))
		apierr.Respond(c, apierr.Storage("list failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books})
}

func (h *Handler) getOne(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	key := models.NormalizeKey(c.Param("id"))
	if key == "" {
		apierr.Respond(c, apierr.Validation("book id required"))
		return
	}

	b, err := h.Repo.GetByKey(c.Request.Context(), userID, key)
	if err != nil {
		h.Log.Error("get failed", zap.String("key", key), zap.Error(err))
		apierr.Respond(c, apierr.Storage("get failed", err))
		return
	}
	if b == nil {
		c.JSON(http.StatusOK, gin.H{"isInLibrary": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isInLibrary": true, "book": b})
}

func (h *Handler) popular(c *gin.Context) {
	books, err := h.Repo.Popular(c.Request.Context(), 5)
	if err != nil {
		h.Log.Error("popular failed", zap.Error(err))
		apierr.Respond(c, apierr.Storage("popular books failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "books": books})
}
