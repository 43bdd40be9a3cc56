package page

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"slidehub/internal/filestore"
	"slidehub/internal/sync"
	"slidehub/pkg/models"
	"slidehub/pkg/slides"
)

// GenerateQueue is what the handler needs from the generation pipeline.
type GenerateQueue interface {
	Enqueue(projectID, pageID string) error
}

type Handler struct {
	Repo  *Repo
	Files *filestore.Store
	Hub   *sync.Hub
	Queue GenerateQueue
	Log   *zap.SugaredLogger
}

func NewHandler(repo *Repo, files *filestore.Store, hub *sync.Hub, queue GenerateQueue, log *zap.SugaredLogger) *Handler {
	return &Handler{Repo: repo, Files: files, Hub: hub, Queue: queue, Log: log}
}

// RegisterRoutes mounts the /pages/:id operations.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.getOne)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.remove)
	rg.POST("/:id/generate", h.generate)
	rg.POST("/:id/regenerate-description", h.regenerateDescription)
}

// RegisterProjectRoutes mounts the project-scoped page collection.
func (h *Handler) RegisterProjectRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/pages", h.listByProject)
	rg.POST("/:id/pages", h.create)
}

func (h *Handler) listByProject(c *gin.Context) {
	projectID := strings.TrimSpace(c.Param("id"))
	items, err := h.Repo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.Log.Errorw("list pages failed", "error", err, "project_id", projectID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

type createReq struct {
	OutlineContent *models.OutlineContent `json:"outline_content"`
	Part           string                 `json:"part"`
}

func (h *Handler) create(c *gin.Context) {
	projectID := strings.TrimSpace(c.Param("id"))
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.OutlineContent != nil {
		req.OutlineContent.Points = slides.CleanPoints(req.OutlineContent.Points)
	}

	total, err := h.Repo.CountByProject(c.Request.Context(), projectID)
	if err != nil {
		h.Log.Errorw("count pages failed", "error", err, "project_id", projectID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	p := &models.Page{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		OrderIndex:     total,
		OutlineContent: req.OutlineContent,
		Part:           strings.TrimSpace(req.Part),
	}
	if err := h.Repo.Create(c.Request.Context(), p); err != nil {
		h.Log.Errorw("create page failed", "error", err, "project_id", projectID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	h.broadcast(sync.EventPageUpdate, p)
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) getOne(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	p, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		h.Log.Errorw("get page failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateReq struct {
	OutlineContent     *models.OutlineContent     `json:"outline_content"`
	DescriptionContent *models.DescriptionContent `json:"description_content"`
	PageType           *string                    `json:"page_type"`
	Part               *string                    `json:"part"`
}

func (h *Handler) update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if req.PageType != nil && !models.ValidPageType(*req.PageType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "page_type must be one of: auto, cover, content, transition, ending",
		})
		return
	}
	if req.OutlineContent != nil {
		req.OutlineContent.Points = slides.CleanPoints(req.OutlineContent.Points)
	}

	p, err := h.Repo.Update(c.Request.Context(), id, UpdateFields{
		Outline:     req.OutlineContent,
		Description: req.DescriptionContent,
		PageType:    req.PageType,
		Part:        req.Part,
	})
	if err != nil {
		h.Log.Errorw("update page failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	h.broadcast(sync.EventPageUpdate, p)
	c.JSON(http.StatusOK, p)
}

func (h *Handler) remove(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	p, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		h.Log.Errorw("get page failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil || !ok {
		h.Log.Errorw("delete page failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if err := h.Files.DeletePageImages(p.ProjectID, id); err != nil {
		h.Log.Warnw("delete page images failed", "error", err, "id", id)
	}
	if err := h.Repo.Resequence(c.Request.Context(), p.ProjectID); err != nil {
		h.Log.Warnw("resequence pages failed", "error", err, "project_id", p.ProjectID)
	}

	h.broadcast(sync.EventPageDelete, p)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) generate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	p, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		h.Log.Errorw("get page failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if p.Status == models.PageStatusGenerating {
		c.JSON(http.StatusConflict, gin.H{"error": "already generating"})
		return
	}

	if err := h.Queue.Enqueue(p.ProjectID, p.ID); err != nil {
		h.Log.Warnw("enqueue generation failed", "error", err, "id", id)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation queue full"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "queued", "page_id": p.ID})
}

// regenerateDescription rebuilds the description text from the current
// outline, keeping any trailing materials section intact. The result is
// always written in the single-text shape.
func (h *Handler) regenerateDescription(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	p, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		h.Log.Errorw("get page failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "regenerate failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	total, err := h.Repo.CountByProject(c.Request.Context(), p.ProjectID)
	if err != nil {
		h.Log.Errorw("count pages failed", "error", err, "project_id", p.ProjectID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "regenerate failed"})
		return
	}

	text := slides.BuildDescription(*p, total)
	if section, ok := slides.ExtractMaterialsSection(slides.DescriptionText(p.DescriptionContent)); ok {
		text = strings.TrimRight(text, "\n") + "\n\n" + section
	}

	updated, err := h.Repo.Update(c.Request.Context(), id, UpdateFields{
		Description: &models.DescriptionContent{Text: text},
	})
	if err != nil || updated == nil {
		h.Log.Errorw("write regenerated description failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "regenerate failed"})
		return
	}

	h.broadcast(sync.EventPageUpdate, updated)
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) broadcast(eventType string, p *models.Page) {
	if h.Hub == nil {
		return
	}
	ev := sync.NewEvent(eventType)
	ev.ProjectID = p.ProjectID
	ev.PageID = p.ID
	ev.Status = p.Status
	go h.Hub.Broadcast(ev)
}
