package material

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"slidehub/internal/filestore"
	"slidehub/internal/sync"
	"slidehub/pkg/models"
)

// ScopeNone is the sentinel project id meaning "the global pool". Omitting
// project_id entirely selects all materials regardless of owner.
const ScopeNone = "none"

type Handler struct {
	Repo  *Repo
	Files *filestore.Store
	Hub   *sync.Hub
	Log   *zap.SugaredLogger
}

func NewHandler(repo *Repo, files *filestore.Store, hub *sync.Hub, log *zap.SugaredLogger) *Handler {
	return &Handler{Repo: repo, Files: files, Hub: hub, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.upload)
	rg.GET("/:id", h.getOne)
	rg.PATCH("/:id", h.updateMeta)
	rg.DELETE("/:id", h.remove)
	rg.POST("/:id/move", h.move)
	rg.POST("/:id/copy", h.copy)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{}
	projectID, present := c.GetQuery("project_id")
	switch {
	case !present:
		q.All = true
	case projectID == ScopeNone || projectID == "":
		// global pool
	default:
		q.ProjectID = projectID
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		h.Log.Errorw("list materials failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	projectID := strings.TrimSpace(c.PostForm("project_id"))
	if projectID == ScopeNone {
		projectID = ""
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	defer src.Close()

	relPath, filename, err := h.Files.SaveMaterial(src, projectID, file.Filename)
	if err != nil {
		h.Log.Errorw("save material failed", "error", err, "filename", file.Filename)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	m := &models.Material{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		FilePath:         relPath,
		Filename:         filename,
		OriginalFilename: file.Filename,
	}
	if err := h.Repo.Create(c.Request.Context(), m); err != nil {
		_ = h.Files.DeleteFile(relPath)
		h.Log.Errorw("insert material failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	h.broadcast(sync.EventMaterialUpdate, m.ID, projectID)
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) getOne(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	m, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		h.Log.Errorw("get material failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

type metaReq struct {
	DisplayName string `json:"display_name"`
	Note        string `json:"note"`
}

func (h *Handler) updateMeta(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var req metaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	m, err := h.Repo.UpdateMeta(c.Request.Context(), id, req.DisplayName, req.Note)
	if err != nil {
		h.Log.Errorw("update material failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	h.broadcast(sync.EventMaterialUpdate, m.ID, m.ProjectID)
	c.JSON(http.StatusOK, m)
}

func (h *Handler) remove(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	m, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		h.Log.Errorw("get material failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil || !ok {
		h.Log.Errorw("delete material failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if err := h.Files.DeleteFile(m.FilePath); err != nil {
		// the record is gone; losing the orphan file is logged, not fatal
		h.Log.Warnw("delete material file failed", "error", err, "path", m.FilePath)
	}

	h.broadcast(sync.EventMaterialDelete, id, m.ProjectID)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type targetReq struct {
	TargetProjectID string `json:"target_project_id"`
}

func (h *Handler) move(c *gin.Context) {
	h.relocate(c, false)
}

func (h *Handler) copy(c *gin.Context) {
	h.relocate(c, true)
}

func (h *Handler) relocate(c *gin.Context, keepSource bool) {
	id := strings.TrimSpace(c.Param("id"))
	var req targetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	target := strings.TrimSpace(req.TargetProjectID)
	if target == ScopeNone {
		target = ""
	}

	m, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		h.Log.Errorw("get material failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if keepSource {
		relPath, filename, err := h.Files.CopyMaterial(m.FilePath, target)
		if err != nil {
			h.Log.Errorw("copy material file failed", "error", err, "id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "copy failed"})
			return
		}
		dup := &models.Material{
			ID:               uuid.NewString(),
			ProjectID:        target,
			FilePath:         relPath,
			Filename:         filename,
			DisplayName:      m.DisplayName,
			Name:             m.Name,
			OriginalFilename: m.OriginalFilename,
			SourceFilename:   m.SourceFilename,
			Prompt:           m.Prompt,
			Note:             m.Note,
		}
		if err := h.Repo.Create(c.Request.Context(), dup); err != nil {
			_ = h.Files.DeleteFile(relPath)
			h.Log.Errorw("insert copied material failed", "error", err, "id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "copy failed"})
			return
		}
		h.broadcast(sync.EventMaterialUpdate, dup.ID, target)
		c.JSON(http.StatusOK, dup)
		return
	}

	relPath, filename, err := h.Files.MoveMaterial(m.FilePath, target)
	if err != nil {
		h.Log.Errorw("move material file failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "move failed"})
		return
	}
	if err := h.Repo.Reassign(c.Request.Context(), id, target, relPath, filename); err != nil {
		h.Log.Errorw("reassign material failed", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "move failed"})
		return
	}

	h.broadcast(sync.EventMaterialUpdate, id, target)
	c.JSON(http.StatusOK, gin.H{"message": "moved"})
}

func (h *Handler) broadcast(eventType, materialID, projectID string) {
	if h.Hub == nil {
		return
	}
	ev := sync.NewEvent(eventType)
	ev.MaterialID = materialID
	ev.ProjectID = projectID
	go h.Hub.Broadcast(ev)
}
