package availability

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studiobook/internal/domain"
	"studiobook/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/availability", h.upsert)
	rg.GET("/availability/:scope/:ownerId", h.list)
	rg.DELETE("/availability/:scope/:ownerId/:id", h.remove)
}

func actorFrom(c *gin.Context) (string, domain.Role) {
	return c.GetString("user_id"), domain.ParseRole(c.GetString("role"))
}

func (h *Handler) upsert(c *gin.Context) {
	var req UpsertEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	entry, err := req.toDomain()
	if err != nil {
		response.DomainError(c, err)
		return
	}

	actorID, role := actorFrom(c)
	saved, err := h.svc.Upsert(c.Request.Context(), actorID, role, entry)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	actorID, role := actorFrom(c)
	entries, err := h.svc.List(c.Request.Context(), actorID, role, domain.Scope(c.Param("scope")), c.Param("ownerId"))
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

func (h *Handler) remove(c *gin.Context) {
	actorID, role := actorFrom(c)
	err := h.svc.Delete(c.Request.Context(), actorID, role, domain.Scope(c.Param("scope")), c.Param("ownerId"), c.Param("id"))
	if err != nil {
		response.DomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
