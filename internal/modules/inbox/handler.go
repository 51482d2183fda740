package inbox

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
	rg.GET("/inbox", h.load)
	rg.POST("/inbox/refresh", h.refresh)
	rg.POST("/inbox/:id/approve", h.approve)
	rg.POST("/inbox/:id/decline", h.decline)
	rg.POST("/inbox/:id/cancel", h.cancel)
}

func actorFrom(c *gin.Context) (string, domain.Role) {
	return c.GetString("user_id"), domain.ParseRole(c.GetString("role"))
}

func (h *Handler) load(c *gin.Context) {
	actorID, role := actorFrom(c)
	inbox, err := h.svc.Load(c.Request.Context(), actorID, role)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, inbox)
}

func (h *Handler) refresh(c *gin.Context) {
	h.svc.Refresh()
	c.Status(http.StatusNoContent)
}

func (h *Handler) approve(c *gin.Context) {
	actorID, role := actorFrom(c)
	b, err := h.svc.Approve(c.Request.Context(), c.Param("id"), actorID, role)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) decline(c *gin.Context) {
	actorID, role := actorFrom(c)
	b, err := h.svc.Decline(c.Request.Context(), c.Param("id"), actorID, role)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) cancel(c *gin.Context) {
	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	actorID, role := actorFrom(c)
	b, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), actorID, role, req.Reason)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}
