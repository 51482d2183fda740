package booking

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
	rg.POST("/bookings", h.create)
	rg.GET("/bookings/:id", h.get)
	rg.POST("/bookings/:id/approve", h.approve)
	rg.POST("/bookings/:id/decline", h.decline)
	rg.POST("/bookings/:id/cancel", h.cancel)
	rg.POST("/bookings/:id/reschedule", h.reschedule)
	rg.POST("/bookings/:id/complete", h.complete)
	rg.GET("/studios/:id/open-windows", h.openWindows)
}

func actorFrom(c *gin.Context) (string, domain.Role) {
	return c.GetString("user_id"), domain.ParseRole(c.GetString("role"))
}

func (h *Handler) create(c *gin.Context) {
	actorID, role := actorFrom(c)
	if role != domain.RoleArtist {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "only artists create booking requests")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_BODY", "malformed booking request", err.Error())
		return
	}

	b, err := h.svc.Create(c.Request.Context(), actorID, req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.DomainError(c, err)
		return
	}
	actorID, role := actorFrom(c)
	if role != domain.RoleStudioOwner && !b.Participant(actorID) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "not a participant")
		return
	}
	response.Success(c, http.StatusOK, b)
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

func (h *Handler) reschedule(c *gin.Context) {
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	actorID, role := actorFrom(c)
	b, err := h.svc.Reschedule(c.Request.Context(), c.Param("id"), actorID, role, req.Start, req.End)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) complete(c *gin.Context) {
	actorID, role := actorFrom(c)
	b, err := h.svc.Complete(c.Request.Context(), c.Param("id"), actorID, role)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) openWindows(c *gin.Context) {
	// No date means today in the studio's timezone.
	day, err := h.svc.StudioDay(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, day)
}
