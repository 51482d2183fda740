package catalog

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
	rg.POST("/studios", h.createStudio)
	rg.GET("/studios", h.listStudios)
	rg.GET("/studios/:id", h.getStudio)
	rg.PATCH("/studios/:id", h.updateStudio)

	rg.POST("/studios/:id/blackouts", h.addBlackout)
	rg.DELETE("/studios/:id/blackouts/:date", h.removeBlackout)

	rg.GET("/engineers", h.listEngineers)
	rg.POST("/studios/:id/engineers", h.approveEngineer)
	rg.DELETE("/studios/:id/engineers/:engineerId", h.removeEngineer)

	rg.POST("/studios/:id/rooms", h.createRoom)
	rg.POST("/studios/:id/rooms/:roomId/default", h.setDefaultRoom)
	rg.PATCH("/rooms/:id", h.updateRoom)
	rg.DELETE("/rooms/:id", h.deleteRoom)
}

func actorFrom(c *gin.Context) (string, domain.Role) {
	return c.GetString("user_id"), domain.ParseRole(c.GetString("role"))
}

func (h *Handler) createStudio(c *gin.Context) {
	var req CreateStudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	actorID, role := actorFrom(c)
	studio, err := h.svc.CreateStudio(c.Request.Context(), actorID, role, req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, studio)
}

func (h *Handler) listStudios(c *gin.Context) {
	actorID, role := actorFrom(c)
	if role == domain.RoleStudioOwner && c.Query("mine") == "true" {
		studios, err := h.svc.ListOwnedStudios(c.Request.Context(), actorID)
		if err != nil {
			response.DomainError(c, err)
			return
		}
		response.Success(c, http.StatusOK, studios)
		return
	}

	studios, err := h.svc.ListStudios(c.Request.Context())
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, studios)
}

func (h *Handler) getStudio(c *gin.Context) {
	studio, err := h.svc.GetStudio(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, studio)
}

func (h *Handler) updateStudio(c *gin.Context) {
	var req UpdateStudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	actorID, _ := actorFrom(c)
	studio, err := h.svc.UpdateStudio(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, studio)
}

func (h *Handler) addBlackout(c *gin.Context) {
	var req BlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	actorID, _ := actorFrom(c)
	studio, err := h.svc.AddBlackout(c.Request.Context(), actorID, c.Param("id"), req.Date)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, studio)
}

func (h *Handler) removeBlackout(c *gin.Context) {
	actorID, _ := actorFrom(c)
	studio, err := h.svc.RemoveBlackout(c.Request.Context(), actorID, c.Param("id"), c.Param("date"))
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, studio)
}

func (h *Handler) listEngineers(c *gin.Context) {
	engineers, err := h.svc.ListEngineers(c.Request.Context())
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, engineers)
}

func (h *Handler) approveEngineer(c *gin.Context) {
	var req EngineerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	actorID, _ := actorFrom(c)
	studio, err := h.svc.ApproveEngineer(c.Request.Context(), actorID, c.Param("id"), req.EngineerID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, studio)
}

func (h *Handler) removeEngineer(c *gin.Context) {
	actorID, _ := actorFrom(c)
	studio, err := h.svc.RemoveEngineer(c.Request.Context(), actorID, c.Param("id"), c.Param("engineerId"))
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, studio)
}

func (h *Handler) createRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	actorID, _ := actorFrom(c)
	room, err := h.svc.CreateRoom(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, room)
}

func (h *Handler) updateRoom(c *gin.Context) {
	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	actorID, _ := actorFrom(c)
	room, err := h.svc.UpdateRoom(c.Request.Context(), actorID, c.Param("id"), req)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, room)
}

func (h *Handler) deleteRoom(c *gin.Context) {
	actorID, _ := actorFrom(c)
	if err := h.svc.DeleteRoom(c.Request.Context(), actorID, c.Param("id")); err != nil {
		response.DomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setDefaultRoom(c *gin.Context) {
	actorID, _ := actorFrom(c)
	if err := h.svc.SetDefaultRoom(c.Request.Context(), actorID, c.Param("id"), c.Param("roomId")); err != nil {
		response.DomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
