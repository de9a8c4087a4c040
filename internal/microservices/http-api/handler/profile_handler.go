package handler

import (
	"context"
	"net/http"

	"libraryhub/internal/microservices/http-api/dto"
	"libraryhub/internal/microservices/http-api/middleware"
	"libraryhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	svc service.LedgerService
}

func NewProfileHandler(svc service.LedgerService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Me returns the caller's profile and the role the ledger will enforce.
func (h *ProfileHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.KeyUserID)
	if userID == "" {
		respondError(c, service.ErrAuthRequired)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	caller, profile, err := h.svc.ResolveCaller(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.ProfileResponse{ID: caller.UserID, Role: caller.Role, Email: c.GetString(middleware.KeyEmail)}
	if profile != nil {
		resp.FullName = profile.FullName
		resp.Phone = profile.Phone
		if profile.Email != "" {
			resp.Email = profile.Email
		}
	}
	c.JSON(http.StatusOK, resp)
}
