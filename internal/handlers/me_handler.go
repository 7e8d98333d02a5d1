package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	"github.com/BruksfildServices01/hospital-device-booking/internal/auth"
	"github.com/BruksfildServices01/hospital-device-booking/internal/domain/user"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httpresp"
	"github.com/BruksfildServices01/hospital-device-booking/internal/middleware"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

type MeHandler struct {
	db     *gorm.DB
	audit  audit.Recorder
	format *audit.Formatter
	dev    bool
}

func NewMeHandler(db *gorm.DB, rec audit.Recorder, format *audit.Formatter, dev bool) *MeHandler {
	return &MeHandler{db: db, audit: rec, format: format, dev: dev}
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Group *string `json:"group"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func profile(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
		"group": u.Group,
	}
}

func (h *MeHandler) current(c *gin.Context) (*models.User, bool) {
	var u models.User
	if err := h.db.First(&u, middleware.CurrentUserID(c)).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return nil, false
	}
	return &u, true
}

func (h *MeHandler) GetMe(c *gin.Context) {
	u, ok := h.current(c)
	if !ok {
		return
	}
	httpresp.OK(c, "Profile retrieved", profile(u))
}

func (h *MeHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	u, ok := h.current(c)
	if !ok {
		return
	}
	before := user.Snapshot(u)

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.BadRequest(c, "invalid_name", "Name cannot be empty")
			return
		}
		u.Name = name
	}
	if req.Group != nil {
		u.Group = strings.TrimSpace(*req.Group)
	}

	updates := map[string]any{"name": u.Name, "group_name": u.Group}
	if err := updateUser(h.db, u, before, updates); err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	changes := audit.Diff(before, user.Snapshot(u), user.AuditedFields)
	if !changes.Empty() {
		h.audit.Record(audit.Prepare(
			auditOrigin(c),
			"user_profile_updated",
			audit.UpdatedMessage(u.Name, "profile"),
			audit.Detail{
				ResourceType: user.Entity,
				ResourceID:   u.ID,
				Details:      h.format.Update(user.Entity, changes),
			},
		))
	}

	httpresp.OK(c, "Profile updated", profile(u))
}

func (h *MeHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	u, ok := h.current(c)
	if !ok {
		return
	}

	if !auth.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		httperr.BadRequest(c, "invalid_password", "Current password is incorrect")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not process password")
		return
	}

	if err := h.db.Model(u).Updates(map[string]any{
		"password_hash": hashed,
		"refresh_token": nil,
	}).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	h.audit.Record(audit.Prepare(auditOrigin(c), "user_password_changed", u.Name+" changed their password", nil))

	httpresp.OK(c, "Password changed, please log in again", nil)
}
