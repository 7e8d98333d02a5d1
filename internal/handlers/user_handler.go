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
	"github.com/BruksfildServices01/hospital-device-booking/internal/infra/repository"
	"github.com/BruksfildServices01/hospital-device-booking/internal/middleware"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/query"
	"github.com/BruksfildServices01/hospital-device-booking/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

// UserHandler is the admin-only account management surface.
type UserHandler struct {
	db        *gorm.DB
	audit     audit.Recorder
	format    *audit.Formatter
	publicURL string
	dev       bool
}

func NewUserHandler(db *gorm.DB, rec audit.Recorder, format *audit.Formatter, publicURL string, dev bool) *UserHandler {
	return &UserHandler{db: db, audit: rec, format: format, publicURL: publicURL, dev: dev}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Role  string `json:"role"`
	Group string `json:"group"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Group    *string `json:"group"`
	IsActive *bool   `json:"isActive"`
}

// ======================================================
// READS
// ======================================================

func (h *UserHandler) List(c *gin.Context) {
	res, err := query.New[models.User](h.db, repository.UserSchema, c.Request.URL.Query()).
		WithBaseURL(pageBaseURL(c, h.publicURL)).
		Filter().
		Sort().
		Select().
		Paginate().
		Exec(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}
	httpresp.Page(c, "Users retrieved", res.Data, res.Meta)
}

func (h *UserHandler) load(c *gin.Context) (*models.User, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var u models.User
	if err := h.db.First(&u, id).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return nil, false
	}
	return &u, true
}

func (h *UserHandler) Get(c *gin.Context) {
	u, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, "User retrieved", u)
}

// ======================================================
// WRITES
// ======================================================

// newPassword returns a generated plaintext password and its hash.
func newPassword() (string, string, error) {
	password, err := auth.GeneratePassword(auth.GeneratedPasswordLength)
	if err != nil {
		return "", "", err
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return "", "", err
	}
	return password, hashed, nil
}

func (h *UserHandler) emailTaken(email string, exceptID uint) (bool, error) {
	var count int64
	err := h.db.Model(&models.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error
	return count > 0, err
}

// updateUser stores updates on u and carries a rename over to the
// accountName copied onto the user's bookings.
func updateUser(db *gorm.DB, u *models.User, before audit.Snapshot, updates map[string]any) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(u).Updates(updates).Error; err != nil {
			return err
		}
		if name, _ := before.Get("name"); name == u.Name {
			return nil
		}
		return tx.Model(&models.DeviceBooking{}).
			Where("user_id = ?", u.ID).
			Update("account_name", u.Name).Error
	})
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	email := validators.NormalizeEmail(req.Email)
	if !validators.IsEmailSyntaxValid(email) {
		httperr.BadRequest(c, "invalid_email", "Email address is not valid")
		return
	}

	role := user.Role(req.Role)
	if role == "" {
		role = user.RoleUser
	}
	if !role.Valid() {
		httperr.BadRequest(c, "invalid_role", "role must be admin, approver or user")
		return
	}

	taken, err := h.emailTaken(email, 0)
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}
	if taken {
		httperr.Respond(c, httperr.Conflict("email_taken", "Email is already registered"), h.dev)
		return
	}

	password, hashed, err := newPassword()
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	u := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         string(role),
		Group:        strings.TrimSpace(req.Group),
		IsActive:     true,
	}
	if u.Group == "" {
		u.Group = "default"
	}

	if err := h.db.Create(&u).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	h.audit.Record(audit.Prepare(
		auditOrigin(c),
		"user_created",
		audit.CreatedMessage(c.GetString(middleware.ContextUserName), "user"),
		audit.Detail{
			ResourceType: user.Entity,
			ResourceID:   u.ID,
			Details:      h.format.Info(user.Entity, user.Snapshot(&u)),
		},
	))

	httpresp.Created(c, "User created", gin.H{"user": u, "password": password})
}

func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	u, ok := h.load(c)
	if !ok {
		return
	}
	before := user.Snapshot(u)

	if req.Role != nil {
		role := user.Role(*req.Role)
		if !role.Valid() {
			httperr.BadRequest(c, "invalid_role", "role must be admin, approver or user")
			return
		}
		u.Role = string(role)
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Group != nil {
		u.Group = strings.TrimSpace(*req.Group)
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	updates := map[string]any{
		"name":       u.Name,
		"role":       u.Role,
		"group_name": u.Group,
		"is_active":  u.IsActive,
	}
	// a deactivated account loses its session
	if !u.IsActive {
		updates["refresh_token"] = nil
	}
	if err := updateUser(h.db, u, before, updates); err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	changes := audit.Diff(before, user.Snapshot(u), user.AuditedFields)
	h.audit.Record(audit.Prepare(
		auditOrigin(c),
		"user_updated",
		audit.UpdatedMessage(c.GetString(middleware.ContextUserName), "user"),
		audit.Detail{
			ResourceType: user.Entity,
			ResourceID:   u.ID,
			Details:      h.format.Update(user.Entity, changes),
		},
	))

	httpresp.OK(c, "User updated", u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	u, ok := h.load(c)
	if !ok {
		return
	}
	if u.ID == middleware.CurrentUserID(c) {
		httperr.BadRequest(c, "cannot_delete_self", "You cannot delete your own account")
		return
	}

	var bookings int64
	if err := h.db.Model(&models.DeviceBooking{}).Where("user_id = ?", u.ID).Count(&bookings).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}
	if bookings > 0 {
		httperr.Respond(c, httperr.Conflict("user_has_bookings", "Deactivate the account instead; it owns bookings"), h.dev)
		return
	}

	if err := h.db.Delete(u).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	h.audit.Record(audit.Prepare(
		auditOrigin(c),
		"user_deleted",
		audit.DeletedMessage(c.GetString(middleware.ContextUserName), "user"),
		audit.Detail{
			ResourceType: user.Entity,
			ResourceID:   u.ID,
			Details:      h.format.Info(user.Entity, user.Snapshot(u)),
		},
	))

	httpresp.OK(c, "User deleted", nil)
}

// ResetPassword replaces the password with a generated one and returns it
// once.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	u, ok := h.load(c)
	if !ok {
		return
	}

	password, hashed, err := newPassword()
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	if err := h.db.Model(u).Updates(map[string]any{
		"password_hash": hashed,
		"refresh_token": nil,
	}).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	h.audit.Record(audit.Prepare(
		auditOrigin(c),
		"user_password_reset",
		c.GetString(middleware.ContextUserName)+" reset the password of "+u.Name,
		audit.Detail{ResourceType: user.Entity, ResourceID: u.ID, Details: map[string]any{}},
	))

	httpresp.OK(c, "Password reset", gin.H{"userId": u.ID, "password": password})
}
