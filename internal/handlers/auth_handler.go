package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	"github.com/BruksfildServices01/hospital-device-booking/internal/auth"
	"github.com/BruksfildServices01/hospital-device-booking/internal/config"
	"github.com/BruksfildServices01/hospital-device-booking/internal/domain/user"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httpresp"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
	issuer *auth.Issuer
	audit  audit.Recorder
	format *audit.Formatter
}

func NewAuthHandler(
	db *gorm.DB,
	cfg *config.Config,
	issuer *auth.Issuer,
	rec audit.Recorder,
	format *audit.Formatter,
) *AuthHandler {
	return &AuthHandler{db: db, config: cfg, issuer: issuer, audit: rec, format: format}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Group    string `json:"group"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type sessionResponse struct {
	*auth.Pair
	User *models.User `json:"user"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	email := validators.NormalizeEmail(req.Email)
	if !validators.IsEmailSyntaxValid(email) {
		httperr.BadRequest(c, "invalid_email", "Email address is not valid")
		return
	}
	if h.config.CheckEmailDomain && !validators.IsEmailDomainValid(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not seem to exist")
		return
	}

	var count int64
	if err := h.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		httperr.Respond(c, err, h.config.IsDev())
		return
	}
	if count > 0 {
		httperr.Respond(c, httperr.Conflict("email_taken", "Email is already registered"), h.config.IsDev())
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Could not process password")
		return
	}

	u := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         string(user.RoleUser),
		Group:        strings.TrimSpace(req.Group),
		IsActive:     true,
	}
	if u.Group == "" {
		u.Group = "default"
	}

	if err := h.db.Create(&u).Error; err != nil {
		httperr.Respond(c, err, h.config.IsDev())
		return
	}

	pair, err := h.startSession(&u)
	if err != nil {
		httperr.Respond(c, err, h.config.IsDev())
		return
	}

	h.audit.Record(audit.Prepare(
		originFor(c, u.ID, u.Name, u.Role),
		"user_registered",
		audit.CreatedMessage(u.Name, "account"),
		audit.Detail{
			ResourceType: user.Entity,
			ResourceID:   u.ID,
			Details:      h.format.Info(user.Entity, user.Snapshot(&u)),
		},
	))

	httpresp.Created(c, "Account created", sessionResponse{Pair: pair, User: &u})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var u models.User
	if err := h.db.Where("email = ?", validators.NormalizeEmail(req.Email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Email or password is incorrect")
			return
		}
		httperr.Respond(c, err, h.config.IsDev())
		return
	}

	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		httperr.Unauthorized(c, "invalid_credentials", "Email or password is incorrect")
		return
	}
	if !u.IsActive {
		httperr.ForbiddenResponse(c, "user_inactive", "Account is disabled")
		return
	}

	pair, err := h.startSession(&u)
	if err != nil {
		httperr.Respond(c, err, h.config.IsDev())
		return
	}

	h.audit.Record(audit.Prepare(
		originFor(c, u.ID, u.Name, u.Role),
		"user_login",
		u.Name+" logged in",
		nil,
	))

	httpresp.OK(c, "Logged in", sessionResponse{Pair: pair, User: &u})
}

// Refresh rotates the refresh token. A token that is not the current one
// ends the session.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	claims, err := h.issuer.Parse(req.RefreshToken, auth.TokenRefresh)
	if err != nil {
		httperr.Unauthorized(c, "invalid_refresh_token", "Refresh token is invalid or expired")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		httperr.Unauthorized(c, "invalid_refresh_token", "Refresh token is invalid or expired")
		return
	}

	var u models.User
	if err := h.db.First(&u, userID).Error; err != nil || !u.IsActive {
		httperr.Unauthorized(c, "invalid_refresh_token", "Refresh token is invalid or expired")
		return
	}

	pair, err := h.issuer.Issue(&u)
	if err != nil {
		httperr.Respond(c, err, h.config.IsDev())
		return
	}

	res := h.db.Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", u.ID, req.RefreshToken).
		Update("refresh_token", pair.RefreshToken)
	if res.Error != nil {
		httperr.Respond(c, res.Error, h.config.IsDev())
		return
	}
	if res.RowsAffected == 0 {
		if err := h.endSession(u.ID); err != nil {
			log.Error().Err(err).Uint("user_id", u.ID).Msg("end session after refresh token reuse")
		}
		httperr.Unauthorized(c, "invalid_refresh_token", "Refresh token was already used")
		return
	}

	httpresp.OK(c, "Token refreshed", pair)
}

// Logout drops the session that owns the refresh token. Unknown tokens
// are not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if !bindJSON(c, &req) {
		return
	}

	var u models.User
	err := h.db.Where("refresh_token = ?", req.RefreshToken).First(&u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpresp.OK(c, "Logged out", nil)
		return
	case err != nil:
		httperr.Respond(c, err, h.config.IsDev())
		return
	}

	if err := h.endSession(u.ID); err != nil {
		httperr.Respond(c, err, h.config.IsDev())
		return
	}

	h.audit.Record(audit.Prepare(originFor(c, u.ID, u.Name, u.Role), "user_logout", u.Name+" logged out", nil))

	httpresp.OK(c, "Logged out", nil)
}

// --------- Session ---------

func (h *AuthHandler) startSession(u *models.User) (*auth.Pair, error) {
	pair, err := h.issuer.Issue(u)
	if err != nil {
		return nil, err
	}
	if err := h.db.Model(&models.User{}).
		Where("id = ?", u.ID).
		Update("refresh_token", pair.RefreshToken).Error; err != nil {
		return nil, err
	}
	return pair, nil
}

func (h *AuthHandler) endSession(userID uint) error {
	return h.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", nil).Error
}
