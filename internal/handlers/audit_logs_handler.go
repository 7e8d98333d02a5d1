package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httpresp"
	"github.com/BruksfildServices01/hospital-device-booking/internal/infra/repository"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/query"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db        *gorm.DB
	publicURL string
	dev       bool
}

func NewAuditLogsHandler(db *gorm.DB, publicURL string, dev bool) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, publicURL: publicURL, dev: dev}
}

// List accepts the common filter grammar, e.g.
// ?action=device_booking_approved&createdAt[gte]=2024-06-01T00:00:00Z
func (h *AuditLogsHandler) List(c *gin.Context) {
	res, err := query.New[models.AuditTrail](h.db, repository.AuditSchema, c.Request.URL.Query()).
		WithBaseURL(pageBaseURL(c, h.publicURL)).
		Filter().
		Sort().
		Paginate().
		Exec(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}
	httpresp.Page(c, "Audit trail retrieved", res.Data, res.Meta)
}

func (h *AuditLogsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var row models.AuditTrail
	if err := h.db.First(&row, id).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}
	httpresp.OK(c, "Audit entry retrieved", row)
}
