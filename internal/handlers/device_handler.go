package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	"github.com/BruksfildServices01/hospital-device-booking/internal/domain/device"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httpresp"
	"github.com/BruksfildServices01/hospital-device-booking/internal/infra/repository"
	"github.com/BruksfildServices01/hospital-device-booking/internal/middleware"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/query"
)

type DeviceHandler struct {
	db        *gorm.DB
	audit     audit.Recorder
	format    *audit.Formatter
	publicURL string
	dev       bool
}

func NewDeviceHandler(db *gorm.DB, rec audit.Recorder, format *audit.Formatter, publicURL string, dev bool) *DeviceHandler {
	return &DeviceHandler{db: db, audit: rec, format: format, publicURL: publicURL, dev: dev}
}

type DeviceRequest struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

func (h *DeviceHandler) List(c *gin.Context) {
	res, err := query.New[models.Device](h.db, repository.DeviceSchema, c.Request.URL.Query()).
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
	httpresp.Page(c, "Devices retrieved", res.Data, res.Meta)
}

func (h *DeviceHandler) load(c *gin.Context) (*models.Device, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	var d models.Device
	if err := h.db.First(&d, id).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return nil, false
	}
	return &d, true
}

func (h *DeviceHandler) Get(c *gin.Context) {
	d, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, "Device retrieved", d)
}

func (h *DeviceHandler) codeTaken(code *string, exceptID uint) (bool, error) {
	if code == nil {
		return false, nil
	}
	var count int64
	err := h.db.Model(&models.Device{}).
		Where("code = ? AND id <> ?", *code, exceptID).
		Count(&count).Error
	return count > 0, err
}

// apply copies the request onto d; an empty code clears it.
func (req DeviceRequest) apply(d *models.Device) {
	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			d.Code = nil
		} else {
			d.Code = &code
		}
	}
	if req.Name != nil {
		d.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		d.Location = strings.TrimSpace(*req.Location)
	}
	if req.Description != nil {
		d.Description = strings.TrimSpace(*req.Description)
	}
}

func (h *DeviceHandler) Create(c *gin.Context) {
	var req DeviceRequest
	if !bindJSON(c, &req) {
		return
	}

	var d models.Device
	req.apply(&d)
	if d.Name == "" {
		httperr.BadRequest(c, "missing_fields", "name is required")
		return
	}

	taken, err := h.codeTaken(d.Code, 0)
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}
	if taken {
		httperr.Respond(c, httperr.Conflict("device_code_taken", "Another device uses this code"), h.dev)
		return
	}

	if err := h.db.Create(&d).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	h.audit.Record(audit.Prepare(
		auditOrigin(c),
		"device_created",
		audit.CreatedMessage(c.GetString(middleware.ContextUserName), "device"),
		audit.Detail{
			ResourceType: device.Entity,
			ResourceID:   d.ID,
			Details:      h.format.Info(device.Entity, device.Snapshot(&d)),
		},
	))

	httpresp.Created(c, "Device created", d)
}

func (h *DeviceHandler) Update(c *gin.Context) {
	var req DeviceRequest
	if !bindJSON(c, &req) {
		return
	}

	d, ok := h.load(c)
	if !ok {
		return
	}
	before := device.Snapshot(d)

	req.apply(d)
	if d.Name == "" {
		httperr.BadRequest(c, "missing_fields", "name cannot be empty")
		return
	}

	taken, err := h.codeTaken(d.Code, d.ID)
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}
	if taken {
		httperr.Respond(c, httperr.Conflict("device_code_taken", "Another device uses this code"), h.dev)
		return
	}

	if err := h.db.Save(d).Error; err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	// keep the denormalized name on bookings in step
	if name, _ := before.Get("name"); name != d.Name {
		if err := h.db.Model(&models.DeviceBooking{}).
			Where("device_id = ?", d.ID).
			Update("device_name", d.Name).Error; err != nil {
			httperr.Respond(c, err, h.dev)
			return
		}
	}

	changes := audit.Diff(before, device.Snapshot(d), device.AuditedFields)
	h.audit.Record(audit.Prepare(
		auditOrigin(c),
		"device_updated",
		audit.UpdatedMessage(c.GetString(middleware.ContextUserName), "device"),
		audit.Detail{
			ResourceType: device.Entity,
			ResourceID:   d.ID,
			Details:      h.format.Update(device.Entity, changes),
		},
	))

	httpresp.OK(c, "Device updated", d)
}

func (h *DeviceHandler) Delete(c *gin.Context) {
	d, ok := h.load(c)
	if !ok {
		return
	}

	if err := deleteDevice(h.db, d.ID); err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	h.audit.Record(audit.Prepare(
		auditOrigin(c),
		"device_deleted",
		audit.DeletedMessage(c.GetString(middleware.ContextUserName), "device"),
		audit.Detail{
			ResourceType: device.Entity,
			ResourceID:   d.ID,
			Details:      h.format.Info(device.Entity, device.Snapshot(d)),
		},
	))

	httpresp.OK(c, "Device deleted", nil)
}

// deleteDevice removes a device that no booking has ever referenced.
// Bookings are kept for the audit trail, so any booking blocks the
// delete. The device row lock orders this against booking writes.
func deleteDevice(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var d models.Device
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&d, id).Error; err != nil {
			return err
		}

		var live, total int64
		if err := tx.Model(&models.DeviceBooking{}).
			Where("device_id = ? AND status IN ?", id, device.BlockingStatuses).
			Count(&live).Error; err != nil {
			return err
		}
		if live > 0 {
			return httperr.Validation("device_in_use", "The device still has pending or approved bookings")
		}
		if err := tx.Model(&models.DeviceBooking{}).
			Where("device_id = ?", id).
			Count(&total).Error; err != nil {
			return err
		}
		if total > 0 {
			return httperr.Validation("device_in_use", "The device has booking history; it cannot be deleted")
		}

		return tx.Delete(&d).Error
	})
}
