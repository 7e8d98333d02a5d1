package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/hospital-device-booking/internal/domain/user"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httpresp"
	"github.com/BruksfildServices01/hospital-device-booking/internal/middleware"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/query"
	ucBooking "github.com/BruksfildServices01/hospital-device-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	create  *ucBooking.CreateBooking
	decide  *ucBooking.DecideBooking
	request *ucBooking.RequestEdit
	resolve *ucBooking.ResolveEditRequest
	update  *ucBooking.UpdateBooking
	get     *ucBooking.GetBooking
	list    *ucBooking.ListBookings

	complete *ucBooking.CompleteBooking
	schedule *ucBooking.DeviceSchedule

	publicURL string
	dev       bool
}

type BookingUseCases struct {
	Create  *ucBooking.CreateBooking
	Decide  *ucBooking.DecideBooking
	Request *ucBooking.RequestEdit
	Resolve *ucBooking.ResolveEditRequest
	Update  *ucBooking.UpdateBooking
	Get     *ucBooking.GetBooking
	List    *ucBooking.ListBookings

	Complete *ucBooking.CompleteBooking
	Schedule *ucBooking.DeviceSchedule
}

func NewBookingHandler(uc BookingUseCases, publicURL string, dev bool) *BookingHandler {
	return &BookingHandler{
		create:    uc.Create,
		decide:    uc.Decide,
		request:   uc.Request,
		resolve:   uc.Resolve,
		update:    uc.Update,
		get:       uc.Get,
		list:      uc.List,
		complete:  uc.Complete,
		schedule:  uc.Schedule,
		publicURL: publicURL,
		dev:       dev,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateBookingRequest struct {
	DeviceID  uint   `json:"deviceId" binding:"required"`
	UserID    *uint  `json:"userId"`
	CodeBA    string `json:"codeBA" binding:"required"`
	NameBA    string `json:"nameBA" binding:"required"`
	UsageTime string `json:"usageTime" binding:"required"`
	UsageDay  string `json:"usageDay" binding:"required"`
	Priority  string `json:"priority"`
	Purpose   string `json:"purpose"`
}

type UpdateBookingRequest struct {
	DeviceID  *uint   `json:"deviceId"`
	CodeBA    *string `json:"codeBA"`
	NameBA    *string `json:"nameBA"`
	UsageTime *string `json:"usageTime"`
	UsageDay  *string `json:"usageDay"`
	Priority  *string `json:"priority"`
	Purpose   *string `json:"purpose"`
	Status    *string `json:"status"`
	Note      *string `json:"note"`
}

type DecideBookingRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type EditRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ResolveEditRequestRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}

// ======================================================
// WRITES
// ======================================================

func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	// admins may book on behalf of someone else
	userID := middleware.CurrentUserID(c)
	if req.UserID != nil && *req.UserID != userID {
		if middleware.CurrentRole(c) != user.RoleAdmin {
			httperr.ForbiddenResponse(c, "forbidden", "You can only create bookings for yourself")
			return
		}
		userID = *req.UserID
	}

	b, err := h.create.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		DeviceID:  req.DeviceID,
		UserID:    userID,
		CodeBA:    req.CodeBA,
		NameBA:    req.NameBA,
		UsageTime: req.UsageTime,
		UsageDay:  req.UsageDay,
		Priority:  req.Priority,
		Purpose:   req.Purpose,
		Origin:    auditOrigin(c),
	})
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	httpresp.Created(c, "Booking created", b)
}

func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.update.Execute(c.Request.Context(), ucBooking.UpdateBookingInput{
		BookingID: id,
		EditorID:  middleware.CurrentUserID(c),
		Fields: ucBooking.UpdateFields{
			DeviceID:  req.DeviceID,
			CodeBA:    req.CodeBA,
			NameBA:    req.NameBA,
			UsageTime: req.UsageTime,
			UsageDay:  req.UsageDay,
			Priority:  req.Priority,
			Purpose:   req.Purpose,
			Status:    req.Status,
			Note:      req.Note,
		},
		Origin: auditOrigin(c),
	})
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	httpresp.OK(c, "Booking updated", gin.H{
		"booking":         out.Booking,
		"changes":         out.Changes,
		"cascadeRejected": out.CascadeRejected,
	})
}

func (h *BookingHandler) Decide(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req DecideBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.decide.Execute(c.Request.Context(), ucBooking.DecideBookingInput{
		BookingID: id,
		Status:    req.Status,
		Note:      req.Note,
		Origin:    auditOrigin(c),
	})
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	httpresp.OK(c, "Booking "+out.Booking.Status, gin.H{
		"booking":         out.Booking,
		"cascadeRejected": out.CascadeRejected,
	})
}

func (h *BookingHandler) RequestEdit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req EditRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.request.Execute(c.Request.Context(), ucBooking.RequestEditInput{
		BookingID:   id,
		RequesterID: middleware.CurrentUserID(c),
		Reason:      req.Reason,
		Origin:      auditOrigin(c),
	})
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	httpresp.OK(c, "Edit request sent", b)
}

func (h *BookingHandler) ResolveEditRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ResolveEditRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.resolve.Execute(c.Request.Context(), ucBooking.ResolveEditRequestInput{
		BookingID:  id,
		ApproverID: middleware.CurrentUserID(c),
		Action:     req.Action,
		Note:       req.Note,
		Origin:     auditOrigin(c),
	})
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	httpresp.OK(c, "Edit request "+b.EditRequest.Status, b)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	b, err := h.complete.Execute(c.Request.Context(), ucBooking.CompleteBookingInput{
		BookingID: id,
		Origin:    auditOrigin(c),
	})
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	httpresp.OK(c, "Booking completed", b)
}

// ======================================================
// READS
// ======================================================

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	b, err := h.get.Execute(c.Request.Context(), id, ucBooking.Viewer{
		ID:   middleware.CurrentUserID(c),
		Role: middleware.CurrentRole(c),
	})
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	httpresp.OK(c, "Booking retrieved", b)
}

func (h *BookingHandler) listInput(c *gin.Context) ucBooking.ListInput {
	return ucBooking.ListInput{
		Params:  c.Request.URL.Query(),
		BaseURL: pageBaseURL(c, h.publicURL),
	}
}

func (h *BookingHandler) page(c *gin.Context, res *query.Result[models.DeviceBooking], err error) {
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}
	httpresp.Page(c, "Bookings retrieved", res.Data, res.Meta)
}

func (h *BookingHandler) List(c *gin.Context) {
	res, err := h.list.All(c.Request.Context(), h.listInput(c))
	h.page(c, res, err)
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	res, err := h.list.ForUser(c.Request.Context(), middleware.CurrentUserID(c), h.listInput(c))
	h.page(c, res, err)
}

func (h *BookingHandler) ListForDevice(c *gin.Context) {
	id, ok := parseID(c, "deviceId")
	if !ok {
		return
	}
	res, err := h.list.ForDevice(c.Request.Context(), id, h.listInput(c))
	h.page(c, res, err)
}

func (h *BookingHandler) ListForUser(c *gin.Context) {
	id, ok := parseID(c, "userId")
	if !ok {
		return
	}
	if middleware.CurrentRole(c) != user.RoleAdmin && id != middleware.CurrentUserID(c) {
		httperr.ForbiddenResponse(c, "forbidden", "You can only list your own bookings")
		return
	}
	res, err := h.list.ForUser(c.Request.Context(), id, h.listInput(c))
	h.page(c, res, err)
}

// Schedule answers GET /devices/:deviceId/schedule?day=YYYY-MM-DD.
func (h *BookingHandler) Schedule(c *gin.Context) {
	id, ok := parseID(c, "deviceId")
	if !ok {
		return
	}

	out, err := h.schedule.Execute(c.Request.Context(), id, c.Query("day"))
	if err != nil {
		httperr.Respond(c, err, h.dev)
		return
	}

	httpresp.OK(c, "Schedule retrieved", out)
}
