package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	"github.com/BruksfildServices01/hospital-device-booking/internal/middleware"
)

// auditOrigin describes the caller and request for audit events. Public
// routes leave the actor empty and audit.Prepare fills the placeholders.
func auditOrigin(c *gin.Context) audit.Origin {
	var actor audit.Actor
	if id := middleware.CurrentUserID(c); id != 0 {
		actor = audit.Actor{
			ID:   strconv.FormatUint(uint64(id), 10),
			Name: c.GetString(middleware.ContextUserName),
			Role: c.GetString(middleware.ContextUserRole),
		}
	}

	return audit.Origin{
		Actor: actor,
		Context: audit.RequestContext{
			Method:    c.Request.Method,
			Endpoint:  c.Request.URL.Path,
			Location:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		},
	}
}

// originFor is used before the actor is authenticated, e.g. on login.
func originFor(c *gin.Context, id uint, name, role string) audit.Origin {
	o := auditOrigin(c)
	o.Actor = audit.Actor{
		ID:   strconv.FormatUint(uint64(id), 10),
		Name: name,
		Role: role,
	}
	return o
}
