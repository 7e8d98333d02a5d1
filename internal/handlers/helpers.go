package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
)

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, httperr.HTTPError{
			Success: false,
			Message: "Invalid request body",
			Errors:  httperr.ErrorBody{Code: "invalid_request", Detail: err.Error()},
		})
		return false
	}
	return true
}

// pageBaseURL is the absolute URL pagination links point at.
func pageBaseURL(c *gin.Context, public string) string {
	if public != "" {
		return public + c.Request.URL.Path
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.Path
}
