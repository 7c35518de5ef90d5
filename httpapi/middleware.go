package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const (
	actorHeader     = "X-User-ID"
	actorContextKey = "actor_id"
)

// requestLogger writes one logrus entry per request
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := log.Fields{
				"method":   c.Request().Method,
				"path":     c.Path(),
				"status":   c.Response().Status,
				"latency":  time.Since(start).String(),
				"remoteIP": c.RealIP(),
			}
			if actorID, ok := c.Get(actorContextKey).(int64); ok {
				fields["actorID"] = actorID
			}

			entry := log.WithFields(fields)
			if c.Response().Status >= http.StatusInternalServerError {
				entry.Warn("HTTP request")
			} else {
				entry.Debug("HTTP request")
			}
			return nil
		}
	}
}

// requireActor reads the acting user from the X-User-ID header
func requireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(actorHeader)
		if raw == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing " + actorHeader + " header"})
		}
		actorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || actorID <= 0 {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid " + actorHeader + " header"})
		}
		c.Set(actorContextKey, actorID)
		return next(c)
	}
}

// actor returns the user set by requireActor
func actor(c echo.Context) int64 {
	id, _ := c.Get(actorContextKey).(int64)
	return id
}

// idParam parses a positive integer path parameter
func idParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
