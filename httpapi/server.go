package httpapi

import (
	"context"
	"errors"
	"net/http"

	"cashgame/domain/interfaces"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// Server is the JSON API in front of the ledger
type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer builds the echo instance and registers every route
func NewServer(ledger interfaces.LedgerService, addr string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestLogger())
	e.Use(middleware.Recover())

	h := &handler{ledger: ledger}
	registerRoutes(e, h)

	return &Server{echo: e, addr: addr}
}

func registerRoutes(e *echo.Echo, h *handler) {
	e.GET("/healthz", h.health)

	v1 := e.Group("/v1")
	v1.POST("/users", h.registerUser)

	v1.GET("/sessions", h.listSessions)
	v1.GET("/sessions/:id", h.getSession)
	v1.GET("/sessions/code/:code", h.getSessionByCode)
	v1.GET("/sessions/:id/settlement", h.getSettlement)

	v1.POST("/sessions", h.createSession, requireActor)
	v1.POST("/sessions/join", h.joinSession, requireActor)
	v1.POST("/sessions/:id/buy-ins", h.submitBuyIn, requireActor)
	v1.POST("/sessions/:id/cash-outs", h.recordCashOut, requireActor)
	v1.POST("/sessions/:id/close", h.closeSession, requireActor)

	v1.POST("/buy-ins/:id/approve", h.approveBuyIn, requireActor)
	v1.POST("/buy-ins/:id/reject", h.rejectBuyIn, requireActor)
	v1.PATCH("/buy-ins/:id", h.editBuyIn, requireActor)
	v1.DELETE("/buy-ins/:id", h.deleteBuyIn, requireActor)

	v1.PATCH("/cash-outs/:id", h.editCashOut, requireActor)
	v1.DELETE("/cash-outs/:id", h.deleteCashOut, requireActor)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.WithField("addr", s.addr).Info("HTTP API listening")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
