package server

import (
	"net/http"

	"cosmo-agent/internal/handler"
	authmw "cosmo-agent/internal/middleware"
	"cosmo-agent/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	echo         *echo.Echo
	storeHandler *handler.StoreHandler
	token        string
}

func NewServer(syncService service.SyncService, serverToken string, logger *log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = logger

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	s := &Server{
		echo:         e,
		storeHandler: handler.NewStoreHandler(syncService),
		token:        serverToken,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// cycle reports carry backend error strings
	api.GET("/status", s.storeHandler.GetStatus, authmw.TokenAuth(s.token))

	// -------- store --------
	store := api.Group("/store", authmw.TokenAuth(s.token))
	store.POST("/sync", s.storeHandler.Sync)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
