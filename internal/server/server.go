// Package server is the web front end: a small upload page plus JSON
// endpoints for job progress and result download. All heavy work runs in
// background jobs so the browser only ever polls.
package server

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/bpdmkit/partnerfile/internal/bpdm"
	"github.com/bpdmkit/partnerfile/internal/config"
	"github.com/bpdmkit/partnerfile/internal/job"
)

//go:embed web/index.html
var webFS embed.FS

// maxUploadSize bounds request bodies; upload files are far smaller.
const maxUploadSize = "16M"

// Server wires the HTTP routes to the codec and the API client.
type Server struct {
	echo   *echo.Echo
	cfg    config.Config
	client *bpdm.Client
	jobs   *job.Registry
	log    *zap.Logger
}

// New builds the server. The registry is owned by the server and closed on
// Shutdown.
func New(cfg config.Config, creds config.Credentials, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		echo:   echo.New(),
		cfg:    cfg,
		client: bpdm.New(cfg, creds, log),
		jobs:   job.NewRegistry(0, log),
		log:    log,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.BodyLimit(maxUploadSize))

	tmpl := template.Must(template.ParseFS(webFS, "web/index.html"))
	s.echo.Renderer = &renderer{tmpl: tmpl}

	s.echo.GET("/", s.index)
	s.echo.POST("/upload", s.upload)
	s.echo.POST("/sharing-state", s.sharingState)
	s.echo.POST("/download/:stage", s.download)
	s.echo.GET("/progress/:id", s.progress)
	s.echo.GET("/result/:id", s.result)
	return s
}

// Start blocks serving HTTP on the configured listen address.
func (s *Server) Start() error {
	s.log.Info("listening", zap.String("addr", s.cfg.Listen))
	return s.echo.Start(s.cfg.Listen)
}

// Shutdown stops the HTTP server and the job registry.
func (s *Server) Shutdown(ctx context.Context) error {
	s.jobs.Close()
	return s.echo.Shutdown(ctx)
}

type renderer struct {
	tmpl *template.Template
}

func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}
