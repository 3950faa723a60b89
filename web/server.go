// Package web serves the two-pane storage browser: a filterable tree on the
// left, actions and the QR pane on the right.
package web

import (
	"embed"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/template/html/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/JoeSaf/StorageBuckets/app"
)

//go:embed views/*
var viewsfs embed.FS

type Options struct {
	Version string
	// TusDir holds partial resumable uploads. Resumable uploads are off when
	// empty or when the app is read-only.
	TusDir string
}

type Server struct {
	app  *app.App
	opts Options

	fiber *fiber.App
	// Tracks in-flight file operations
	ops sync.WaitGroup
}

func New(a *app.App, opts Options) (*Server, error) {
	views, err := fs.Sub(viewsfs, "views")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	s := &Server{app: a, opts: opts}
	s.fiber = fiber.New(fiber.Config{
		AppName:      "StorageBuckets " + opts.Version,
		Views:        engine,
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	a.OnCommand(observeCommand)

	s.fiber.Use(localOnly)
	s.routes()
	if err := s.setupTusUpload(); err != nil {
		return nil, err
	}
	return s, nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Errorf("Error: %v", err)
		return c.Status(code).SendString("Internal Server Error")
	}
	return c.Status(code).SendString(err.Error())
}

func (s *Server) routes() {
	s.fiber.Get("/", s.handleIndex)

	api := s.fiber.Group("/api")
	api.Get("/tree", s.handleTree)
	api.Post("/buckets", s.writable, s.handleCreateBucket)
	api.Get("/buckets", s.handleListBuckets)
	api.Delete("/buckets/:name", s.writable, s.handleDeleteBucket)
	api.Post("/download", s.handleDownload)
	api.Get("/qr", s.handleQR)
	api.Get("/log", s.handleLog)

	// File streaming and zip download of a whole area
	s.fiber.Get("/file", s.handleFileStream)
	s.fiber.Get("/zip", s.handleZipDownload)

	s.fiber.Get("/metrics", handleMetrics(s.app))

	// WebSocket upgrade middleware
	s.fiber.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.fiber.Get("/ws/tree", websocket.New(s.handleWebSocket))
}

// localOnly refuses requests that are not addressed to a loopback host or
// that come from a page of another origin. No CORS headers are sent, so other
// sites cannot read responses either.
func localOnly(c *fiber.Ctx) error {
	host := string(c.Request().Host())
	if !loopbackHost(host) {
		return fiber.NewError(fiber.StatusForbidden, "Host not allowed")
	}
	if origin := c.Get(fiber.HeaderOrigin); origin != "" {
		u, err := url.Parse(origin)
		if err != nil || u.Host != host {
			return fiber.NewError(fiber.StatusForbidden, "Cross-origin request refused")
		}
	}
	return c.Next()
}

func loopbackHost(hostport string) bool {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		host = hostport
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// writable refuses the request when the app is read-only.
func (s *Server) writable(c *fiber.Ctx) error {
	if s.app.ReadOnly() {
		return fiber.NewError(fiber.StatusForbidden, app.ErrReadOnly.Error())
	}
	return c.Next()
}

// track registers a file operation for graceful shutdown.
func (s *Server) track() func() {
	s.ops.Add(1)
	return s.ops.Done
}

func (s *Server) Fiber() *fiber.App {
	return s.fiber
}

func (s *Server) Listen(addr string) error {
	log.Infof("Server starting on %s", addr)
	return s.fiber.Listen(addr)
}

// Shutdown waits for in-progress operations and stops the server.
func (s *Server) Shutdown() error {
	log.Info("Waiting for in-progress operations...")
	s.ops.Wait()
	log.Info("All file operations completed")
	return s.fiber.Shutdown()
}
