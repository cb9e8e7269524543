package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"statbench/app"
	"statbench/internal"
)

// Server exposes the workbench over HTTP
type Server struct {
	router         *gin.Engine
	workbench      *app.WorkbenchService
	maxUploadBytes int64
	logger         *internal.Logger
}

// NewServer builds the router with every route registered
func NewServer(workbench *app.WorkbenchService, maxUploadBytes int64) *Server {
	s := &Server{
		router:         gin.New(),
		workbench:      workbench,
		maxUploadBytes: maxUploadBytes,
		logger:         internal.DefaultLogger.With("component", "api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(RequestLogger(s.logger))
	if s.maxUploadBytes > 0 {
		s.router.MaxMultipartMemory = s.maxUploadBytes
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")

	datasets := api.Group("/datasets")
	datasets.POST("", s.handleUpload)
	datasets.GET("", s.handleListDatasets)
	datasets.DELETE("/:id", s.handleDeleteDataset)
	datasets.GET("/:id/columns", s.handleColumns)

	datasets.POST("/:id/describe", s.handleDescribe)
	datasets.POST("/:id/normality", s.handleNormality)
	datasets.POST("/:id/group-test", s.handleGroupTest)
	datasets.POST("/:id/paired", s.handlePaired)
	datasets.POST("/:id/one-sample", s.handleOneSample)
	datasets.POST("/:id/posthoc", s.handlePostHoc)
	datasets.POST("/:id/twoway", s.handleTwoWay)
	datasets.POST("/:id/correlation", s.handleCorrelation)
	datasets.POST("/:id/independence", s.handleIndependence)
	datasets.POST("/:id/linear", s.handleLinear)
	datasets.POST("/:id/logistic", s.handleLogistic)

	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
}

// Handler returns the router for use with an http.Server or httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server on addr
func (s *Server) Start(addr string) error {
	s.logger.Info("listening on %s", addr)
	return s.router.Run(addr)
}
