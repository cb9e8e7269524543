package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"statbench/app"
	"statbench/internal/errors"
	"statbench/models"
)

// bind decodes the JSON body into req and writes a 400 when it fails
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return false
	}
	return true
}

func respond(c *gin.Context, out *app.Outcome, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("dataset")
	if err != nil {
		respondError(c, errors.InvalidInput("no file uploaded in the dataset field"))
		return
	}
	defer file.Close()

	if s.maxUploadBytes > 0 && header.Size > s.maxUploadBytes {
		respondError(c, errors.InvalidInput(fmt.Sprintf("file size (%.1f MB) exceeds the %.0f MB limit",
			float64(header.Size)/(1<<20), float64(s.maxUploadBytes)/(1<<20))))
		return
	}

	info, err := s.workbench.Datasets().Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}
	s.logger.Info("loaded dataset %s (%s, %d rows, %s)", info.ID, info.Name, info.Rows, info.Fingerprint.Short())
	c.JSON(http.StatusCreated, info)
}

func (s *Server) handleListDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"datasets": s.workbench.Datasets().List()})
}

func (s *Server) handleDeleteDataset(c *gin.Context) {
	if err := s.workbench.Datasets().Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, errors.FromDomain(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleColumns(c *gin.Context) {
	columns, err := s.workbench.Columns(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": columns})
}

func (s *Server) handleDescribe(c *gin.Context) {
	var req app.DescribeRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.Describe(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handleNormality(c *gin.Context) {
	var req app.NormalityRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.Normality(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handleGroupTest(c *gin.Context) {
	var req app.GroupTestRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.GroupTest(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handlePaired(c *gin.Context) {
	var req app.PairedRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.Paired(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handleOneSample(c *gin.Context) {
	var req app.OneSampleRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.OneSample(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handlePostHoc(c *gin.Context) {
	var req app.PostHocRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.PostHoc(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handleTwoWay(c *gin.Context) {
	var req app.TwoWayRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.TwoWay(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handleCorrelation(c *gin.Context) {
	var req app.CorrelationRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.Correlation(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handleIndependence(c *gin.Context) {
	var req app.IndependenceRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.Independence(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handleLinear(c *gin.Context) {
	var req app.LinearRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.Linear(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handleLogistic(c *gin.Context) {
	var req app.LogisticRequest
	if !bind(c, &req) {
		return
	}
	req.DatasetID = c.Param("id")
	out, err := s.workbench.Logistic(c.Request.Context(), req)
	respond(c, out, err)
}

func (s *Server) handleListRuns(c *gin.Context) {
	var filter models.RunFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	runs, err := s.workbench.Runs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidInput("invalid run id"))
		return
	}
	run, err := s.workbench.Run(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
