package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ukaji3/exgrade-go/pkg/exgrade"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/metrics"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/scoring"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/template"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/transcript"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	workbookField   = "workbook"
	metricsSource   = "http"

	// Concept questions asked before the workbook task.
	questionAbsoluteRef = "$A$1 meaning"
	questionPivot       = "Pivot use"
)

// limitBody caps request bodies at the configured upload size.
func (s *Server) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	c.Next()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := template.Write(&buf, s.cfg.Layout); err != nil {
		s.logger.Error("failed to build template", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build template"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="task1_template.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) handleGrade(c *gin.Context) {
	if !s.parseUpload(c) {
		return
	}
	report, ok := s.gradeUpload(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// interviewResponse is returned by POST /v1/interviews.
type interviewResponse struct {
	Interview *transcript.Interview `json:"interview"`
}

func (s *Server) handleInterview(c *gin.Context) {
	ctx := c.Request.Context()
	if !s.parseUpload(c) {
		return
	}

	iv := transcript.New(s.now())
	q1 := c.PostForm("q1")
	q2 := c.PostForm("q2")
	iv.Answer(questionAbsoluteRef, q1, s.now())
	iv.Answer(questionPivot, q2, s.now())

	concept, err := s.scorer.Score(ctx, scoring.KindConcept, q1)
	if err != nil {
		s.logger.ErrorContext(ctx, "concept scoring failed", "interview", iv.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "scoring failed"})
		return
	}
	iv.SetConceptFeedback(concept)

	report, ok := s.gradeUpload(c)
	if !ok {
		return
	}

	workbook, err := s.scorer.Score(ctx, scoring.KindWorkbook, report)
	if err != nil {
		s.logger.ErrorContext(ctx, "workbook scoring failed", "interview", iv.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "scoring failed"})
		return
	}
	iv.Finish(report, workbook, s.now())

	if err := s.transcripts.Append(ctx, iv); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist interview", "interview", iv.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist interview"})
		return
	}

	s.logger.InfoContext(ctx, "interview completed",
		"interview", iv.ID, "pass", report.Pass, "fused_score", *iv.FusedScore)
	c.JSON(http.StatusCreated, interviewResponse{Interview: iv})
}

// parseUpload reads the multipart form. Bodies over MaxUploadBytes get 413,
// other malformed forms 400. On failure it writes the response and returns false.
func (s *Server) parseUpload(c *gin.Context) bool {
	if c.Request.ContentLength > s.cfg.MaxUploadBytes {
		s.rejectTooLarge(c)
		return false
	}
	if _, err := c.MultipartForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.rejectTooLarge(c)
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return false
	}
	return true
}

func (s *Server) rejectTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("upload exceeds %d bytes", s.cfg.MaxUploadBytes),
	})
}

// gradeUpload grades the uploaded workbook field. On failure it writes the
// error response and returns false.
func (s *Server) gradeUpload(c *gin.Context) (*models.Report, bool) {
	fh, err := c.FormFile(workbookField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing workbook upload"})
		return nil, false
	}

	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return nil, false
	}
	defer file.Close()

	start := time.Now()
	report, err := exgrade.GradeReader(file, s.cfg.Grade)
	metrics.Observe(metricsSource, report, time.Since(start))
	if err != nil {
		s.logger.WarnContext(c.Request.Context(), "rejected upload", "filename", fh.Filename, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, exgrade.ErrInvalidFormat) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return report, true
}
