package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/internal/logger"
	"github.com/reportkit/go-docfill/internal/service"
	"github.com/reportkit/go-docfill/pkg/docfill"
)

const (
	imageFieldPrefix = "image."

	// ReportIDHeader carries the engine's id of the generated report.
	ReportIDHeader = "X-Report-ID"
	// WarningsHeader carries the number of report warnings.
	WarningsHeader = "X-Report-Warnings"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{
		Code:      code,
		Message:   message,
		RequestID: logger.RequestID(c),
	}})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// generateConfigured produces the report described by the service
// configuration.
func (s *Server) generateConfigured(c *gin.Context) {
	report, err := s.reports.GenerateConfigured(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.send(c, report)
}

// generateUpload produces a report from a multipart form: a template file,
// a payload file or field, and image.<key> files.
func (s *Server) generateUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		s.fail(c, fmt.Errorf("%w: %w", service.ErrInvalidInput, err))
		return
	}

	in := service.Inputs{Images: make(map[string]docfill.Image)}
	in.Format = c.Query("format")
	if v := form.Value["format"]; len(v) > 0 && v[0] != "" {
		in.Format = v[0]
	}

	if in.Template, err = readFormFile(form, "template"); err != nil {
		s.fail(c, err)
		return
	}
	if in.Template == nil {
		s.fail(c, fmt.Errorf("%w: template file is required", service.ErrInvalidInput))
		return
	}

	if in.Payload, err = readFormFile(form, "payload"); err != nil {
		s.fail(c, err)
		return
	}
	if in.Payload == nil {
		if v := form.Value["payload"]; len(v) > 0 {
			in.Payload = []byte(v[0])
		}
	}

	for field, headers := range form.File {
		key, ok := strings.CutPrefix(field, imageFieldPrefix)
		if !ok || key == "" || len(headers) == 0 {
			continue
		}
		data, err := readFileHeader(headers[0])
		if err != nil {
			s.fail(c, err)
			return
		}
		in.Images[key] = docfill.Image{Name: path.Base(headers[0].Filename), Data: data}
	}

	report, err := s.reports.Generate(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.send(c, report)
}

// readFormFile returns the first file of field, or nil when there is none.
func readFormFile(form *multipart.Form, field string) ([]byte, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	return readFileHeader(headers[0])
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
	}
	return data, nil
}

func (s *Server) send(c *gin.Context, report docfill.Report) {
	log := logger.FromGin(c)
	for _, w := range report.Warnings {
		log.Warn("report warning", zap.String("report_id", report.RequestID), zap.Error(w))
	}

	filename := "report." + report.Format.Extension()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header(ReportIDHeader, report.RequestID)
	c.Header(WarningsHeader, strconv.Itoa(len(report.Warnings)))
	c.Data(http.StatusOK, report.Format.ContentType(), report.Output)
}

// fail writes the error response for err. Internal errors are logged and
// answered with a generic message.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		abortError(c, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "request body exceeds maximum allowed size")
	case errors.Is(err, service.ErrInvalidInput):
		abortError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case docfill.StageOf(err) == docfill.StageLoad:
		abortError(c, http.StatusUnprocessableEntity, "INVALID_TEMPLATE", err.Error())
	default:
		logger.FromGin(c).Error("report generation failed", zap.Error(err))
		abortError(c, http.StatusInternalServerError, "GENERATION_FAILED", "report generation failed")
	}
}
