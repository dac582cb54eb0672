package http_server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/pivolan/ridership_clipper/pipeline"
	"github.com/pivolan/ridership_clipper/winsor"
	"github.com/rs/zerolog"
)

type ClipRequest struct {
	Lower      string `form:"lower" validate:"omitempty,numeric"`
	Upper      string `form:"upper" validate:"omitempty,numeric"`
	DateColumn string `form:"date_column"`
	Columns    string `form:"columns"`
	Boundaries string `form:"boundaries"`
}

type EraResponse struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// options overlays the request fields on top of the server defaults
func (req *ClipRequest) options(defaults *pipeline.Options) (*pipeline.Options, error) {
	opts := defaults.Clone()
	if req.Lower != "" {
		v, err := strconv.ParseFloat(req.Lower, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: lower: %v", winsor.ErrInvalidArgument, err)
		}
		opts.Lower = v
	}
	if req.Upper != "" {
		v, err := strconv.ParseFloat(req.Upper, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: upper: %v", winsor.ErrInvalidArgument, err)
		}
		opts.Upper = v
	}
	if req.DateColumn != "" {
		opts.DateColumn = req.DateColumn
	}
	if req.Columns != "" {
		opts.Columns = nil
		for _, c := range strings.Split(req.Columns, ",") {
			if c = strings.TrimSpace(c); c != "" {
				opts.Columns = append(opts.Columns, c)
			}
		}
	}
	if req.Boundaries != "" {
		boundaries, err := winsor.ParseBoundaries(req.Boundaries, opts.DateLayout)
		if err != nil {
			return nil, err
		}
		opts.Boundaries = boundaries
	}
	return opts, nil
}

func (s *HTTPServer) ListEras(c *CustomContext) error {
	eras := make([]EraResponse, 0, len(s.Options.Boundaries))
	for _, b := range s.Options.Boundaries {
		eras = append(eras, EraResponse{
			Label: b.Label,
			Start: b.Start.Format(s.Options.DateLayout),
			End:   b.End.Format(s.Options.DateLayout),
		})
	}
	return c.JSON(http.StatusOK, eras)
}

func isClientError(err error) bool {
	return errors.Is(err, winsor.ErrInvalidArgument) ||
		errors.Is(err, dataset.ErrColumnNotFound) ||
		errors.Is(err, dataset.ErrNotNumeric) ||
		errors.Is(err, dataset.ErrNotTime) ||
		errors.Is(err, dataset.ErrInvalidData)
}

// saveUpload stores the multipart file under uploadDir/<request id>/
func (s *HTTPServer) saveUpload(c *CustomContext) (string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing file: "+err.Error())
	}
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dir := filepath.Join(s.UploadDir, c.RequestID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, filepath.Base(header.Filename))
	dst, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return filePath, nil
}

// Clip takes a CSV upload and answers with the clipped CSV
func (s *HTTPServer) Clip(c *CustomContext) error {
	var req ClipRequest
	if err := ValidateRequest(c, &req); err != nil {
		return err
	}
	opts, err := req.options(s.Options)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	filePath, err := s.saveUpload(c)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return c.InternalError(err, "error saving upload")
	}
	defer os.RemoveAll(filepath.Dir(filePath))

	result, err := pipeline.RunFile(filePath, opts)
	if err != nil {
		if isClientError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.InternalError(err, "error clipping upload")
	}

	var buf bytes.Buffer
	if err := result.WriteCSV(&buf); err != nil {
		return c.InternalError(err, "error writing csv")
	}
	zerolog.Ctx(c.Request().Context()).Info().
		Str("file", filepath.Base(filePath)).
		Int("rows_in", result.Raw.Len()).
		Int("rows_out", result.Clipped.Len()).
		Msg("upload clipped")

	c.Response().Header().Set("X-Rows-In", strconv.Itoa(result.Raw.Len()))
	c.Response().Header().Set("X-Rows-Out", strconv.Itoa(result.Clipped.Len()))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="clipped.csv"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
