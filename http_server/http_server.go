package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pivolan/ridership_clipper/gologger"
	"github.com/pivolan/ridership_clipper/pipeline"
	"github.com/rs/zerolog"
)

var logger = gologger.NewLogger()

type HTTPServer struct {
	Echo      *echo.Echo
	Options   *pipeline.Options
	UploadDir string
}

type CustomValidator struct {
	validator *validator.Validate
}

// NewHTTPServer builds the routes without listening
func NewHTTPServer(opts *pipeline.Options, uploadDir string) *HTTPServer {
	s := &HTTPServer{
		Echo:      echo.New(),
		Options:   opts,
		UploadDir: uploadDir,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.Use(CreateReqContext)
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.CORS())
	s.Echo.Validator = &CustomValidator{validator: validator.New()}

	// technical - no auth
	s.Echo.GET("/hc", s.HealthCheck)

	s.Echo.GET("/eras", ccHandler(s.ListEras))
	s.Echo.POST("/clip", ccHandler(s.Clip))
	return s
}

// StartHTTPServer listens on port in the background
func StartHTTPServer(port string, opts *pipeline.Options, uploadDir string) (*HTTPServer, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return nil, fmt.Errorf("error creating tcp listener: %w", err)
	}
	s := NewHTTPServer(opts, uploadDir)
	s.Echo.Listener = listener
	go func() {
		logger.Info().Msg("starting http server on " + listener.Addr().String())
		err := s.Echo.Start("")
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start http server, exiting")
		}
	}()
	return s, nil
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		stop := time.Since(start)
		logger := zerolog.Ctx(c.Request().Context())
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		cl := req.Header.Get(echo.HeaderContentLength)
		if cl == "" {
			cl = "0"
		}
		logger.Debug().Str("method", req.Method).Str("remote_ip", c.RealIP()).Str("req_uri", req.RequestURI).Str("handler_path", c.Path()).Str("path", p).Int("status", res.Status).Int64("latency_ns", int64(stop)).Str("protocol", req.Proto).Str("bytes_in", cl).Int64("bytes_out", res.Size).Msg("req received")
		return nil
	}
}
