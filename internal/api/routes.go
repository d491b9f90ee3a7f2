package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qr-phishing-detector/backend/internal/analyzer"
	"qr-phishing-detector/backend/internal/features"
	"qr-phishing-detector/backend/internal/qr"
	"qr-phishing-detector/backend/internal/urlnorm"
)

const defaultMaxUploadBytes = 8 << 20

// Config defines server behaviour.
type Config struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server wires the HTTP and websocket handlers around one analyzer.
type Server struct {
	analyzer       *analyzer.Analyzer
	lexicon        features.Lexicon
	allowedOrigins []string
	maxUploadBytes int64
}

// NewServer constructs the API server.
func NewServer(a *analyzer.Analyzer, lex features.Lexicon, cfg Config) *Server {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &Server{
		analyzer:       a,
		lexicon:        lex,
		allowedOrigins: cfg.AllowedOrigins,
		maxUploadBytes: maxUpload,
	}
}

// Router configures gin routes.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.POST("/analyze-url", s.handleAnalyzeURL)
		api.POST("/analyze-qr", s.handleAnalyzeQR)
		api.POST("/analyze-frame", s.handleAnalyzeFrame)
		api.GET("/scan/stream", s.handleScanStream)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ConfigResponse{
		MLSource:   s.analyzer.MLSource(),
		CVEnabled:  s.analyzer.CVEnabled(),
		CVSource:   s.analyzer.CVSource(),
		Keywords:   len(s.lexicon.Keywords),
		Brands:     len(s.lexicon.Brands),
		Shorteners: len(s.lexicon.Shorteners),
	})
}

func (s *Server) handleAnalyzeURL(c *gin.Context) {
	var req AnalyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, errors.New("url is required"))
		return
	}

	result, err := s.analyzer.AnalyzeURL(c.Request.Context(), req.URL)
	if err != nil {
		s.renderScanError(c, err)
		return
	}
	c.JSON(http.StatusOK, ScanFromResult(result))
}

func (s *Server) handleAnalyzeQR(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		fileHeader, err = c.FormFile("file")
	}
	if err != nil {
		s.renderError(c, http.StatusBadRequest, errors.New("qr image file is required"))
		return
	}
	if fileHeader.Size > s.maxUploadBytes {
		s.renderError(c, http.StatusRequestEntityTooLarge,
			fmt.Errorf("image exceeds the %d byte limit", s.maxUploadBytes))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	defer src.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(src, s.maxUploadBytes+1))
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	if int64(len(imageBytes)) > s.maxUploadBytes {
		s.renderError(c, http.StatusRequestEntityTooLarge,
			fmt.Errorf("image exceeds the %d byte limit", s.maxUploadBytes))
		return
	}

	result, err := s.analyzer.AnalyzeFrame(c.Request.Context(), imageBytes, strings.TrimSpace(c.PostForm("decoded_url")))
	if err != nil {
		s.renderScanError(c, err)
		return
	}
	c.JSON(http.StatusOK, ScanFromResult(result))
}

func (s *Server) handleAnalyzeFrame(c *gin.Context) {
	var req FrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, errors.New("frame is required"))
		return
	}

	imageBytes, err := decodeFrame(req.Frame, s.maxUploadBytes)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	result, err := s.analyzer.AnalyzeFrame(c.Request.Context(), imageBytes, strings.TrimSpace(req.DecodedURL))
	if err != nil {
		s.renderScanError(c, err)
		return
	}
	c.JSON(http.StatusOK, ScanFromResult(result))
}

// decodeFrame accepts either a bare base64 string or a data URL as produced
// by canvas.toDataURL.
func decodeFrame(frame string, maxBytes int64) ([]byte, error) {
	payload := strings.TrimSpace(frame)
	if idx := strings.Index(payload, ";base64,"); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+len(";base64,"):]
	}
	if payload == "" {
		return nil, errors.New("frame is empty")
	}
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes {
		return nil, fmt.Errorf("frame exceeds the %d byte limit", maxBytes)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("frame is not valid base64")
	}
	return decoded, nil
}

// renderScanError maps analyzer errors onto HTTP statuses. Degraded signals
// never reach this path; only unusable input does.
func (s *Server) renderScanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, urlnorm.ErrInvalidURL):
		s.renderError(c, http.StatusBadRequest, err)
	case errors.Is(err, qr.ErrBadImage):
		s.renderError(c, http.StatusBadRequest, err)
	case errors.Is(err, qr.ErrNoQR):
		s.renderError(c, http.StatusUnprocessableEntity, err)
	default:
		logrus.WithError(err).Error("scan failed")
		s.renderError(c, http.StatusInternalServerError, err)
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
