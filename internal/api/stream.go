package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// StreamRequest is one client message on the live scan socket. Type is "url"
// for a raw URL payload or "frame" for a base64 camera frame.
type StreamRequest struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// StreamResponse is one server message on the live scan socket.
type StreamResponse struct {
	Type      string        `json:"type"`
	Result    *ScanResponse `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}

// handleScanStream runs a request/response scan loop over one websocket
// connection. Camera clients push frames continuously; each frame is scanned
// independently and answered in order.
func (s *Server) handleScanStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}
	client := &wsClient{conn: conn}
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("scan websocket connected")
	defer conn.Close()

	for {
		var req StreamRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Warn("scan websocket unexpected close")
			} else {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("scan websocket closed")
			}
			return
		}

		resp := s.handleStreamRequest(c, req)
		if err := client.writeJSON(resp); err != nil {
			logrus.WithError(err).Warn("scan websocket write failed")
			return
		}
	}
}

func (s *Server) handleStreamRequest(c *gin.Context, req StreamRequest) StreamResponse {
	resp := StreamResponse{Timestamp: time.Now().UTC()}

	switch req.Type {
	case "url":
		result, err := s.analyzer.AnalyzeURL(c.Request.Context(), req.Data)
		if err != nil {
			resp.Type = "error"
			resp.Error = err.Error()
			return resp
		}
		scan := ScanFromResult(result)
		resp.Type = "result"
		resp.Result = &scan
	case "frame":
		imageBytes, err := decodeFrame(req.Data, s.maxUploadBytes)
		if err != nil {
			resp.Type = "error"
			resp.Error = err.Error()
			return resp
		}
		result, err := s.analyzer.AnalyzeImage(c.Request.Context(), imageBytes)
		if err != nil {
			resp.Type = "error"
			resp.Error = err.Error()
			return resp
		}
		scan := ScanFromResult(result)
		resp.Type = "result"
		resp.Result = &scan
	default:
		resp.Type = "error"
		resp.Error = "unknown message type, expected url or frame"
	}
	return resp
}
