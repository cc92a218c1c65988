// Package ws exposes the estimator over a websocket endpoint so training
// infrastructure can query bounds without shelling out to the CLI. Each
// ESTIMATE message is answered with a REPORT (or an ERROR); connections
// are stateless and may carry any number of requests.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gridbound.ai/internal/envconf"
	"gridbound.ai/internal/estimator"
	"gridbound.ai/internal/gridmap"
	"gridbound.ai/internal/protocol"
)

// RunSink receives every completed estimation for logging/indexing.
type RunSink interface {
	RecordRun(runID, tag string, width, height int, rep estimator.Report)
}

type Server struct {
	log  *log.Logger
	sink RunSink // may be nil

	upgrader websocket.Upgrader
}

func NewServer(logger *log.Logger, sink RunSink) *Server {
	return &Server{
		log:  logger,
		sink: sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.handleMessage(conn, msg)
		}
	}
}

func (s *Server) handleMessage(conn *websocket.Conn, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		s.writeError(conn, protocol.ErrProtoBadRequest, "not a protocol message")
		return
	}
	if base.Type != protocol.TypeEstimate {
		s.writeError(conn, protocol.ErrProtoBadRequest, "expected ESTIMATE")
		return
	}
	if base.ProtocolVersion != protocol.Version {
		s.writeError(conn, protocol.ErrProtoBadRequest, "bad protocol_version")
		return
	}

	var req protocol.EstimateMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		s.writeError(conn, protocol.ErrProtoBadRequest, "malformed ESTIMATE")
		return
	}

	grid, err := gridmap.FromRows(req.Map)
	if err != nil {
		s.writeError(conn, protocol.ErrBadMap, err.Error())
		return
	}
	cfg, err := envconf.Parse(req.Config, grid)
	if err != nil {
		s.writeError(conn, protocol.ErrBadConfig, err.Error())
		return
	}

	rep := estimator.New(cfg, grid).Report()
	runID := uuid.NewString()
	if s.sink != nil {
		s.sink.RecordRun(runID, req.RunTag, grid.Width(), grid.Height(), rep)
	}

	s.writeJSON(conn, protocol.ReportMsg{
		Type:            protocol.TypeReport,
		ProtocolVersion: protocol.Version,
		RunID:           runID,
		RunTag:          req.RunTag,
		Total:           rep.Total,
		Report:          rep,
	})
}

func (s *Server) writeError(conn *websocket.Conn, code, message string) {
	s.writeJSON(conn, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
}

func (s *Server) writeJSON(conn *websocket.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("ws: marshal: %v", err)
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		s.log.Printf("ws: write: %v", err)
	}
}
