package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sprite-ai/agvis/internal/annotate"
	"github.com/sprite-ai/agvis/internal/detect"
	"github.com/sprite-ai/agvis/internal/pixel"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev; restrict in production
	},
}

// WebSocket message types from client.
const (
	wsMsgLoadPair     = "load_pair"
	wsMsgAnnotate     = "annotate"
	wsMsgAutoAnnotate = "auto_annotate"
	wsMsgFinish       = "finish"
)

// WebSocket message types to client.
const (
	wsMsgDiff      = "diff"
	wsMsgAnnotated = "annotated"
	wsMsgSummary   = "summary"
	wsMsgError     = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsLoadPair is the payload for "load_pair" messages.
type wsLoadPair struct {
	Baseline string `json:"baseline"` // base64 PNG
	Current  string `json:"current"`  // base64 PNG
	Resize   bool   `json:"resize,omitempty"`
}

// wsAnnotateMsg is the payload for "annotate" messages. The spec renders
// over the session's current image.
type wsAnnotateMsg struct {
	Spec json.RawMessage `json:"spec"`
}

// wsSummaryResponse is sent when the session is finished.
type wsSummaryResponse struct {
	Pairs       int `json:"pairs"`
	Annotations int `json:"annotations"`
}

// observeSession holds the state for one WebSocket observation session:
// the most recently loaded pair and its diff result.
type observeSession struct {
	current     *pixel.Buffer
	result      *detect.Result
	pairs       int
	annotations int
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	session := &observeSession{}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			sendWSError(conn, "invalid message format")
			continue
		}

		switch msg.Type {
		case wsMsgLoadPair:
			handleWSLoadPair(conn, session, msg.Data)
		case wsMsgAnnotate:
			handleWSAnnotate(conn, session, msg.Data)
		case wsMsgAutoAnnotate:
			handleWSAutoAnnotate(conn, session)
		case wsMsgFinish:
			sendWSMessage(conn, wsMsgSummary, wsSummaryResponse{
				Pairs:       session.pairs,
				Annotations: session.annotations,
			})
		default:
			sendWSError(conn, "unknown message type: "+msg.Type)
		}
	}
}

func handleWSLoadPair(conn *websocket.Conn, session *observeSession, data json.RawMessage) {
	var req wsLoadPair
	if err := json.Unmarshal(data, &req); err != nil {
		sendWSError(conn, "invalid load_pair data")
		return
	}

	before, err := decodeImage(req.Baseline)
	if err != nil {
		sendWSError(conn, "baseline: "+err.Error())
		return
	}
	after, err := decodeImage(req.Current)
	if err != nil {
		sendWSError(conn, "current: "+err.Error())
		return
	}

	resized := false
	if before.W != after.W || before.H != after.H {
		if !req.Resize {
			sendWSError(conn, fmt.Sprintf("image sizes differ (%dx%d vs %dx%d); set resize",
				before.W, before.H, after.W, after.H))
			return
		}
		after = pixel.Resize(after, before.W, before.H)
		resized = true
	}

	res, err := detect.Run(before, after, detect.DefaultConfig())
	if err != nil {
		sendWSError(conn, err.Error())
		return
	}

	session.current = after
	session.result = res
	session.pairs++

	sendWSMessage(conn, wsMsgDiff, diffResponse{
		PercentChanged: res.Stats.PercentChanged,
		AvgDiffPercent: res.Stats.AvgDiffPercent,
		Size:           sizeJSON{Width: res.Stats.Width, Height: res.Stats.Height},
		Resized:        resized,
		ChangeRegions:  res.Regions,
		RegionCount:    len(res.Regions),
		AnnotateSpec:   annotate.AutoSpec(res.Regions),
	})
}

func handleWSAnnotate(conn *websocket.Conn, session *observeSession, data json.RawMessage) {
	if session.current == nil {
		sendWSError(conn, "no pair loaded")
		return
	}

	var req wsAnnotateMsg
	if err := json.Unmarshal(data, &req); err != nil || len(req.Spec) == 0 {
		sendWSError(conn, "invalid annotate data")
		return
	}

	spec, err := annotate.ParseSpec(req.Spec)
	if err != nil {
		sendWSError(conn, err.Error())
		return
	}
	renderSessionSpec(conn, session, spec)
}

// handleWSAutoAnnotate renders the boxes the last diff found, without the
// client having to echo the spec back.
func handleWSAutoAnnotate(conn *websocket.Conn, session *observeSession) {
	if session.result == nil {
		sendWSError(conn, "no pair loaded")
		return
	}
	renderSessionSpec(conn, session, annotate.AutoSpec(session.result.Regions))
}

func renderSessionSpec(conn *websocket.Conn, session *observeSession, spec *annotate.Spec) {
	res, err := annotate.Apply(session.current, spec)
	if err != nil {
		sendWSError(conn, err.Error())
		return
	}
	encoded, err := encodeImage(res.Image)
	if err != nil {
		sendWSError(conn, err.Error())
		return
	}

	session.annotations++
	sendWSMessage(conn, wsMsgAnnotated, annotateResponse{
		Image:       encoded,
		Size:        sizeJSON{Width: res.Image.W, Height: res.Image.H},
		Annotations: res.Meta,
	})
}

func sendWSMessage(conn *websocket.Conn, msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("ws marshal: %v", err)
		return
	}
	msg := wsMessage{Type: msgType, Data: raw}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("ws write: %v", err)
	}
}

func sendWSError(conn *websocket.Conn, errMsg string) {
	sendWSMessage(conn, wsMsgError, map[string]string{"message": errMsg})
}
