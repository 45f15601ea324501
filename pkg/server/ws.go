package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/observability"
	"github.com/matzehuels/orgtower/pkg/scene"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10

	wsOutboxSize = 32
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// Message types sent by the server.
const (
	MsgSession  = "session"  // First message; carries the session ID
	MsgSnapshot = "snapshot" // Current layout
	MsgDetail   = "detail"   // Hover detail
	MsgError    = "error"
	MsgPong     = "pong"
)

// Inbound is a control message from the client. Type selects the event:
//
//	mode          Mode
//	active-only   Active
//	zoom-in, zoom-out, reset
//	pan           DX, DY
//	wheel         Delta at X, Y
//	resize        Width, Height
//	drag-start    ID
//	drag-move     ID to X, Y (screen space)
//	drag-end      ID
//	hover         ID
//	snapshot, ping
type Inbound struct {
	Type   string  `json:"type"`
	ID     string  `json:"id,omitempty"`
	Mode   string  `json:"mode,omitempty"`
	Active bool    `json:"active,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Outbound is a message to the client.
type Outbound struct {
	Type    string        `json:"type"`
	Session string        `json:"session,omitempty"`
	Layout  *graph.Layout `json:"layout,omitempty"`
	Detail  *scene.Detail `json:"detail,omitempty"`
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
}

// session is one live websocket scene.
type session struct {
	id     string
	scene  *scene.Scene
	conn   *websocket.Conn
	cancel context.CancelFunc
	opened time.Time

	frames chan graph.Layout // Latest snapshot only
	outbox chan Outbound
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.sessionConfig(r)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := &session{
		id:     uuid.NewString(),
		conn:   conn,
		cancel: cancel,
		opened: time.Now(),
		frames: make(chan graph.Layout, 1),
		outbox: make(chan Outbound, wsOutboxSize),
	}
	logger := s.logger.With("session", sess.id)
	sess.scene = scene.New(cfg,
		scene.WithLogger(logger),
		scene.WithMeasurer(s.measurer),
		scene.WithContext(ctx))
	defer sess.scene.Close()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(Outbound{Type: MsgSession, Session: sess.id}); err != nil {
		return
	}

	s.register(ctx, sess)
	defer s.unregister(ctx, sess)
	logger.Info("session opened", "mode", cfg.Mode, "active_only", cfg.ActiveOnly)

	unsubscribe := sess.scene.Subscribe(sess.offer)
	defer unsubscribe()
	sess.scene.SetRows(s.Rows())
	sess.offer(sess.scene.Snapshot())

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		sess.writeLoop(ctx)
	}()

	for {
		var in Inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("session read failed", "error", err)
			}
			cancel()
			<-writerDone
			return
		}
		if err := sess.dispatch(in); err != nil {
			sess.push(errorMessage(err))
		}
	}
}

// sessionConfig derives the initial scene of a session from the server
// settings and the query parameters mode and active.
func (s *Server) sessionConfig(r *http.Request) (scene.Config, error) {
	cfg := s.cfg
	q := r.URL.Query()
	if v := q.Get("mode"); v != "" {
		m, err := scene.ParseMode(v)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidMode, err, "invalid mode %q", v)
		}
		cfg.Mode = m
	}
	if v := q.Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.New(errors.ErrCodeInvalidInput, "invalid active flag %q", v)
		}
		cfg.ActiveOnly = b
	}
	return cfg, nil
}

func (s *Server) register(ctx context.Context, sess *session) {
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	observability.Session().OnSessionOpen(ctx, sess.id)
}

func (s *Server) unregister(ctx context.Context, sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	d := time.Since(sess.opened)
	observability.Session().OnSessionClose(ctx, sess.id, d)
	s.logger.Info("session closed", "session", sess.id, "duration", d.Round(time.Millisecond))
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.cancel()
		_ = sess.conn.Close()
	}
}

// offer replaces any unsent snapshot by l. It never blocks, since the
// scene calls it with its lock held.
func (sess *session) offer(l graph.Layout) {
	select {
	case sess.frames <- l:
		return
	default:
	}
	select {
	case <-sess.frames:
	default:
	}
	select {
	case sess.frames <- l:
	default:
	}
}

// push queues a reply, dropping it when the client is not reading.
func (sess *session) push(out Outbound) {
	select {
	case sess.outbox <- out:
	default:
	}
}

func (sess *session) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()

	write := func(v any) bool {
		if err := sess.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
			return false
		}
		return sess.conn.WriteJSON(v) == nil
	}
	for {
		select {
		case <-ctx.Done():
			return
		case out := <-sess.outbox:
			if !write(out) {
				return
			}
		case l := <-sess.frames:
			if !write(Outbound{Type: MsgSnapshot, Layout: &l}) {
				return
			}
		case <-ticker.C:
			if err := sess.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch applies one control message to the scene. Snapshots follow
// from the scene subscription; only replies are pushed here.
func (sess *session) dispatch(in Inbound) error {
	sc := sess.scene
	switch t := strings.ToLower(strings.TrimSpace(in.Type)); t {
	case "":
		return errors.New(errors.ErrCodeInvalidInput, "type is required")
	case "ping":
		sess.push(Outbound{Type: MsgPong})
	case "snapshot":
		sess.offer(sc.Snapshot())
	case "mode":
		m, err := scene.ParseMode(in.Mode)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidMode, err, "invalid mode %q", in.Mode)
		}
		sc.SetMode(m)
	case "active-only":
		sc.SetActiveOnly(in.Active)
	case "zoom-in":
		sc.ZoomIn()
	case "zoom-out":
		sc.ZoomOut()
	case "reset":
		sc.ResetView()
	case "pan":
		sc.Pan(in.DX, in.DY)
	case "wheel":
		sc.Wheel(in.Delta, in.X, in.Y)
	case "resize":
		if in.Width <= 0 || in.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "resize needs a positive width and height")
		}
		sc.Resize(in.Width, in.Height)
	case "drag-start", "drag-move", "drag-end":
		if err := errors.ValidateNodeID(in.ID); err != nil {
			return err
		}
		var ok bool
		switch t {
		case "drag-start":
			ok = sc.DragStart(in.ID)
		case "drag-move":
			ok = sc.DragMove(in.ID, in.X, in.Y)
		default:
			ok = sc.DragEnd(in.ID)
		}
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "%s: node %q is not draggable", t, in.ID)
		}
	case "hover":
		if err := errors.ValidateNodeID(in.ID); err != nil {
			return err
		}
		d, ok := sc.Hover(in.ID)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "node %q not found", in.ID)
		}
		sess.push(Outbound{Type: MsgDetail, Detail: &d})
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", in.Type)
	}
	return nil
}

func errorMessage(err error) Outbound {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return Outbound{Type: MsgError, Code: string(code), Message: errors.UserMessage(err)}
}
