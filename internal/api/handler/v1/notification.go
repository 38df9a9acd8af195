package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/basma-club/clubhub/internal/api/handler/v1/response"
	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/metrics"
	"github.com/basma-club/clubhub/internal/policy"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
	eventQueueSize = 64
	resolveTimeout = 5 * time.Second
)

const eventMeetingCreated = "meeting_created"

// Event is the payload pushed to subscribers.
type Event struct {
	Type    string         `json:"type"`
	Meeting domain.Meeting `json:"meeting"`
}

type subscriber struct {
	conn      *websocket.Conn
	send      chan []byte
	principal domain.Principal
}

// NotificationHub pushes new meetings to the connected members who may see
// them. Each subscriber's role and committee are resolved again for every
// event, so membership edits apply without reconnecting.
type NotificationHub struct {
	upgrader websocket.Upgrader
	identity PrincipalResolver
	metrics  *metrics.Metrics

	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}

	events     chan domain.Meeting
	register   chan *subscriber
	unregister chan *subscriber
	done       chan struct{}
}

// NewNotificationHub accepts upgrades without an Origin header, or from an
// origin originAllowed approves. A nil originAllowed rejects every origin.
// With a nil identity the principal captured at upgrade time is used.
func NewNotificationHub(originAllowed func(origin string) bool, identity PrincipalResolver, m *metrics.Metrics) *NotificationHub {
	return &NotificationHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return originAllowed != nil && originAllowed(origin)
			},
		},
		identity:    identity,
		metrics:     m,
		subscribers: make(map[*subscriber]struct{}),
		events:      make(chan domain.Meeting, eventQueueSize),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		done:        make(chan struct{}),
	}
}

// Run dispatches events until ctx is cancelled, then disconnects everyone.
func (h *NotificationHub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		h.mu.Lock()
		for s := range h.subscribers {
			delete(h.subscribers, s)
			close(s.send)
		}
		h.mu.Unlock()
		h.metrics.SetSubscribers(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-h.register:
			h.mu.Lock()
			h.subscribers[s] = struct{}{}
			n := len(h.subscribers)
			h.mu.Unlock()
			h.metrics.SetSubscribers(n)
		case s := <-h.unregister:
			h.remove(s)
		case m := <-h.events:
			h.dispatch(ctx, m)
		}
	}
}

func (h *NotificationHub) remove(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[s]; ok {
		delete(h.subscribers, s)
		close(s.send)
	}
	n := len(h.subscribers)
	h.mu.Unlock()
	h.metrics.SetSubscribers(n)
}

func (h *NotificationHub) dispatch(ctx context.Context, m domain.Meeting) {
	payload, err := json.Marshal(Event{Type: eventMeetingCreated, Meeting: m})
	if err != nil {
		zap.L().Error("marshal meeting event", zap.Error(err))
		return
	}

	// Subscribers are only added and removed on the Run goroutine, which is
	// this one, so the snapshot stays valid without holding the lock.
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	var drop []*subscriber
	for _, s := range subs {
		ok, err := h.refresh(ctx, s)
		if err != nil {
			drop = append(drop, s)
			continue
		}
		if !ok || !policy.CanViewMeeting(s.principal, m) {
			continue
		}
		select {
		case s.send <- payload:
		default:
			drop = append(drop, s)
		}
	}

	for _, s := range drop {
		h.remove(s)
	}
}

// refresh reloads the subscriber's principal. A member that is gone or
// banned returns an error and is disconnected. A failed lookup skips this
// event for the subscriber.
func (h *NotificationHub) refresh(ctx context.Context, s *subscriber) (bool, error) {
	if h.identity == nil {
		return true, nil
	}

	resolveCtx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	p, err := h.identity.Resolve(resolveCtx, s.principal.MemberID)
	switch {
	case err == nil:
		s.principal = p
		return true, nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPermission):
		zap.L().Info("dropping notification subscriber",
			zap.String("member_id", s.principal.MemberID.String()),
			zap.Error(err),
		)
		return false, err
	default:
		zap.L().Warn("resolve notification subscriber", zap.Error(err))
		return false, nil
	}
}

// MeetingCreated queues m for delivery. It never blocks the caller.
func (h *NotificationHub) MeetingCreated(m domain.Meeting) {
	select {
	case h.events <- m:
	case <-h.done:
	default:
		zap.L().Warn("notification queue full, dropping event", zap.String("meeting_id", m.ID.String()))
	}
}

func (h *NotificationHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// HandleWebSocket godoc
// @Summary      Subscribe to meeting notifications
// @Description  Upgrades to a websocket that receives a meeting_created event for every new meeting the caller may see. Browsers pass the token as a query parameter.
// @Tags         meetings
// @Param        token  query  string  false  "bearer token"
// @Success      101    {string}  string  "Switching Protocols"
// @Failure      401    {object}  response.Err
// @Router       /ws/notifications [get]
// @Security BearerAuth
func (h *NotificationHub) HandleWebSocket(ctx *gin.Context) {
	p, respErr := getPrincipal(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &subscriber{
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		principal: p,
	}

	select {
	case h.register <- s:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go h.writePump(s)
	go h.readPump(s)
}

func (h *NotificationHub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the peer going away; subscribers send nothing.
func (h *NotificationHub) readPump(s *subscriber) {
	defer func() {
		select {
		case h.unregister <- s:
		case <-h.done:
		}
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("websocket closed", zap.Error(err))
			}
			return
		}
	}
}
