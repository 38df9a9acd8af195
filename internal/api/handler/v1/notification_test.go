package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/basma-club/clubhub/internal/api/middleware"
	"github.com/basma-club/clubhub/internal/domain"
	"github.com/basma-club/clubhub/internal/pkg/jwthelper"
)

const hubKey = "hub-test-key"

type staticResolver map[uuid.UUID]domain.Principal

// switchResolver returns whatever principal or error the test set last.
type switchResolver struct {
	mu  sync.Mutex
	p   domain.Principal
	err error
}

func (r *switchResolver) set(p domain.Principal, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p, r.err = p, err
}

func (r *switchResolver) Resolve(_ context.Context, id uuid.UUID) (domain.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Principal{}, r.err
	}
	if r.p.MemberID != id {
		return domain.Principal{}, domain.ErrNotFound
	}
	return r.p, nil
}

func (r staticResolver) Resolve(_ context.Context, id uuid.UUID) (domain.Principal, error) {
	p, ok := r[id]
	if !ok {
		return domain.Principal{}, domain.ErrNotFound
	}
	return p, nil
}

func committeePtr(c domain.Committee) *domain.Committee {
	return &c
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var e Event
	require.NoError(t, json.Unmarshal(data, &e))
	return e
}

func TestNotificationHub(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewNotificationHub(nil, nil, nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	mediaID, eventID := uuid.New(), uuid.New()
	resolver := staticResolver{
		mediaID: domain.NewPrincipal(domain.Member{ID: mediaID, Committee: committeePtr(domain.CommitteeMedia)}, domain.RoleMember),
		eventID: domain.NewPrincipal(domain.Member{ID: eventID, Committee: committeePtr(domain.CommitteeEvent)}, domain.RoleMember),
	}

	r := gin.New()
	r.GET("/ws", middleware.NewAuthenticator(hubKey, nil, resolver).VerifyJWT(), hub.HandleWebSocket)
	srv := httptest.NewServer(r)

	dial := func(id uuid.UUID) *websocket.Conn {
		token, err := jwthelper.GenerateToken([]byte(hubKey), id, "test", time.Hour)
		require.NoError(t, err)

		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
		conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return conn
	}

	mediaConn := dial(mediaID)
	eventConn := dial(eventID)
	require.Eventually(t, func() bool { return hub.Subscribers() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.MeetingCreated(domain.Meeting{ID: uuid.New(), Title: "Shoot", TargetAudience: committeePtr(domain.CommitteeMedia)})
	hub.MeetingCreated(domain.Meeting{ID: uuid.New(), Title: "All hands"})

	first := readEvent(t, mediaConn)
	assert.Equal(t, eventMeetingCreated, first.Type)
	assert.Equal(t, "Shoot", first.Meeting.Title)
	assert.Equal(t, "All hands", readEvent(t, mediaConn).Meeting.Title)

	assert.Equal(t, "All hands", readEvent(t, eventConn).Meeting.Title)

	require.NoError(t, eventConn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-stopped
	assert.Equal(t, 0, hub.Subscribers())

	// Run closed the remaining subscriber, so the server sends a close frame.
	require.NoError(t, mediaConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := mediaConn.ReadMessage()
	assert.Error(t, err)
	require.NoError(t, mediaConn.Close())

	srv.Close()

	hub.MeetingCreated(domain.Meeting{ID: uuid.New()})
}

func TestNotificationHubRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewNotificationHub(nil, nil, nil)

	r := gin.New()
	r.GET("/ws", hub.HandleWebSocket)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotificationHubFollowsMembershipChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	gin.SetMode(gin.TestMode)
	id := uuid.New()
	asMedia := domain.NewPrincipal(domain.Member{ID: id, Committee: committeePtr(domain.CommitteeMedia)}, domain.RoleMember)
	asEvent := domain.NewPrincipal(domain.Member{ID: id, Committee: committeePtr(domain.CommitteeEvent)}, domain.RoleMember)

	resolver := &switchResolver{}
	resolver.set(asMedia, nil)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewNotificationHub(nil, resolver, nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	r := gin.New()
	r.GET("/ws", middleware.NewAuthenticator(hubKey, nil, resolver).VerifyJWT(), hub.HandleWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := jwthelper.GenerateToken([]byte(hubKey), id, "test", time.Hour)
	require.NoError(t, err)
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws?token="+token, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Moved from Media to Event after connecting.
	resolver.set(asEvent, nil)
	hub.MeetingCreated(domain.Meeting{ID: uuid.New(), Title: "Shoot", TargetAudience: committeePtr(domain.CommitteeMedia)})
	hub.MeetingCreated(domain.Meeting{ID: uuid.New(), Title: "Stand setup", TargetAudience: committeePtr(domain.CommitteeEvent)})
	assert.Equal(t, "Stand setup", readEvent(t, conn).Meeting.Title)

	// A banned member is disconnected on the next event.
	resolver.set(domain.Principal{}, domain.ErrPermission)
	hub.MeetingCreated(domain.Meeting{ID: uuid.New(), Title: "All hands"})
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	require.NoError(t, conn.Close())

	cancel()
	<-stopped
}

func TestNotificationHubOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	resolver := staticResolver{id: domain.NewPrincipal(domain.Member{ID: id}, domain.RoleMember)}
	origins := middleware.NewOrigins([]string{"https://club.example.org"})
	hub := NewNotificationHub(origins.Allowed, resolver, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", middleware.NewAuthenticator(hubKey, nil, resolver).VerifyJWT(), hub.HandleWebSocket)

	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := jwthelper.GenerateToken([]byte(hubKey), id, "test", time.Hour)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token

	dial := func(origin string) (*websocket.Conn, int) {
		conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{origin}})
		if resp == nil {
			require.NoError(t, err)
		}
		_ = resp.Body.Close()
		return conn, resp.StatusCode
	}

	conn, status := dial("https://evil.example.org")
	assert.Nil(t, conn)
	assert.Equal(t, http.StatusForbidden, status)

	origins.Set([]string{"https://evil.example.org"})

	conn, status = dial("https://evil.example.org")
	require.NotNil(t, conn)
	assert.Equal(t, http.StatusSwitchingProtocols, status)
	require.NoError(t, conn.Close())
}
