package handler_test

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/algotutor-api/internal/handler"
)

func TestEventStreamDeliversChanges(t *testing.T) {
	h := newAPIHarness(t)
	admin := h.login(t, adminEmail, adminPassword)

	baseURL, shutdown := startFiberServer(t, h.app)
	defer shutdown()

	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/v1/events/ws?token=" + admin
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	conn, resp, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	var frame handler.StreamFrame
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, handler.FrameReady, frame.Type)

	created := h.do(t, http.MethodPost, "/api/v1/news", map[string]string{
		"title": "Stream test", "summary": "Live", "content": "Pushed to subscribers.",
	}, bearer(admin))
	require.Equal(t, fiber.StatusCreated, created.StatusCode)
	_ = created.Body.Close()

	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, handler.FrameEvent, frame.Type)
	require.NotNil(t, frame.Event)
	require.Equal(t, "news", frame.Event.Collection)
	require.Equal(t, "created", frame.Event.Action)
}

func TestEventStreamAudienceIsRespected(t *testing.T) {
	h := newAPIHarness(t)
	teacherID, teacher := h.approvedTeacher(t, "ada@algotutor.test")
	admin := h.login(t, adminEmail, adminPassword)

	baseURL, shutdown := startFiberServer(t, h.app)
	defer shutdown()
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/v1/events/ws?token="

	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	teacherConn, _, err := dialer.Dial(wsURL+teacher, nil)
	require.NoError(t, err)
	defer teacherConn.Close()
	adminConn, _, err := dialer.Dial(wsURL+admin, nil)
	require.NoError(t, err)
	defer adminConn.Close()

	var frame handler.StreamFrame
	require.NoError(t, teacherConn.SetReadDeadline(time.Now().Add(3*time.Second)))
	require.NoError(t, teacherConn.ReadJSON(&frame))
	require.NoError(t, adminConn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	require.NoError(t, adminConn.ReadJSON(&frame))
	require.Equal(t, handler.FrameReady, frame.Type)

	resp := h.do(t, http.MethodPost, "/api/v1/questions", map[string]string{
		"teacher_id": teacherID, "student_email": "sam@school.test", "question_text": "Why recursion?",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	require.NoError(t, teacherConn.ReadJSON(&frame))
	require.Equal(t, "questions", frame.Event.Collection)
	require.Equal(t, "submitted", frame.Event.Action)

	require.NoError(t, adminConn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	err = adminConn.ReadJSON(&frame)
	var netErr net.Error
	require.True(t, errors.As(err, &netErr) && netErr.Timeout(), "admin should not receive the teacher's question")
}

func TestEventStreamRequiresToken(t *testing.T) {
	h := newAPIHarness(t)

	baseURL, shutdown := startFiberServer(t, h.app)
	defer shutdown()

	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}
	_, resp, err := dialer.Dial("ws"+strings.TrimPrefix(baseURL, "http")+"/api/v1/events/ws", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func startFiberServer(t *testing.T, app *fiber.App) (string, func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("fiber listener stopped: %v", err)
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)

	shutdown := func() {
		_ = app.Shutdown()
		_ = listener.Close()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	return "http://" + listener.Addr().String(), shutdown
}
