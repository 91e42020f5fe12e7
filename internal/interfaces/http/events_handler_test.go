package http_test

import (
	"bufio"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/municipal-ops-api/internal/application/ports"
	"github.com/jhoicas/municipal-ops-api/internal/infrastructure/realtime"
	apphttp "github.com/jhoicas/municipal-ops-api/internal/interfaces/http"
)

func TestEventsStream_EntregaEventosDespuesDelWriteTimeout(t *testing.T) {
	hub := realtime.NewHub(realtime.DefaultBuffer)
	app := fiber.New(fiber.Config{WriteTimeout: 300 * time.Millisecond, DisableStartupMessage: true})
	app.Get("/stream", apphttp.AuthMiddleware(testJWTSecret, testIssuer), apphttp.NewEventsHandler(hub).Stream)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()

	req, err := http.NewRequest(http.MethodGet, "http://"+ln.Addr().String()+"/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", bearer(t, testTenantID, "staff", 60))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		resp.Body.Close()
		hub.Close()
		_ = app.ShutdownWithTimeout(time.Second)
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		r := bufio.NewReader(resp.Body)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			lines <- strings.TrimRight(line, "\n")
		}
	}()

	select {
	case line := <-lines:
		assert.Equal(t, ": conectado", line)
	case <-time.After(2 * time.Second):
		t.Fatal("sin saludo inicial")
	}

	time.Sleep(600 * time.Millisecond)
	hub.Publish(ports.Event{TenantID: testTenantID, Type: "request.fulfilled", ResourceID: "r-1"})
	hub.Publish(ports.Event{TenantID: "otro-tenant", Type: "request.approved", ResourceID: "r-2"})

	timeout := time.After(3 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "el stream se cerró antes del evento")
			assert.NotContains(t, line, "request.approved")
			if line == "event: request.fulfilled" {
				data := <-lines
				assert.True(t, strings.HasPrefix(data, "data: "), data)
				assert.Contains(t, data, `"resource_id":"r-1"`)
				return
			}
		case <-timeout:
			t.Fatal("el evento no llegó al cliente")
		}
	}
}
