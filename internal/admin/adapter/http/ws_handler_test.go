package http

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mongo-admin/internal/admin/config"
	"mongo-admin/internal/shared/eventbus"
	"mongo-admin/internal/shared/utils"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type feedFrame struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

func TestChangeFeed_RequiresUpgrade(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})

	resp, _ := env.do(t, "GET", "/ws/collections/tasks", "")
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestChangeFeed_RejectsInvalidCollectionBeforeUpgrade(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})

	req := httptest.NewRequest("GET", "/ws/collections/bad-name", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	req.Header.Set("X-Org-Id", testTenant)

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestChangeFeed_StreamsOwnCollectionOnly(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = env.app.Listener(ln)
	}()
	defer func() {
		_ = env.app.Shutdown()
	}()

	header := http.Header{}
	header.Set("X-Org-Id", testTenant)
	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/collections/tasks", header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame feedFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "subscribed", frame.Type)

	other := utils.WithTenantID(context.Background(), "org2")
	_, err = env.uc.InsertDocument(other, "tasks", bson.D{{Key: "title", Value: "theirs"}})
	require.NoError(t, err)

	mine := utils.WithTenantID(context.Background(), testTenant)
	_, err = env.uc.InsertDocument(mine, "notes", bson.D{{Key: "title", Value: "elsewhere"}})
	require.NoError(t, err)
	_, err = env.uc.InsertDocument(mine, "tasks", bson.D{{Key: "title", Value: "mine"}})
	require.NoError(t, err)

	frame = feedFrame{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "change", frame.Type)
	assert.Equal(t, testTenant, frame.Data["tenantId"])
	assert.Equal(t, "tasks", frame.Data["collection"])
	assert.Equal(t, "insert", frame.Data["kind"])
}

func TestChangeFeed_UnsubscribesOnClose(t *testing.T) {
	env := newTestEnv(t, config.AuthConfig{})
	baseline := env.bus.GetSubscriberCount(eventbus.EventTypeCollectionChanged)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = env.app.Listener(ln)
	}()
	defer func() {
		_ = env.app.Shutdown()
	}()

	header := http.Header{}
	header.Set("X-Org-Id", testTenant)
	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/collections/tasks", header)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame feedFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, baseline+1, env.bus.GetSubscriberCount(eventbus.EventTypeCollectionChanged))

	_ = conn.WriteMessage(fws.CloseMessage, fws.FormatCloseMessage(fws.CloseNormalClosure, ""))
	_ = conn.Close()

	assert.Eventually(t, func() bool {
		return env.bus.GetSubscriberCount(eventbus.EventTypeCollectionChanged) == baseline
	}, 5*time.Second, 20*time.Millisecond)
}
