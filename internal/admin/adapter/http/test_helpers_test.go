package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mongo-admin/internal/admin/config"
	"mongo-admin/internal/admin/domain/service"
	"mongo-admin/internal/admin/testutil"
	"mongo-admin/internal/admin/usecase"
	"mongo-admin/internal/shared/eventbus"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testTenant = "org1"

type testEnv struct {
	app   *fiber.App
	store *testutil.MemStore
	bus   *eventbus.EventBus
	uc    usecase.AdminUsecase
}

func newTestEnv(t *testing.T, auth config.AuthConfig) *testEnv {
	t.Helper()
	if auth.TenantHeader == "" {
		auth.TenantHeader = "X-Org-Id"
	}
	if auth.TenantClaim == "" {
		auth.TenantClaim = "org_id"
	}

	store := testutil.NewMemStore()
	bus := eventbus.NewEventBus(nil)
	planner := service.NewQueryPlanner(service.DefaultPlannerOptions(), nil)
	schemas := service.NewSchemaInferenceService(store, 100, nil)
	uc := usecase.NewAdminUsecase(usecase.Dependencies{
		Catalog:  service.NewCollectionCatalog(store, store, store, schemas, 4, nil),
		Queries:  service.NewQueryService(store, planner, nil),
		Gateway:  service.NewMutationGateway(store, nil),
		Schemas:  schemas,
		Audit:    store,
		EventBus: bus,
	})
	usecase.NewAuditSubscriber(store, nil).Register(bus)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(RequestIDMiddleware())
	NewAdminHTTPHandler(uc, auth, bus, nil).RegisterRoutes(app)

	return &testEnv{app: app, store: store, bus: bus, uc: uc}
}

// do sends a request as testTenant unless headers override it.
func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Org-Id", testTenant)
	for i := 0; i+1 < len(headers); i += 2 {
		if headers[i+1] == "" {
			req.Header.Del(headers[i])
			continue
		}
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeMap(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}
