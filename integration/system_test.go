//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductCatalog/internal/auth"
	"ProductCatalog/internal/auth/authtest"
	"ProductCatalog/internal/catalog"
)

var (
	baseURL   = getenv("E2E_BASE_URL", "http://localhost:8082")
	jwtSecret = getenv("E2E_JWT_SECRET", "dev-secret")
)

func TestSystem_E2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	c := catalog.NewClient(baseURL)
	c.Token = authtest.Token(t, jwtSecret, "e2e", auth.RoleAdmin, 10*time.Minute)

	name := fmt.Sprintf("E2E Widget %d_%d", time.Now().Unix(), rand.Intn(100000))
	created, err := c.Create(ctx, catalog.NewProduct{
		Name:  name,
		Price: decimal.RequireFromString("19.99"),
		Stock: 3,
	})
	require.NoError(t, err)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, "19.99", got.Price.String())

	found, err := c.Filter(ctx, catalog.Filter{NameContains: &name, InStockOnly: true})
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = c.UpdateInventory(ctx, created.ID, 0)
	require.NoError(t, err)

	found, err = c.Filter(ctx, catalog.Filter{NameContains: &name, InStockOnly: true})
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = c.UpdateInventory(ctx, created.ID, -1)
	assert.True(t, catalog.IsInvalidStock(err))

	before := readyInstance(t, ctx)

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		restartContainer(t, ctx, "catalog")
		waitReady(t, ctx, baseURL+"/readyz")

		assert.NotEqual(t, before, readyInstance(t, ctx))
		_, err = c.Get(ctx, created.ID)
		assert.True(t, catalog.IsNotFound(err), "catalog state must not survive a restart")
		return
	}

	require.NoError(t, c.Delete(ctx, created.ID))
	_, err = c.Get(ctx, created.ID)
	assert.True(t, catalog.IsNotFound(err))
}

func readyInstance(t *testing.T, ctx context.Context) string {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/readyz", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		InstanceID string `json:"instance_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.InstanceID
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
