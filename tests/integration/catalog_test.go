//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pressops/kiosk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_CreateAndGet(t *testing.T) {
	id := createTestMagazine(t, "Gopher Quarterly", 1299)

	client := newTestClient(t)
	resp, err := client.GET("/api/v1/magazines/" + id)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data magazinePayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "Gopher Quarterly", result.Data.Name)
	assert.Equal(t, 1299, result.Data.Price)
	assert.Nil(t, result.Data.DeletedAt)
}

func TestCatalog_CreateRequiresAdmin(t *testing.T) {
	client := newTestClient(t)
	registerTestUser(t, client, "catalog-user")

	resp, err := client.POST("/api/v1/magazines", map[string]interface{}{
		"name":  "Forbidden Weekly",
		"price": 100,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCatalog_Update(t *testing.T) {
	id := createTestMagazine(t, "Rename Me", 500)

	admin := newTestClient(t)
	admin.LoginAsAdmin(t)

	resp, err := admin.PATCH("/api/v1/magazines/"+id, map[string]interface{}{
		"name":  "Renamed Monthly",
		"price": 750,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data magazinePayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "Renamed Monthly", result.Data.Name)
	assert.Equal(t, 750, result.Data.Price)
}

func TestCatalog_SoftDeleteAndRestore(t *testing.T) {
	id := createTestMagazine(t, "Ephemeral Digest", 300)

	admin := newTestClient(t)
	admin.LoginAsAdmin(t)

	resp, err := admin.DELETE("/api/v1/magazines/" + id)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	// Default listing hides the soft-deleted magazine.
	resp, err = admin.GET("/api/v1/magazines")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Data []magazinePayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &list)
	for _, m := range list.Data {
		assert.NotEqual(t, id, m.ID, "soft-deleted magazine leaked into default listing")
	}

	// The row survives and is visible with include_deleted.
	resp, err = admin.GET("/api/v1/magazines?include_deleted=true")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list.Data = nil
	testutil.DecodeJSON(t, resp, &list)
	found := false
	for _, m := range list.Data {
		if m.ID == id {
			found = true
			assert.NotNil(t, m.DeletedAt)
		}
	}
	assert.True(t, found, "soft-deleted magazine should still exist")

	// Double delete conflicts.
	resp, err = admin.DELETE("/api/v1/magazines/" + id)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	// Restore brings it back into the default listing.
	resp, err = admin.POST(fmt.Sprintf("/api/v1/magazines/%s/restore", id), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var restored struct {
		Data magazinePayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &restored)
	assert.Nil(t, restored.Data.DeletedAt)
}

func TestCatalog_InvalidID(t *testing.T) {
	client := newTestClientWithoutValidation()

	resp, err := client.GET("/api/v1/magazines/not-a-uuid")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCatalog_NotFound(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/api/v1/magazines/00000000-0000-4000-8000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}
