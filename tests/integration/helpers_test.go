//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/pressops/kiosk/internal/testutil"
	"github.com/stretchr/testify/require"
)

type userPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type magazinePayload struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     int     `json:"price"`
	DeletedAt *string `json:"deleted_at"`
}

type subscriptionPayload struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	MagazineID  string           `json:"magazine_id"`
	ValidUntil  string           `json:"valid_until"`
	CancelledAt *string          `json:"cancelled_at"`
	User        *userPayload     `json:"user"`
	Magazine    *magazinePayload `json:"magazine"`
}

type newsstandEntry struct {
	MagazineID string `json:"magazine_id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Entitled   bool   `json:"entitled"`
}

// uniqueEmail produces a collision-free address so tests can run in any order.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

// registerTestUser registers a fresh user and logs the client in as them.
// Returns the user's id.
func registerTestUser(t *testing.T, client *testutil.Client, name string) string {
	t.Helper()

	email := uniqueEmail(name)
	password := "password123"

	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data userPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	client.LoginAs(t, email, password)
	return result.Data.ID
}

// createTestMagazine creates a magazine via an admin client and returns its id.
func createTestMagazine(t *testing.T, name string, price int) string {
	t.Helper()

	admin := newTestClient(t)
	admin.LoginAsAdmin(t)

	resp, err := admin.POST("/api/v1/magazines", map[string]interface{}{
		"name":  name,
		"image": "https://covers.example.com/" + uuid.NewString()[:8] + ".jpg",
		"price": price,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data magazinePayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

// activateSubscription activates a subscription for the authenticated client
// and returns the created row.
func activateSubscription(t *testing.T, client *testutil.Client, magazineID string) subscriptionPayload {
	t.Helper()

	resp, err := client.POST("/api/v1/subscriptions/activate", map[string]string{
		"magazine_id": magazineID,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data subscriptionPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

// fetchNewsstand returns the newsstand entries for the authenticated client.
func fetchNewsstand(t *testing.T, client *testutil.Client) []newsstandEntry {
	t.Helper()

	resp, err := client.GET("/api/v1/newsstand")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []newsstandEntry `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

// newsstandEntryFor finds the entry for a magazine id.
func newsstandEntryFor(t *testing.T, entries []newsstandEntry, magazineID string) newsstandEntry {
	t.Helper()

	for _, e := range entries {
		if e.MagazineID == magazineID {
			return e
		}
	}
	t.Fatalf("magazine %s not present in newsstand", magazineID)
	return newsstandEntry{}
}
