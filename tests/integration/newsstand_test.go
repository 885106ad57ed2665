//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsstand_EntitlementFlag(t *testing.T) {
	subscribedID := createTestMagazine(t, "Subscribed Weekly", 499)
	unsubscribedID := createTestMagazine(t, "Window Shopping", 999)

	client := newTestClient(t)
	registerTestUser(t, client, "reader")

	activateSubscription(t, client, subscribedID)

	entries := fetchNewsstand(t, client)
	assert.True(t, newsstandEntryFor(t, entries, subscribedID).Entitled)
	assert.False(t, newsstandEntryFor(t, entries, unsubscribedID).Entitled)
}

func TestNewsstand_CancelRemovesEntitlement(t *testing.T) {
	magID := createTestMagazine(t, "Short Lived", 499)

	client := newTestClient(t)
	registerTestUser(t, client, "quitter")

	activateSubscription(t, client, magID)
	require.True(t, newsstandEntryFor(t, fetchNewsstand(t, client), magID).Entitled)

	resp, err := client.POST("/api/v1/subscriptions/cancel", map[string]string{
		"magazine_id": magID,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// The cancel invalidates the cached view, so the change is visible
	// immediately despite the subscription not having expired.
	assert.False(t, newsstandEntryFor(t, fetchNewsstand(t, client), magID).Entitled,
		"cancelled subscription must not entitle before expiry")
}

func TestNewsstand_ExcludesDeletedMagazines(t *testing.T) {
	magID := createTestMagazine(t, "Doomed Digest", 499)

	client := newTestClient(t)
	registerTestUser(t, client, "browser")
	activateSubscription(t, client, magID)

	admin := newTestClient(t)
	admin.LoginAsAdmin(t)
	resp, err := admin.DELETE("/api/v1/magazines/" + magID)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	// Cached entries may linger for up to the short test TTL, so poll
	// until the cache expires.
	var present bool
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		present = false
		for _, e := range fetchNewsstand(t, client) {
			if e.MagazineID == magID {
				present = true
			}
		}
		if !present {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	assert.False(t, present, "soft-deleted magazine must not appear in the newsstand")
}

func TestNewsstand_PerUserView(t *testing.T) {
	magID := createTestMagazine(t, "Personal Pick", 499)

	subscriber := newTestClient(t)
	registerTestUser(t, subscriber, "sub-reader")
	activateSubscription(t, subscriber, magID)

	bystander := newTestClient(t)
	registerTestUser(t, bystander, "bystander")

	assert.True(t, newsstandEntryFor(t, fetchNewsstand(t, subscriber), magID).Entitled)
	assert.False(t, newsstandEntryFor(t, fetchNewsstand(t, bystander), magID).Entitled)
}
