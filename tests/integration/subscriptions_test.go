//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/pressops/kiosk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptions_Activate(t *testing.T) {
	magID := createTestMagazine(t, "Activate Weekly", 499)

	client := newTestClient(t)
	userID := registerTestUser(t, client, "activator")

	sub := activateSubscription(t, client, magID)
	assert.Equal(t, userID, sub.UserID)
	assert.Equal(t, magID, sub.MagazineID)
	assert.Nil(t, sub.CancelledAt)

	validUntil, err := time.Parse(time.RFC3339, sub.ValidUntil)
	require.NoError(t, err)
	days := time.Until(validUntil).Hours() / 24
	assert.InDelta(t, 30, days, 1, "validity should be thirty days out")
}

func TestSubscriptions_ActivateTwiceCreatesTwoRows(t *testing.T) {
	magID := createTestMagazine(t, "Double Issue", 999)

	client := newTestClient(t)
	userID := registerTestUser(t, client, "doubler")

	first := activateSubscription(t, client, magID)
	second := activateSubscription(t, client, magID)
	assert.NotEqual(t, first.ID, second.ID)

	resp, err := client.GET("/api/v1/subscriptions?user_id=" + userID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Data []subscriptionPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &list)
	assert.Len(t, list.Data, 2)
}

func TestSubscriptions_ActivateUnknownMagazine(t *testing.T) {
	client := newTestClient(t)
	registerTestUser(t, client, "lost")

	resp, err := client.POST("/api/v1/subscriptions/activate", map[string]string{
		"magazine_id": "00000000-0000-4000-8000-000000000000",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSubscriptions_ActivateInvalidMagazineID(t *testing.T) {
	client := newTestClientWithoutValidation()
	validated := newTestClient(t)
	registerTestUser(t, validated, "malformed")
	client.Token = validated.Token

	resp, err := client.POST("/api/v1/subscriptions/activate", map[string]string{
		"magazine_id": "not-a-uuid",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSubscriptions_CancelPair(t *testing.T) {
	magID := createTestMagazine(t, "Cancel Weekly", 499)

	client := newTestClient(t)
	userID := registerTestUser(t, client, "canceller")

	activateSubscription(t, client, magID)
	activateSubscription(t, client, magID)

	resp, err := client.POST("/api/v1/subscriptions/cancel", map[string]string{
		"magazine_id": magID,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			Cancelled int64 `json:"cancelled"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, int64(2), result.Data.Cancelled)

	// Every row for the pair is now marked, valid_until untouched.
	resp, err = client.GET("/api/v1/subscriptions?user_id=" + userID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Data []subscriptionPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &list)
	require.Len(t, list.Data, 2)
	for _, sub := range list.Data {
		assert.NotNil(t, sub.CancelledAt)
		assert.NotEmpty(t, sub.ValidUntil)
	}

	// Nothing left to cancel on the second pass.
	resp, err = client.POST("/api/v1/subscriptions/cancel", map[string]string{
		"magazine_id": magID,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result.Data.Cancelled = -1
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, int64(0), result.Data.Cancelled)
}

func TestSubscriptions_CancelSingleRow(t *testing.T) {
	magID := createTestMagazine(t, "Single Cancel", 499)

	client := newTestClient(t)
	registerTestUser(t, client, "single")

	sub := activateSubscription(t, client, magID)

	resp, err := client.DELETE("/api/v1/subscriptions/" + sub.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	// Cancelling again conflicts.
	resp, err = client.DELETE("/api/v1/subscriptions/" + sub.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSubscriptions_CancelSomeoneElses(t *testing.T) {
	magID := createTestMagazine(t, "Private Issue", 499)

	owner := newTestClient(t)
	registerTestUser(t, owner, "owner")
	sub := activateSubscription(t, owner, magID)

	intruder := newTestClient(t)
	registerTestUser(t, intruder, "intruder")

	resp, err := intruder.DELETE("/api/v1/subscriptions/" + sub.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSubscriptions_ListAllRequiresAdmin(t *testing.T) {
	client := newTestClient(t)
	registerTestUser(t, client, "lister")

	resp, err := client.GET("/api/v1/subscriptions")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	admin := newTestClient(t)
	admin.LoginAsAdmin(t)

	resp, err = admin.GET("/api/v1/subscriptions")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSubscriptions_ListByUserJoinsRecords(t *testing.T) {
	magID := createTestMagazine(t, "Joined Monthly", 499)

	client := newTestClient(t)
	userID := registerTestUser(t, client, "joiner")
	activateSubscription(t, client, magID)

	resp, err := client.GET("/api/v1/subscriptions?user_id=" + userID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Data []subscriptionPayload `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &list)
	require.Len(t, list.Data, 1)

	sub := list.Data[0]
	require.NotNil(t, sub.User)
	require.NotNil(t, sub.Magazine)
	assert.Equal(t, userID, sub.User.ID)
	assert.Equal(t, "Joined Monthly", sub.Magazine.Name)
}

func TestSubscriptions_ListOtherUserForbidden(t *testing.T) {
	victim := newTestClient(t)
	victimID := registerTestUser(t, victim, "victim")

	snoop := newTestClient(t)
	registerTestUser(t, snoop, "snoop")

	resp, err := snoop.GET("/api/v1/subscriptions?user_id=" + victimID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	// An admin may list anyone's history.
	admin := newTestClient(t)
	admin.LoginAsAdmin(t)

	resp, err = admin.GET("/api/v1/subscriptions?user_id=" + victimID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}
