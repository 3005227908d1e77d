//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/proneo/platform/internal/domain"
	"github.com/proneo/platform/internal/localstate"
	"github.com/proneo/platform/internal/roster"
	"github.com/proneo/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceStateStore_RoundTrip(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()

	_, err := env.State.Get(ctx, "device:a:k")
	assert.ErrorIs(t, err, localstate.ErrKeyNotFound)

	require.NoError(t, env.State.Set(ctx, "device:a:k", []byte(`["x"]`), 0))
	got, err := env.State.Get(ctx, "device:a:k")
	require.NoError(t, err)
	assert.JSONEq(t, `["x"]`, string(got))

	require.NoError(t, env.State.Set(ctx, "device:a:k", []byte(`["x","y"]`), 0))
	got, err = env.State.Get(ctx, "device:a:k")
	require.NoError(t, err)
	assert.JSONEq(t, `["x","y"]`, string(got))

	require.NoError(t, env.State.Delete(ctx, "device:a:k"))
	_, err = env.State.Get(ctx, "device:a:k")
	assert.ErrorIs(t, err, localstate.ErrKeyNotFound)
}

func TestDeviceStateStore_ExpiryAndPurge(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.State.Set(ctx, "short", []byte(`1`), 50*time.Millisecond))
	require.NoError(t, env.State.Set(ctx, "long", []byte(`2`), time.Hour))
	require.NoError(t, env.State.Set(ctx, "forever", []byte(`3`), 0))

	time.Sleep(100 * time.Millisecond)
	_, err := env.State.Get(ctx, "short")
	assert.ErrorIs(t, err, localstate.ErrKeyNotFound)

	n, err := env.State.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, testutil.CountRows(t, env, "device_state", ""))
}

func TestDismissalsPersistPerDevice(t *testing.T) {
	env := testutil.NewTestEnv(t)
	today := time.Now().UTC().Format("2006-01-02")
	env.SetRoster(roster.Snapshot{
		Players: []domain.Player{{ID: "p1", Name: "Ana", BirthDate: "1996" + today[4:], Category: domain.CategoryWomen}},
	})

	resp := env.Do(http.MethodPost, "/alerts/bday-p1/complete", domain.RoleScout, "tablet", nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	assert.Equal(t, 1, testutil.CountRows(t, env, "device_state", "key = $1", "device:tablet:proneo_completed_alerts_mobile"))

	var feed struct {
		Alerts []domain.Alert `json:"alerts"`
		Total  int            `json:"total"`
	}
	testutil.DecodeJSON(t, env.Do(http.MethodGet, "/alerts", domain.RoleScout, "tablet", nil), &feed)
	assert.Zero(t, feed.Total)

	// Another installation keeps its own state.
	testutil.DecodeJSON(t, env.Do(http.MethodGet, "/alerts", domain.RoleScout, "phone", nil), &feed)
	require.Len(t, feed.Alerts, 1)
	assert.Equal(t, "bday-p1", feed.Alerts[0].ID)
}

func TestAlertSettingsPersist(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.Do(http.MethodPut, "/settings/alerts/birthday", domain.RoleScout, "tablet", map[string]bool{"enabled": false})
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	var toggles map[string]bool
	testutil.DecodeJSON(t, env.Do(http.MethodGet, "/settings/alerts", domain.RoleScout, "tablet", nil), &toggles)
	assert.False(t, toggles["birthday"])
	assert.True(t, toggles["optional_clause"])

	resp = env.Do(http.MethodPut, "/settings/alerts/agency_renewal", domain.RoleScout, "tablet", map[string]bool{"enabled": false})
	testutil.AssertStatus(t, resp, http.StatusUnprocessableEntity)
	testutil.AssertErrorCode(t, resp, "MANDATORY_ALERT_KIND")
}
