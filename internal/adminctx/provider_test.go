package adminctx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicport/clinicport/internal/identity"
	"github.com/clinicport/clinicport/internal/plan"
	"github.com/clinicport/clinicport/internal/upstream"
	"github.com/clinicport/clinicport/pkg/logging"
)

type fakeProfileAPI struct {
	profile *upstream.Profile
	err     error
	calls   int
}

func (f *fakeProfileAPI) Profile(ctx context.Context, token string) (*upstream.Profile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func newProvider(t *testing.T, api ProfileAPI) *Provider {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewProvider(api, client, time.Minute, logging.Default())
}

func testProfile() *upstream.Profile {
	return &upstream.Profile{
		Admin:  &identity.User{ID: "u1", Role: identity.RoleAdmin},
		Clinic: &upstream.ProfileClinic{Clinic: identity.Clinic{ID: "c1", Name: "Northside"}},
		Plan:   &plan.Plan{ID: "p1", Name: "Growth", EnableExports: true},
	}
}

func TestLoadFetchesOnceThenCaches(t *testing.T) {
	api := &fakeProfileAPI{profile: testProfile()}
	p := newProvider(t, api)
	ctx := context.Background()

	first := p.Load(ctx, "sid-1", "tok")
	require.NotNil(t, first)
	assert.Equal(t, "Growth", first.Plan.Name)

	second := p.Load(ctx, "sid-1", "tok")
	require.NotNil(t, second)
	assert.Equal(t, 1, api.calls, "second load must come from cache")
}

func TestPlanFallsBackToClinicPlan(t *testing.T) {
	profile := testProfile()
	profile.Plan = nil
	profile.Clinic.Plan = &plan.Plan{ID: "p2", Name: "Starter"}
	p := newProvider(t, &fakeProfileAPI{profile: profile})

	got := p.Load(context.Background(), "sid-1", "tok")
	require.NotNil(t, got)
	require.NotNil(t, got.Plan)
	assert.Equal(t, "Starter", got.Plan.Name)
}

func TestLoadSwallowsFetchFailure(t *testing.T) {
	p := newProvider(t, &fakeProfileAPI{err: errors.New("boom")})
	got := p.Load(context.Background(), "sid-1", "tok")
	assert.Nil(t, got, "profile unavailable surfaces as nil, not a panic or error")
}

func TestReloadBustsCache(t *testing.T) {
	api := &fakeProfileAPI{profile: testProfile()}
	p := newProvider(t, api)
	ctx := context.Background()

	require.NotNil(t, p.Load(ctx, "sid-1", "tok"))
	api.profile.Plan = &plan.Plan{ID: "p3", Name: "Scale", EnableAuditLogs: true}

	reloaded := p.Reload(ctx, "sid-1", "tok")
	require.NotNil(t, reloaded)
	assert.Equal(t, "Scale", reloaded.Plan.Name)
	assert.Equal(t, 2, api.calls)

	// Subsequent loads see the reloaded plan from cache.
	again := p.Load(ctx, "sid-1", "tok")
	require.NotNil(t, again)
	assert.Equal(t, "Scale", again.Plan.Name)
	assert.Equal(t, 2, api.calls)
}
