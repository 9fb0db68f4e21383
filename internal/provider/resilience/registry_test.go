package resilience_test

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydeck/skydeck/internal/provider/resilience"
)

func TestRegistry_RegisterOnClientCreation(t *testing.T) {
	registry := resilience.NewRegistry()
	cfg := resilience.DefaultClientConfig("unsplash")
	cfg.Registry = registry
	resilience.NewClient(cfg)

	health := registry.Health("unsplash")
	require.NotNil(t, health)
	assert.Equal(t, "unsplash", health.Name)
	assert.Equal(t, gobreaker.StateClosed, health.CircuitState)
	assert.True(t, health.IsHealthy())
	assert.Nil(t, health.LastSuccessAt)
}

func TestRegistry_RecordOutcomes(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("quotes", resilience.NewClient(resilience.DefaultClientConfig("quotes")))

	registry.RecordSuccess("quotes")
	registry.RecordFailure("quotes", errors.New("connection refused"))

	health := registry.Health("quotes")
	require.NotNil(t, health)
	assert.NotNil(t, health.LastSuccessAt)
	assert.NotNil(t, health.LastFailureAt)
	assert.Equal(t, "connection refused", health.LastError)
}

func TestRegistry_UnknownProvider(t *testing.T) {
	registry := resilience.NewRegistry()

	registry.RecordSuccess("ghost")
	registry.RecordFailure("ghost", errors.New("x"))

	assert.Nil(t, registry.Health("ghost"))
	assert.Empty(t, registry.AllHealth())
}

func TestRegistry_AllHealthSortedByName(t *testing.T) {
	registry := resilience.NewRegistry()
	for _, name := range []string{"weather", "photo", "records"} {
		cfg := resilience.DefaultClientConfig(name)
		cfg.Registry = registry
		resilience.NewClient(cfg)
	}

	all := registry.AllHealth()
	require.Len(t, all, 3)
	assert.Equal(t, "photo", all[0].Name)
	assert.Equal(t, "records", all[1].Name)
	assert.Equal(t, "weather", all[2].Name)
}

func TestProviderHealth_States(t *testing.T) {
	tests := []struct {
		state     gobreaker.State
		healthy   bool
		degraded  bool
		unhealthy bool
	}{
		{gobreaker.StateClosed, true, false, false},
		{gobreaker.StateHalfOpen, false, true, false},
		{gobreaker.StateOpen, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			h := &resilience.ProviderHealth{CircuitState: tt.state}
			assert.Equal(t, tt.healthy, h.IsHealthy())
			assert.Equal(t, tt.degraded, h.IsDegraded())
			assert.Equal(t, tt.unhealthy, h.IsUnhealthy())
		})
	}
}
