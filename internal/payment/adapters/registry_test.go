package adapters

import (
	"testing"

	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct {
	gateway domain.Gateway
	seen    domain.AdapterConfig
}

func (f *stubFactory) Provider() string { return "GoCardless" }

func (f *stubFactory) NewAdapter(cfg domain.AdapterConfig) (domain.Gateway, error) {
	f.seen = cfg
	return f.gateway, nil
}

func TestRegistry_NewAdapter(t *testing.T) {
	factory := &stubFactory{}
	registry := NewRegistry(factory, nil)

	assert.True(t, registry.ProviderExists("gocardless"))
	assert.True(t, registry.ProviderExists(" GOCARDLESS "))
	assert.False(t, registry.ProviderExists("stripe"))

	_, err := registry.NewAdapter(" GoCardless", domain.AdapterConfig{Config: map[string]any{"access_token": "x"}})
	require.NoError(t, err)
	assert.Equal(t, "gocardless", factory.seen.Provider)
	assert.Equal(t, "x", factory.seen.Config["access_token"])
}

func TestRegistry_UnknownProvider(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.NewAdapter("stripe", domain.AdapterConfig{})
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)

	_, err = registry.NewAdapter("", domain.AdapterConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)

	var nilRegistry *Registry
	assert.False(t, nilRegistry.ProviderExists("gocardless"))
}
