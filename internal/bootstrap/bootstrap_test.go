package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-session/pkg/config"
	"wallet-session/pkg/errno"
)

func baseConfig() config.Config {
	var cfg config.Config
	cfg.Wallet.ContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	cfg.Storage.Driver = "memory"
	cfg.MQ.Type = "none"
	return cfg
}

func TestNewWithoutProvider(t *testing.T) {
	rt, err := New(context.Background(), baseConfig(), nil)
	require.NoError(t, err)
	defer rt.Close()

	assert.Nil(t, rt.Redis)
	err = rt.Manager.ConnectWallet(context.Background())
	assert.ErrorIs(t, err, errno.ErrMissingProvider)
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"Contract address", func(c *config.Config) { c.Wallet.ContractAddress = "nope" }},
		{"Storage driver", func(c *config.Config) { c.Storage.Driver = "etcd" }},
		{"MQ type", func(c *config.Config) { c.MQ.Type = "nats" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			_, err := New(context.Background(), cfg, nil)
			assert.Error(t, err)
		})
	}
}

func TestNewConsumerNeedsMQ(t *testing.T) {
	rt, err := New(context.Background(), baseConfig(), nil)
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.NewConsumer(baseConfig(), "group", "cli")
	assert.Error(t, err)
}
