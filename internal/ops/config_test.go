package ops

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
	"platform": {
		"auditTick": 50,
		"backoffStartSeconds": 5,
		"heartbeatPath": "/tmp/trader.heartbeat"
	},
	"account": {
		"name": "trader-1",
		"priceCurrency": "USD",
		"volumeCurrency": "BTC",
		"tolerances": {"USD": "0.01", "BTC": "0.00000001"},
		"skipRecentOrders": 2
	},
	"strategy": {
		"spread": "0.005",
		"volume": "0.1",
		"feeRate": "0.001",
		"tickDelayMs": 250
	},
	"venue": {
		"name": "simex",
		"feeRate": "0.001",
		"mid": "30000",
		"balances": {"USD": "10000", "BTC": "1"}
	},
	"database": {
		"host": "localhost",
		"database": "ledger"
	}
}`

func TestResolveSample(t *testing.T) {
	var cfg FileConfig
	require.NoError(t, json.Unmarshal([]byte(sampleConfig), &cfg))

	loaded, err := Resolve(cfg)
	require.NoError(t, err)

	assert.True(t, loaded.Harness.AuditEnabled)
	assert.Equal(t, 50, loaded.Harness.AuditTick)
	assert.Equal(t, 5*time.Second, loaded.Harness.BackoffStart)
	assert.Equal(t, "/tmp/trader.heartbeat", loaded.Harness.HeartbeatPath)

	assert.Equal(t, "trader-1", loaded.Account.Name)
	assert.Equal(t, []string{"USD", "BTC"}, loaded.Audit.Currencies)
	assert.Equal(t, "0.01", loaded.Audit.Tolerances["USD"].String())
	assert.Equal(t, 2, loaded.Audit.SkipRecentOrders)
	assert.True(t, loaded.Audit.RecordDrift)
	assert.Equal(t, "BTC", loaded.Audit.VolumeCurrency)

	assert.Equal(t, "0.005", loaded.Strategy.Spread.String())
	assert.Equal(t, "BTC 0.1", loaded.Strategy.Volume.String())
	assert.Equal(t, 250*time.Millisecond, loaded.Strategy.Delay)

	assert.Equal(t, "simex", loaded.Venue.Name)
	assert.Equal(t, "USD 30000", loaded.Venue.Mid.String())
	assert.Equal(t, "10000", loaded.Venue.Balances.Get("USD").Amount.String())

	assert.Equal(t, "ledger", loaded.Database.Database)
}

func TestResolveRejectsBadInput(t *testing.T) {
	valid := func() FileConfig {
		var cfg FileConfig
		require.NoError(t, json.Unmarshal([]byte(sampleConfig), &cfg))
		return cfg
	}

	testCases := []struct {
		desc   string
		mutate func(*FileConfig)
	}{
		{"missing account name", func(c *FileConfig) { c.Account.Name = "" }},
		{"missing currencies", func(c *FileConfig) { c.Account.PriceCurrency = "" }},
		{"garbage tolerance", func(c *FileConfig) { c.Account.Tolerances["USD"] = "lots" }},
		{"negative tolerance", func(c *FileConfig) { c.Account.Tolerances["USD"] = "-1" }},
		{"missing volume", func(c *FileConfig) { c.Strategy.Volume = "" }},
		{"zero volume", func(c *FileConfig) { c.Strategy.Volume = "0" }},
		{"garbage spread", func(c *FileConfig) { c.Strategy.Spread = "wide" }},
		{"missing venue name", func(c *FileConfig) { c.Venue.Name = "" }},
		{"garbage venue balance", func(c *FileConfig) { c.Venue.Balances["USD"] = "much" }},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)

			_, err := Resolve(cfg)
			require.Error(t, err)
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg FileConfig
	require.NoError(t, json.Unmarshal([]byte(sampleConfig), &cfg))
	cfg.Platform = PlatformConfig{}
	cfg.Strategy.TickDelayMS = 0
	cfg.Strategy.Spread = ""
	cfg.Strategy.FeeRate = ""

	loaded, err := Resolve(cfg)
	require.NoError(t, err)

	assert.True(t, loaded.Harness.AuditEnabled)
	assert.Zero(t, loaded.Harness.BackoffStart)
	assert.Equal(t, 5*time.Second, loaded.Strategy.Delay)
	assert.Equal(t, "0.002", loaded.Strategy.Spread.String())
	assert.True(t, loaded.Strategy.FeeRate.IsZero())
}
