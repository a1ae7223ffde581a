// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validConfigJSON = `{
    "rpc_url": "http://127.0.0.1:8899",
    "wallet_path": "keys/minter.keypair",
    "commitment": "finalized",
    "airdrop_lamports": 2000000000,
    "funding_poll_ms": 250,
    "funding_max_polls": 10,
    "compute_unit_price": 1000,
    "token": {
        "name": "Test Coin",
        "symbol": "TST",
        "uri": "https://example.com/nft.json",
        "seller_fee_basis_points": 500
    },
    "snapshot_source": "pre_upgrade",
    "debug_logging": true
}`

func setupTestConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))
	return configPath
}

func validConfig() *Config {
	return &Config{
		RPCURL:           "https://api.devnet.solana.com",
		WalletPath:       "wallet.keypair",
		Commitment:       "confirmed",
		RequestTimeoutMs: 1000,
		ConfirmTimeoutMs: 1000,
		ConfirmPollMs:    100,
		AirdropLamports:  1,
		FundingPollMs:    100,
		FundingMaxPolls:  3,
		Token: TokenConfig{
			Name:   "Will Coin",
			Symbol: "W",
			URI:    "https://solana.com",
		},
		SnapshotSource: SnapshotFresh,
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name:    "Valid config",
			content: validConfigJSON,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://127.0.0.1:8899", cfg.RPCURL)
				assert.Equal(t, "keys/minter.keypair", cfg.WalletPath)
				assert.Equal(t, "finalized", cfg.Commitment)
				assert.Equal(t, uint64(2_000_000_000), cfg.AirdropLamports)
				assert.Equal(t, 250*time.Millisecond, cfg.FundingPollInterval())
				assert.Equal(t, 10, cfg.FundingMaxPolls)
				assert.Equal(t, uint64(1000), cfg.ComputeUnitPrice)
				assert.Equal(t, "Test Coin", cfg.Token.Name)
				assert.Equal(t, "TST", cfg.Token.Symbol)
				assert.Equal(t, uint16(500), cfg.Token.SellerFeeBasisPoints)
				assert.Equal(t, SnapshotPreUpgrade, cfg.SnapshotSource)
				assert.True(t, cfg.DebugLogging)
				// не заданные в файле ключи берутся из значений по умолчанию
				assert.Equal(t, DefaultRequestTimeoutMs, cfg.RequestTimeoutMs)
				assert.Equal(t, DefaultLogFile, cfg.LogFile)
			},
		},
		{
			name:    "Name too long",
			content: `{"token": {"name": "abcdefghijklmnopqrstuvwxyz0123456789"}}`,
			wantErr: true,
		},
		{
			name:    "Unknown snapshot source",
			content: `{"snapshot_source": "cached"}`,
			wantErr: true,
		},
		{
			name:    "Invalid JSON syntax",
			content: "{invalid json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(setupTestConfig(t, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigWithDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultRPCURL, cfg.RPCURL)
	assert.Equal(t, DefaultWalletPath, cfg.WalletPath)
	assert.Equal(t, uint64(DefaultAirdropLamports), cfg.AirdropLamports)
	assert.Equal(t, time.Second, cfg.FundingPollInterval())
	assert.Equal(t, DefaultFundingMaxPolls, cfg.FundingMaxPolls)
	assert.Equal(t, "Will Coin", cfg.Token.Name)
	assert.Equal(t, "W", cfg.Token.Symbol)
	assert.Equal(t, "https://solana.com", cfg.Token.URI)
	assert.Zero(t, cfg.Token.SellerFeeBasisPoints)
	assert.Equal(t, SnapshotFresh, cfg.SnapshotSource)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, time.Minute, cfg.ConfirmTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.ConfirmPollInterval())
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("NFT_MINT_RPC_URL", "http://localhost:8899")
	t.Setenv("NFT_MINT_FUNDING_MAX_POLLS", "5")
	t.Setenv("NFT_MINT_TOKEN_SYMBOL", "ENV")

	cfg, err := LoadConfig(setupTestConfig(t, `{"rpc_url": "https://file.example.com"}`))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8899", cfg.RPCURL)
	assert.Equal(t, 5, cfg.FundingMaxPolls)
	assert.Equal(t, "ENV", cfg.Token.Symbol)
	assert.Equal(t, DefaultTokenName, cfg.Token.Name)
}

func TestConfigValidationDetails(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Config)
		expectedError string
	}{
		{
			name:          "Invalid RPC URL",
			mutate:        func(c *Config) { c.RPCURL = "invalid-url" },
			expectedError: "invalid RPC URL protocol",
		},
		{
			name:          "Websocket RPC URL",
			mutate:        func(c *Config) { c.RPCURL = "wss://api.devnet.solana.com" },
			expectedError: "invalid RPC URL protocol",
		},
		{
			name: "No identity source",
			mutate: func(c *Config) {
				c.WalletPath = ""
				c.PrivateKey = ""
			},
			expectedError: "either wallet_path or private_key must be set",
		},
		{
			name:          "Zero funding polls",
			mutate:        func(c *Config) { c.FundingMaxPolls = 0 },
			expectedError: "invalid funding_max_polls",
		},
		{
			name:          "Zero airdrop",
			mutate:        func(c *Config) { c.AirdropLamports = 0 },
			expectedError: "invalid airdrop_lamports",
		},
		{
			name:          "Symbol too long",
			mutate:        func(c *Config) { c.Token.Symbol = "ELEVENCHARS" },
			expectedError: "token.symbol exceeds 10 bytes",
		},
		{
			name:          "Fee above 100%",
			mutate:        func(c *Config) { c.Token.SellerFeeBasisPoints = 10001 },
			expectedError: "invalid token.seller_fee_basis_points",
		},
		{
			name:          "Bad commitment",
			mutate:        func(c *Config) { c.Commitment = "max" },
			expectedError: `invalid commitment "max"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Equal(t, tt.expectedError, err.Error())
		})
	}

	assert.NoError(t, validateConfig(validConfig()))
}
