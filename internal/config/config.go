// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config описывает все настройки минтинга.
type Config struct {
	RPCURL           string      `mapstructure:"rpc_url"`
	WalletPath       string      `mapstructure:"wallet_path"`
	PrivateKey       string      `mapstructure:"private_key"`
	Commitment       string      `mapstructure:"commitment"`
	RequestTimeoutMs int         `mapstructure:"request_timeout_ms"`
	ConfirmTimeoutMs int         `mapstructure:"confirm_timeout_ms"`
	ConfirmPollMs    int         `mapstructure:"confirm_poll_ms"`
	AirdropLamports  uint64      `mapstructure:"airdrop_lamports"`
	FundingPollMs    int         `mapstructure:"funding_poll_ms"`
	FundingMaxPolls  int         `mapstructure:"funding_max_polls"`
	ComputeUnitLimit uint32      `mapstructure:"compute_unit_limit"`
	ComputeUnitPrice uint64      `mapstructure:"compute_unit_price"`
	Token            TokenConfig `mapstructure:"token"`
	SnapshotSource   string      `mapstructure:"snapshot_source"`
	DebugLogging     bool        `mapstructure:"debug_logging"`
	LogFile          string      `mapstructure:"log_file"`
}

// TokenConfig содержит поля метаданных NFT.
type TokenConfig struct {
	Name                 string `mapstructure:"name"`
	Symbol               string `mapstructure:"symbol"`
	URI                  string `mapstructure:"uri"`
	SellerFeeBasisPoints uint16 `mapstructure:"seller_fee_basis_points"`
}

const (
	DefaultRPCURL           = "https://api.devnet.solana.com"
	DefaultWalletPath       = "wallet.keypair"
	DefaultCommitment       = "confirmed"
	DefaultRequestTimeoutMs = 30000
	DefaultConfirmTimeoutMs = 60000
	DefaultConfirmPollMs    = 500
	DefaultAirdropLamports  = 10_000_000_000
	DefaultFundingPollMs    = 1000
	DefaultFundingMaxPolls  = 60
	DefaultTokenName        = "Will Coin"
	DefaultTokenSymbol      = "W"
	DefaultTokenURI         = "https://solana.com"
	DefaultLogFile          = "nft-mint.log"

	SnapshotFresh      = "fresh"
	SnapshotPreUpgrade = "pre_upgrade"

	// Ограничения программы метаданных
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
	MaxBasisPoints  = 10000

	envPrefix = "NFT_MINT"
)

// LoadConfig читает конфигурацию из файла (если путь задан), применяет
// значения по умолчанию и переменные окружения NFT_MINT_*.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_url":                       DefaultRPCURL,
		"wallet_path":                   DefaultWalletPath,
		"private_key":                   "",
		"commitment":                    DefaultCommitment,
		"request_timeout_ms":            DefaultRequestTimeoutMs,
		"confirm_timeout_ms":            DefaultConfirmTimeoutMs,
		"confirm_poll_ms":               DefaultConfirmPollMs,
		"airdrop_lamports":              uint64(DefaultAirdropLamports),
		"funding_poll_ms":               DefaultFundingPollMs,
		"funding_max_polls":             DefaultFundingMaxPolls,
		"compute_unit_limit":            0,
		"compute_unit_price":            0,
		"token.name":                    DefaultTokenName,
		"token.symbol":                  DefaultTokenSymbol,
		"token.uri":                     DefaultTokenURI,
		"token.seller_fee_basis_points": 0,
		"snapshot_source":               SnapshotFresh,
		"debug_logging":                 false,
		"log_file":                      DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	if cfg.WalletPath == "" && cfg.PrivateKey == "" {
		return errors.New("either wallet_path or private_key must be set")
	}
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid commitment %q", cfg.Commitment)
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if err := validateToken(&cfg.Token); err != nil {
		return err
	}
	switch cfg.SnapshotSource {
	case SnapshotFresh, SnapshotPreUpgrade:
	default:
		return fmt.Errorf("invalid snapshot_source %q", cfg.SnapshotSource)
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.RequestTimeoutMs <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.ConfirmTimeoutMs <= 0 {
		return errors.New("invalid confirm_timeout_ms")
	}
	if cfg.ConfirmPollMs <= 0 {
		return errors.New("invalid confirm_poll_ms")
	}
	if cfg.AirdropLamports == 0 {
		return errors.New("invalid airdrop_lamports")
	}
	if cfg.FundingPollMs <= 0 {
		return errors.New("invalid funding_poll_ms")
	}
	if cfg.FundingMaxPolls <= 0 {
		return errors.New("invalid funding_max_polls")
	}
	return nil
}

func validateToken(t *TokenConfig) error {
	if t.Name == "" {
		return errors.New("token.name is empty")
	}
	if len(t.Name) > MaxNameLength {
		return fmt.Errorf("token.name exceeds %d bytes", MaxNameLength)
	}
	if len(t.Symbol) > MaxSymbolLength {
		return fmt.Errorf("token.symbol exceeds %d bytes", MaxSymbolLength)
	}
	if len(t.URI) > MaxURILength {
		return fmt.Errorf("token.uri exceeds %d bytes", MaxURILength)
	}
	if t.SellerFeeBasisPoints > MaxBasisPoints {
		return errors.New("invalid token.seller_fee_basis_points")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// RequestTimeout возвращает таймаут одного RPC-запроса.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// ConfirmTimeout возвращает предельное время ожидания подтверждения.
func (c *Config) ConfirmTimeout() time.Duration {
	return time.Duration(c.ConfirmTimeoutMs) * time.Millisecond
}

// ConfirmPollInterval возвращает интервал опроса статуса подписи.
func (c *Config) ConfirmPollInterval() time.Duration {
	return time.Duration(c.ConfirmPollMs) * time.Millisecond
}

// FundingPollInterval возвращает интервал опроса баланса после airdrop.
func (c *Config) FundingPollInterval() time.Duration {
	return time.Duration(c.FundingPollMs) * time.Millisecond
}
