package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and
// environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ListenAddr      string `mapstructure:"listen_addr"`
	MaintenanceMode bool   `mapstructure:"maintenance_mode"`

	EthRPCURL        string `mapstructure:"eth_rpc_url"`
	ChainID          uint64 `mapstructure:"chain_id"`
	ContractAddrSpec string `mapstructure:"contract_addresses"`
	// ContractAddresses maps a chain id to the deployed contract address.
	ContractAddresses map[uint64]string `mapstructure:"-"`
	// PrivateKey is optional; without it the service runs read-only and
	// every write is rejected locally.
	PrivateKey string `mapstructure:"private_key"`

	PinataJWT          string `mapstructure:"pinata_jwt"`
	PinataGateway      string `mapstructure:"pinata_gateway"`
	PinataGatewayToken string `mapstructure:"pinata_gateway_token"`
	PinataAPIBase      string `mapstructure:"pinata_api_base"`

	PageSize int `mapstructure:"page_size"`

	Confirmations         uint64        `mapstructure:"confirmations"`
	ConfirmPollSeconds    int64         `mapstructure:"confirm_poll_seconds"`
	ConfirmTimeoutSeconds int64         `mapstructure:"confirm_timeout_seconds"`
	ConfirmPollInterval   time.Duration `mapstructure:"-"`
	ConfirmTimeout        time.Duration `mapstructure:"-"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	NotifiersFile string `mapstructure:"notifiers_file"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "prism")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("maintenance_mode", false)
	v.SetDefault("page_size", 20)
	v.SetDefault("confirmations", 2)
	v.SetDefault("confirm_poll_seconds", 3)
	v.SetDefault("confirm_timeout_seconds", 180)
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("pinata_api_base", "https://api.pinata.cloud")
	v.SetDefault("notifiers_file", "")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/content.db")
	v.SetDefault("storage_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	// AutomaticEnv only resolves keys viper already knows about, so keys
	// without a default must be bound explicitly or Unmarshal never sees
	// their environment values.
	for _, key := range []string{
		"eth_rpc_url",
		"chain_id",
		"contract_addresses",
		"private_key",
		"pinata_jwt",
		"pinata_gateway",
		"pinata_gateway_token",
	} {
		_ = v.BindEnv(key)
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.EthRPCURL) == "" {
		return nil, fmt.Errorf("eth_rpc_url is required")
	}
	if cfg.ChainID == 0 {
		return nil, fmt.Errorf("chain_id is required")
	}

	addrs, err := ParseAddressTable(cfg.ContractAddrSpec)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("contract_addresses is required (chainid=0xaddr pairs)")
	}
	cfg.ContractAddresses = addrs

	if strings.TrimSpace(cfg.PinataGateway) == "" {
		return nil, fmt.Errorf("pinata_gateway is required")
	}

	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("invalid page_size (must be positive)")
	}
	if cfg.ConfirmPollSeconds <= 0 {
		return nil, fmt.Errorf("invalid confirm_poll_seconds (must be positive seconds)")
	}
	if cfg.ConfirmTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid confirm_timeout_seconds (must be positive seconds)")
	}
	cfg.ConfirmPollInterval = time.Duration(cfg.ConfirmPollSeconds) * time.Second
	cfg.ConfirmTimeout = time.Duration(cfg.ConfirmTimeoutSeconds) * time.Second

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// ParseAddressTable parses a "chainid=0xaddr,chainid=0xaddr" table into a map.
// Address validity is checked later by the contract address book; this only
// parses the structure.
func ParseAddressTable(spec string) (map[uint64]string, error) {
	out := make(map[uint64]string)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid contract_addresses entry %q (want chainid=0xaddr)", pair)
		}
		chainID, err := strconv.ParseUint(strings.TrimSpace(k), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id in contract_addresses entry %q: %w", pair, err)
		}
		addr := strings.TrimSpace(v)
		if addr == "" {
			return nil, fmt.Errorf("empty address in contract_addresses entry %q", pair)
		}
		if _, dup := out[chainID]; dup {
			return nil, fmt.Errorf("duplicate chain id %d in contract_addresses", chainID)
		}
		out[chainID] = addr
	}
	return out, nil
}
