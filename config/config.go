package config

import (
	"flag"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultThornodeURL      = "https://thornode.ninerealms.com"
	defaultZrxURL           = "https://api.0x.org"
	defaultSlippageBps      = 100
	defaultAffiliateBps     = 0
	defaultApprovalInterval = 5 * time.Second
	defaultConfirmInterval  = 10 * time.Second
	defaultJournalDir       = "./wal/trades"
	defaultEVMChainID       = "eip155:1"
	defaultQuoteTimeout     = 15 * time.Second
)

// Config is the validated engine configuration.
type Config struct {
	ThornodeURL        string
	ZrxURL             string
	EVMChainID         string
	EVMRPCURL          string
	SlippageBps        int64
	AffiliateBps       int64
	FeeRecipient       string
	ApprovalInterval   time.Duration
	ConfirmInterval    time.Duration
	MaxConfirmAttempts int
	JournalDir         string
	QuoteTimeout       time.Duration
}

// ConfigTmp is the yaml shape before validation and defaulting.
type ConfigTmp struct {
	ThornodeURL        string        `yaml:"thornode_url,omitempty"`
	ZrxURL             string        `yaml:"zrx_url,omitempty"`
	EVMChainID         string        `yaml:"evm_chain_id,omitempty"`
	EVMRPCURL          string        `yaml:"evm_rpc_url,omitempty"`
	SlippageBps        int64         `yaml:"slippage_bps,omitempty"`
	AffiliateBps       int64         `yaml:"affiliate_bps,omitempty"`
	FeeRecipient       string        `yaml:"fee_recipient,omitempty"`
	ApprovalInterval   time.Duration `yaml:"approval_poll_interval,omitempty"`
	ConfirmInterval    time.Duration `yaml:"confirm_poll_interval,omitempty"`
	MaxConfirmAttempts int           `yaml:"max_confirm_attempts,omitempty"`
	JournalDir         string        `yaml:"journal_dir,omitempty"`
	QuoteTimeout       time.Duration `yaml:"quote_timeout,omitempty"`
}

// Get loads configuration from the yaml file given by --config, falling back
// to CLI flags with defaults.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	thornodeURL := flag.String("thornode", defaultThornodeURL, "THORNode daemon url")
	zrxURL := flag.String("zrx", defaultZrxURL, "0x swap API url")
	evmChainID := flag.String("evmchain", defaultEVMChainID, "EVM chain id, example: eip155:1")
	evmRPCURL := flag.String("evmrpc", "", "EVM JSON-RPC url")
	slippageBps := flag.Int64("slippagebps", defaultSlippageBps, "slippage tolerance in basis points")
	affiliateBps := flag.Int64("affiliatebps", defaultAffiliateBps, "affiliate fee in basis points")
	journalDir := flag.String("journaldir", defaultJournalDir, "trade journal directory")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := Config{
		ThornodeURL:      *thornodeURL,
		ZrxURL:           *zrxURL,
		EVMChainID:       *evmChainID,
		EVMRPCURL:        *evmRPCURL,
		SlippageBps:      *slippageBps,
		AffiliateBps:     *affiliateBps,
		ApprovalInterval: defaultApprovalInterval,
		ConfirmInterval:  defaultConfirmInterval,
		JournalDir:       *journalDir,
		QuoteTimeout:     defaultQuoteTimeout,
	}

	return cfg, validate(cfg)
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config file")
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, errors.Wrap(err, "parse yaml config")
	}

	cfg := Config{
		ThornodeURL:        tmp.ThornodeURL,
		ZrxURL:             tmp.ZrxURL,
		EVMChainID:         tmp.EVMChainID,
		EVMRPCURL:          tmp.EVMRPCURL,
		SlippageBps:        tmp.SlippageBps,
		AffiliateBps:       tmp.AffiliateBps,
		FeeRecipient:       tmp.FeeRecipient,
		ApprovalInterval:   tmp.ApprovalInterval,
		ConfirmInterval:    tmp.ConfirmInterval,
		MaxConfirmAttempts: tmp.MaxConfirmAttempts,
		JournalDir:         tmp.JournalDir,
		QuoteTimeout:       tmp.QuoteTimeout,
	}

	if cfg.ThornodeURL == "" {
		cfg.ThornodeURL = defaultThornodeURL
	}
	if cfg.ZrxURL == "" {
		cfg.ZrxURL = defaultZrxURL
	}
	if cfg.EVMChainID == "" {
		cfg.EVMChainID = defaultEVMChainID
	}
	if cfg.SlippageBps == 0 {
		cfg.SlippageBps = defaultSlippageBps
	}
	if cfg.ApprovalInterval == 0 {
		cfg.ApprovalInterval = defaultApprovalInterval
	}
	if cfg.ConfirmInterval == 0 {
		cfg.ConfirmInterval = defaultConfirmInterval
	}
	if cfg.JournalDir == "" {
		cfg.JournalDir = defaultJournalDir
	}
	if cfg.QuoteTimeout == 0 {
		cfg.QuoteTimeout = defaultQuoteTimeout
	}

	return cfg, validate(cfg)
}

func validate(cfg Config) error {
	if cfg.SlippageBps < 0 || cfg.SlippageBps >= 10_000 {
		return errors.Errorf("slippage_bps must be in [0, 10000), got %d", cfg.SlippageBps)
	}
	if cfg.AffiliateBps < 0 || cfg.AffiliateBps >= 10_000 {
		return errors.Errorf("affiliate_bps must be in [0, 10000), got %d", cfg.AffiliateBps)
	}
	if cfg.MaxConfirmAttempts < 0 {
		return errors.Errorf("max_confirm_attempts must not be negative, got %d", cfg.MaxConfirmAttempts)
	}
	return nil
}
