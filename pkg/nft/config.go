package nft

import (
	"time"

	"github.com/code-payments/code-nft/pkg/config"
	"github.com/code-payments/code-nft/pkg/config/env"
	"github.com/code-payments/code-nft/pkg/config/memory"
	"github.com/code-payments/code-nft/pkg/config/wrapper"
)

const (
	envConfigPrefix = "NFT_MINTER_"

	SubmitAttemptsConfigEnvName = envConfigPrefix + "SUBMIT_ATTEMPTS"
	defaultSubmitAttempts       = 3

	SubmitBackoffConfigEnvName = envConfigPrefix + "SUBMIT_BACKOFF"
	defaultSubmitBackoff       = 500 * time.Millisecond

	MaxMarkerScanConfigEnvName = envConfigPrefix + "MAX_MARKER_SCAN"
	defaultMaxMarkerScan       = 4096

	PrintNextAttemptsConfigEnvName = envConfigPrefix + "PRINT_NEXT_ATTEMPTS"
	defaultPrintNextAttempts       = 3

	// Transactions per second, with 0 disabling the limit
	SubmitRateLimitConfigEnvName = envConfigPrefix + "SUBMIT_RATE_LIMIT"
	defaultSubmitRateLimit       = 0
)

type conf struct {
	submitAttempts    config.Uint64
	submitBackoff     config.Duration
	maxMarkerScan     config.Uint64
	printNextAttempts config.Uint64
	submitRateLimit   config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			submitAttempts:    env.NewUint64Config(SubmitAttemptsConfigEnvName, defaultSubmitAttempts),
			submitBackoff:     env.NewDurationConfig(SubmitBackoffConfigEnvName, defaultSubmitBackoff),
			maxMarkerScan:     env.NewUint64Config(MaxMarkerScanConfigEnvName, defaultMaxMarkerScan),
			printNextAttempts: env.NewUint64Config(PrintNextAttemptsConfigEnvName, defaultPrintNextAttempts),
			submitRateLimit:   env.NewUint64Config(SubmitRateLimitConfigEnvName, defaultSubmitRateLimit),
		}
	}
}

type testOverrides struct {
	submitAttempts  uint64
	maxMarkerScan   uint64
	submitRateLimit uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	submitAttempts := uint64(defaultSubmitAttempts)
	if overrides.submitAttempts > 0 {
		submitAttempts = overrides.submitAttempts
	}

	maxMarkerScan := uint64(defaultMaxMarkerScan)
	if overrides.maxMarkerScan > 0 {
		maxMarkerScan = overrides.maxMarkerScan
	}

	return func() *conf {
		return &conf{
			submitAttempts:    wrapper.NewUint64Config(memory.NewConfig(submitAttempts), submitAttempts),
			submitBackoff:     wrapper.NewDurationConfig(memory.NewConfig(time.Millisecond), time.Millisecond),
			maxMarkerScan:     wrapper.NewUint64Config(memory.NewConfig(maxMarkerScan), maxMarkerScan),
			printNextAttempts: wrapper.NewUint64Config(memory.NewConfig(uint64(defaultPrintNextAttempts)), defaultPrintNextAttempts),
			submitRateLimit:   wrapper.NewUint64Config(memory.NewConfig(overrides.submitRateLimit), overrides.submitRateLimit),
		}
	}
}
