package bridge

import (
	"time"

	"github.com/code-payments/solana-bridge/pkg/config"
	"github.com/code-payments/solana-bridge/pkg/config/env"
	"github.com/code-payments/solana-bridge/pkg/config/memory"
	"github.com/code-payments/solana-bridge/pkg/config/wrapper"
	"github.com/code-payments/solana-bridge/pkg/solana"
	"github.com/code-payments/solana-bridge/pkg/solana/token"
)

const (
	envConfigPrefix = "SOLBRIDGE_"

	LamportsPerSignatureConfigEnvName = envConfigPrefix + "LAMPORTS_PER_SIGNATURE"
	defaultLamportsPerSignature       = 5000

	DefaultTokenProgramConfigEnvName = envConfigPrefix + "DEFAULT_TOKEN_PROGRAM"

	RpcMaxRetriesConfigEnvName = envConfigPrefix + "RPC_MAX_RETRIES"
	defaultRpcMaxRetries       = 3

	RpcRequestsPerSecondConfigEnvName = envConfigPrefix + "RPC_REQUESTS_PER_SECOND"
	defaultRpcRequestsPerSecond       = 0

	RpcTimeoutConfigEnvName = envConfigPrefix + "RPC_TIMEOUT"
	defaultRpcTimeout       = 30 * time.Second
)

var defaultTokenProgram = solana.Base58(token.ProgramKey)

type conf struct {
	lamportsPerSignature config.Uint64
	defaultTokenProgram  config.String
	rpcMaxRetries        config.Uint64
	rpcRequestsPerSecond config.Float64
	rpcTimeout           config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			lamportsPerSignature: env.NewUint64Config(LamportsPerSignatureConfigEnvName, defaultLamportsPerSignature),
			defaultTokenProgram:  env.NewStringConfig(DefaultTokenProgramConfigEnvName, defaultTokenProgram),
			rpcMaxRetries:        env.NewUint64Config(RpcMaxRetriesConfigEnvName, defaultRpcMaxRetries),
			rpcRequestsPerSecond: env.NewFloat64Config(RpcRequestsPerSecondConfigEnvName, defaultRpcRequestsPerSecond),
			rpcTimeout:           env.NewDurationConfig(RpcTimeoutConfigEnvName, defaultRpcTimeout),
		}
	}
}

// Overrides pins config values, typically in tests. Zero fields keep their
// defaults.
type Overrides struct {
	LamportsPerSignature uint64
	DefaultTokenProgram  string
	RpcMaxRetries        uint64
	RpcRequestsPerSecond float64
	RpcTimeout           time.Duration
}

// WithOverrides returns in memory configuration built from overrides.
func WithOverrides(overrides Overrides) ConfigProvider {
	return func() *conf {
		return &conf{
			lamportsPerSignature: wrapper.NewUint64Config(memory.NewOptional(overrides.LamportsPerSignature), defaultLamportsPerSignature),
			defaultTokenProgram:  wrapper.NewStringConfig(memory.NewOptional(overrides.DefaultTokenProgram), defaultTokenProgram),
			rpcMaxRetries:        wrapper.NewUint64Config(memory.NewOptional(overrides.RpcMaxRetries), defaultRpcMaxRetries),
			rpcRequestsPerSecond: wrapper.NewFloat64Config(memory.NewOptional(overrides.RpcRequestsPerSecond), defaultRpcRequestsPerSecond),
			rpcTimeout:           wrapper.NewDurationConfig(memory.NewOptional(overrides.RpcTimeout), defaultRpcTimeout),
		}
	}
}
