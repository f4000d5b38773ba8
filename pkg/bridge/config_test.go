package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithEnvConfigs(t *testing.T) {
	ctx := context.Background()

	c := WithEnvConfigs()()
	assert.EqualValues(t, 5000, c.lamportsPerSignature.Get(ctx))
	assert.Equal(t, defaultTokenProgram, c.defaultTokenProgram.Get(ctx))
	assert.EqualValues(t, 3, c.rpcMaxRetries.Get(ctx))
	assert.EqualValues(t, 0, c.rpcRequestsPerSecond.Get(ctx))
	assert.Equal(t, 30*time.Second, c.rpcTimeout.Get(ctx))

	t.Setenv(LamportsPerSignatureConfigEnvName, "10000")
	t.Setenv(RpcTimeoutConfigEnvName, "5s")
	t.Setenv(RpcRequestsPerSecondConfigEnvName, "2.5")

	c = WithEnvConfigs()()
	assert.EqualValues(t, 10000, c.lamportsPerSignature.Get(ctx))
	assert.Equal(t, 5*time.Second, c.rpcTimeout.Get(ctx))
	assert.EqualValues(t, 2.5, c.rpcRequestsPerSecond.Get(ctx))

	// Unparseable values fall back to the last known value.
	t.Setenv(LamportsPerSignatureConfigEnvName, "lots")
	c = WithEnvConfigs()()
	assert.EqualValues(t, 5000, c.lamportsPerSignature.Get(ctx))
}

func TestWithOverrides(t *testing.T) {
	ctx := context.Background()

	c := WithOverrides(Overrides{})()
	assert.EqualValues(t, 5000, c.lamportsPerSignature.Get(ctx))
	assert.Equal(t, defaultTokenProgram, c.defaultTokenProgram.Get(ctx))

	c = WithOverrides(Overrides{
		LamportsPerSignature: 7,
		DefaultTokenProgram:  systemProgramID,
		RpcMaxRetries:        1,
		RpcTimeout:           time.Second,
	})()
	assert.EqualValues(t, 7, c.lamportsPerSignature.Get(ctx))
	assert.Equal(t, systemProgramID, c.defaultTokenProgram.Get(ctx))
	assert.EqualValues(t, 1, c.rpcMaxRetries.Get(ctx))
	assert.Equal(t, time.Second, c.rpcTimeout.Get(ctx))
}
