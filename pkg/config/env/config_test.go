package env

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/solana-bridge/pkg/config"
)

func TestConfig(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"

	c := NewConfig(env)

	t.Setenv(env, "default")
	v, err := c.Get(context.Background())
	assert.Equal(t, []byte("default"), v)
	assert.Nil(t, err)

	t.Setenv(env, "")
	v, err = c.Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfig(t *testing.T) {
	const env = "env_typed_config_test_var"

	c := NewUint64Config(env, 5000)
	assert.EqualValues(t, 5000, c.Get(context.Background()))

	t.Setenv("ENV_TYPED_CONFIG_TEST_VAR", "10000")
	assert.EqualValues(t, 10000, c.Get(context.Background()))
}
