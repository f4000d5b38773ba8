package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/code-payments/solana-bridge/pkg/bridge"
	"github.com/code-payments/solana-bridge/pkg/solana"
)

// Config is the CLI configuration, read from an optional config file, the
// environment and flags, in increasing order of precedence.
type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	RpcEndpoint string `mapstructure:"rpc_endpoint"`
	Environment string `mapstructure:"environment"`
	Commitment  string `mapstructure:"commitment"`
}

var defaultConfig = Config{
	LogLevel:    "warn",
	Environment: "dev",
	Commitment:  "confirmed",
}

func init() {
	_ = viper.BindEnv("log_level", "SOLBRIDGE_LOG_LEVEL")
	_ = viper.BindEnv("rpc_endpoint", "SOLBRIDGE_RPC_ENDPOINT")
	_ = viper.BindEnv("environment", "SOLBRIDGE_ENVIRONMENT")
	_ = viper.BindEnv("commitment", "SOLBRIDGE_COMMITMENT")
}

func bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("rpc_endpoint", flags.Lookup("rpc-endpoint"))
	_ = viper.BindPFlag("environment", flags.Lookup("environment"))
	_ = viper.BindPFlag("commitment", flags.Lookup("commitment"))
	_ = viper.BindPFlag("config", flags.Lookup("config"))
}

func loadConfig() (Config, error) {
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return Config{}, errors.Wrap(err, "failed to load config")
		}
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}
	if config.Environment == "" {
		config.Environment = defaultConfig.Environment
	}
	if config.Commitment == "" {
		config.Commitment = defaultConfig.Commitment
	}
	return config, nil
}

// Logs go to stderr; stdout carries command output.
func configureLogger(config Config) {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}

func (c Config) endpoint() (string, error) {
	if c.RpcEndpoint != "" {
		return c.RpcEndpoint, nil
	}

	env, err := solana.EnvironmentFromName(c.Environment)
	if err != nil {
		return "", err
	}
	return string(env), nil
}

func newRpcClient() (*bridge.RpcClient, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	endpoint, err := config.endpoint()
	if err != nil {
		return nil, err
	}

	logrus.StandardLogger().WithFields(logrus.Fields{
		"type":       "solbridge",
		"endpoint":   endpoint,
		"commitment": config.Commitment,
	}).Debug("connecting")

	return bridge.NewRpcClient(endpoint, config.Commitment, bridge.WithEnvConfigs())
}
