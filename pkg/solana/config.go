package solana

import (
	"strings"

	"github.com/pkg/errors"
)

// Environment is the public RPC endpoint of a cluster.
type Environment string

const (
	EnvironmentLocal Environment = "http://localhost:8899"
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
)

// EnvironmentFromName resolves a cluster name, such as "devnet" or
// "mainnet-beta", to its Environment.
func EnvironmentFromName(name string) (Environment, error) {
	switch strings.ToLower(name) {
	case "local", "localnet", "localhost":
		return EnvironmentLocal, nil
	case "dev", "devnet":
		return EnvironmentDev, nil
	case "test", "testnet":
		return EnvironmentTest, nil
	case "prod", "mainnet", "mainnet-beta":
		return EnvironmentProd, nil
	default:
		return "", errors.Errorf("unknown environment %q", name)
	}
}
