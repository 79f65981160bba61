package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownNetwork is returned when no network has the requested name.
var ErrUnknownNetwork = errors.New("unknown network")

// Network describes one chain the contracts can live on.
type Network struct {
	Name        string `yaml:"name"`
	ChainID     uint64 `yaml:"chainId"`
	RPCURL      string `yaml:"rpcUrl"`
	ExplorerURL string `yaml:"explorerUrl"`
	// GasPrice in wei. Zero lets the node suggest one.
	GasPrice uint64 `yaml:"gasPrice"`
}

// GasPriceWei returns the fixed gas price, or nil when the node should
// suggest one.
func (n Network) GasPriceWei() *big.Int {
	if n.GasPrice == 0 {
		return nil
	}
	return new(big.Int).SetUint64(n.GasPrice)
}

// TxURL links a transaction on the network's explorer, or returns "" when
// the network has no explorer.
func (n Network) TxURL(txHash string) string {
	if n.ExplorerURL == "" {
		return ""
	}
	return n.ExplorerURL + "/tx/" + txHash
}

// DefaultNetworks returns the built-in network definitions.
func DefaultNetworks() map[string]Network {
	return map[string]Network{
		"morphHolesky": {
			Name:        "morphHolesky",
			ChainID:     2810,
			RPCURL:      "https://rpc-quicknode-holesky.morphl2.io",
			ExplorerURL: "https://explorer-holesky.morphl2.io",
			GasPrice:    2_000_000_000,
		},
		"morphMainnet": {
			Name:        "morphMainnet",
			ChainID:     2818,
			RPCURL:      "https://rpc.morphl2.io",
			ExplorerURL: "https://explorer.morphl2.io",
		},
		"localhost": {
			Name:    "localhost",
			ChainID: 31337,
			RPCURL:  "http://127.0.0.1:8545",
		},
	}
}

type networksFile struct {
	Networks []Network `yaml:"networks"`
}

// LoadNetworks returns the built-in networks overlaid with the ones defined
// in path. An empty path returns the built-ins. Fields left out in the file
// keep their built-in values.
func LoadNetworks(path string) (map[string]Network, error) {
	networks := DefaultNetworks()
	if path == "" {
		return networks, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks file: %w", err)
	}
	var file networksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse networks file: %w", err)
	}

	for _, n := range file.Networks {
		if n.Name == "" {
			return nil, errors.New("networks file: network without a name")
		}
		base, ok := networks[n.Name]
		if !ok {
			if n.ChainID == 0 || n.RPCURL == "" {
				return nil, fmt.Errorf("networks file: %s needs chainId and rpcUrl", n.Name)
			}
			networks[n.Name] = n
			continue
		}
		if n.ChainID != 0 {
			base.ChainID = n.ChainID
		}
		if n.RPCURL != "" {
			base.RPCURL = n.RPCURL
		}
		if n.ExplorerURL != "" {
			base.ExplorerURL = n.ExplorerURL
		}
		if n.GasPrice != 0 {
			base.GasPrice = n.GasPrice
		}
		networks[n.Name] = base
	}
	return networks, nil
}
