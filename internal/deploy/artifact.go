// Package deploy deploys the ExpenseToken and SplitMe contracts from Hardhat
// build artifacts and keeps the per-network deployment records.
package deploy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Contract names as they appear in the Hardhat artifacts tree.
const (
	ExpenseTokenContract   = "ExpenseToken"
	SplitMeContract        = "SplitMe"
	BalanceCheckerContract = "BalanceChecker"
)

// ErrNoBytecode is returned for artifacts of interfaces or abstract contracts.
var ErrNoBytecode = errors.New("artifact has no bytecode")

// Artifact is the deployable part of a Hardhat build artifact.
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	Bytecode     []byte
}

type hardhatArtifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// ArtifactPath returns where Hardhat writes the artifact of a contract
// compiled from contracts/<name>.sol.
func ArtifactPath(artifactsDir, name string) string {
	return filepath.Join(artifactsDir, "contracts", name+".sol", name+".json")
}

// LoadArtifact reads the artifact of a named contract.
func LoadArtifact(artifactsDir, name string) (*Artifact, error) {
	path := ArtifactPath(artifactsDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	art, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return art, nil
}

// ParseArtifact decodes a Hardhat artifact.
func ParseArtifact(data []byte) (*Artifact, error) {
	var raw hardhatArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if len(raw.ABI) == 0 {
		return nil, errors.New("artifact has no abi")
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi: %w", err)
	}
	if raw.Bytecode == "" || raw.Bytecode == "0x" {
		return nil, ErrNoBytecode
	}
	code, err := hexutil.Decode(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bytecode: %w", err)
	}

	return &Artifact{
		ContractName: raw.ContractName,
		ABI:          parsed,
		Bytecode:     code,
	}, nil
}
