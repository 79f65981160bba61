package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"

	"github.com/splitme/splitme/internal/models"
)

// ErrNoDeployment is returned when a network has no deployment record.
var ErrNoDeployment = errors.New("no deployment record")

// RecordPath returns the path of the main deployment record of a network.
func RecordPath(dir, network string) string {
	return filepath.Join(dir, network+".json")
}

// BalanceCheckerRecordPath returns the path of the BalanceChecker record,
// kept apart from the main record.
func BalanceCheckerRecordPath(dir, network string) string {
	return filepath.Join(dir, "balance-checker-"+network+".json")
}

// WriteRecord saves a deployment record, creating dir if needed.
func WriteRecord(dir string, d *models.Deployment) error {
	return writeJSON(dir, RecordPath(dir, d.Network), d)
}

// WriteBalanceCheckerRecord saves a BalanceChecker deployment record.
func WriteBalanceCheckerRecord(dir string, d *models.BalanceCheckerDeployment) error {
	return writeJSON(dir, BalanceCheckerRecordPath(dir, d.Network), d)
}

func writeJSON(dir, path string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create deployments directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode deployment record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write deployment record: %w", err)
	}
	return nil
}

// LoadRecord reads and validates the deployment record of a network.
func LoadRecord(dir, network string) (*models.Deployment, error) {
	data, err := os.ReadFile(RecordPath(dir, network))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for network %s", ErrNoDeployment, network)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment record: %w", err)
	}

	var d models.Deployment
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode deployment record: %w", err)
	}
	if !common.IsHexAddress(d.SplitMeAddress) {
		return nil, fmt.Errorf("deployment record %s: invalid splitMeAddress %q", network, d.SplitMeAddress)
	}
	if !common.IsHexAddress(d.ExpenseTokenAddress) {
		return nil, fmt.Errorf("deployment record %s: invalid expenseTokenAddress %q", network, d.ExpenseTokenAddress)
	}
	return &d, nil
}
