package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrInvalidTxHash = errors.New("invalid transaction hash")

// ParseTxHash validates a 0x-prefixed 32-byte transaction hash and returns
// it lowercased. An empty string is returned unchanged.
func ParseTxHash(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidTxHash, s)
	}
	return common.BytesToHash(b).Hex(), nil
}
