// Package wallet holds the address, amount and signature rules shared by the
// API, the ledger and the chain tooling.
package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidAddress = errors.New("invalid wallet address")

// ParseAddress validates a 0x-prefixed hex address and returns its EIP-55
// checksum form. All-lowercase and all-uppercase input is accepted; mixed
// case must match the checksum. The zero address is rejected.
func ParseAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return "", fmt.Errorf("%w: zero address", ErrInvalidAddress)
	}
	checksummed := addr.Hex()
	body := s[2:]
	if body != strings.ToLower(body) && body != strings.ToUpper(body) && body != checksummed[2:] {
		return "", fmt.Errorf("%w: bad checksum %q", ErrInvalidAddress, s)
	}
	return checksummed, nil
}

// ParseAddresses validates every address and drops duplicates, keeping the
// first occurrence order.
func ParseAddresses(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		addr, err := ParseAddress(s)
		if err != nil {
			return nil, err
		}
		if seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out, nil
}

// SameAddress compares two addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ShortAddress renders an address as 0x1234...abcd for log lines and labels.
func ShortAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
