// Package wallet holds wallet address helpers shared by the services.
package wallet

import (
	"fmt"
	"strings"
)

// maxAddressHexLen is the hex digit count of a full 32-byte account address.
const maxAddressHexLen = 64

// NormalizeAddress lowercases an address for storage and comparison.
// Addresses are always stored and matched in lowercase.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ValidateAddress checks that addr looks like an on-chain account address:
// a 0x prefix followed by 1..64 hex digits. The services accept any address
// of this shape, registered or not.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address is empty")
	}
	if !strings.HasPrefix(addr, "0x") {
		return fmt.Errorf("address %q missing 0x prefix", addr)
	}
	digits := addr[2:]
	if len(digits) == 0 || len(digits) > maxAddressHexLen {
		return fmt.Errorf("address %q has invalid length", addr)
	}
	for _, c := range digits {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return fmt.Errorf("address %q contains non-hex character %q", addr, c)
		}
	}
	return nil
}
