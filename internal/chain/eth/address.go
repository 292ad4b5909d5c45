// Package eth holds the Ethereum-specific pieces of the payout flow:
// address validation, the ERC-20 transfer encoding and the token registry.
package eth

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// IsValidAddress checks if the address is a valid Ethereum address format.
// This validates the format (40 hex chars with 0x prefix) but does not validate checksum.
func IsValidAddress(address string) bool {
	if len(address) != 42 || !strings.HasPrefix(address, "0x") {
		return false
	}
	for _, c := range address[2:] {
		if !isHexChar(c) {
			return false
		}
	}
	return true
}

// ToChecksumAddress converts an Ethereum address to EIP-55 checksum format.
// If the input is invalid, it returns the original input unchanged.
func ToChecksumAddress(address string) string {
	if !IsValidAddress(address) {
		return address
	}

	addr := strings.ToLower(address[2:])

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(addr))
	hash := hex.EncodeToString(hasher.Sum(nil))

	result := make([]byte, 42)
	result[0] = '0'
	result[1] = 'x'

	for i := 0; i < 40; i++ {
		c := addr[i]
		if hash[i] >= '8' && c >= 'a' && c <= 'f' {
			//nolint:gosec // Safe: i bounded by loop [0,40), result size is 42
			result[i+2] = c - 32
		} else {
			//nolint:gosec // Safe: i bounded by loop [0,40), result size is 42
			result[i+2] = c
		}
	}

	return string(result)
}

// ValidateAddress checks format and, for mixed-case input, the EIP-55 checksum.
// All lowercase and all uppercase addresses are accepted as non-checksummed.
// Every failure is ErrInvalidAddress naming the offending address.
func ValidateAddress(address string) error {
	if !IsValidAddress(address) {
		return wiserr.WithDetails(wiserr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}

	addrPart := address[2:]
	if addrPart == strings.ToLower(addrPart) || addrPart == strings.ToUpper(addrPart) {
		return nil
	}

	if expected := ToChecksumAddress(address); address != expected {
		return wiserr.WithSuggestion(
			wiserr.WithDetails(wiserr.ErrInvalidAddress, map[string]string{
				"address": address,
				"reason":  "checksum mismatch",
			}),
			"Did you mean "+expected+"?",
		)
	}

	return nil
}

// AddressKey is the identity used to key per-recipient state.
func AddressKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func isHexChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
