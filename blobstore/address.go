package blobstore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	addressPrefix = "afb:"
	digestSize    = 32
)

// ErrMalformedAddress is returned for addresses that no store could have produced.
var ErrMalformedAddress = errors.New("malformed blob address")

// Address returns the content address of data. Storing the same data twice yields the same address.
func Address(data []byte) string {
	sum := blake3.Sum256(data)
	return addressPrefix + hex.EncodeToString(sum[:])
}

// ValidateAddress checks that address has the form produced by Address.
func ValidateAddress(address string) error {
	if !strings.HasPrefix(address, addressPrefix) {
		return fmt.Errorf("%w: %q", ErrMalformedAddress, address)
	}
	digest := address[len(addressPrefix):]
	if len(digest) != 2*digestSize {
		return fmt.Errorf("%w: %q", ErrMalformedAddress, address)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return fmt.Errorf("%w: %q", ErrMalformedAddress, address)
	}
	return nil
}
