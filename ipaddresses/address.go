package ipaddresses

import (
	"encoding/hex"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

const errInvalidIPAddrFmt = "invalid IP address: %s"
const errInvalidHexFmt = "invalid hex IP address: %s"

const v6HexPrefix = "v6-"

// ParseIPAddress converts an IPv4 address from octet notation (*.*.*.*) to its 32-bit unsigned integer value.
func ParseIPAddress(ipAddr string) (ip uint32, err error) {
	octets := strings.Split(ipAddr, ".")
	if len(octets) != 4 {
		err = fmt.Errorf(errInvalidIPAddrFmt, ipAddr)
		return
	}

	for _, octet := range octets {
		var b int

		b, err = strconv.Atoi(octet)
		if err != nil || b < 0 || b > 255 {
			err = fmt.Errorf(errInvalidIPAddrFmt, ipAddr)
			return
		}

		ip <<= 8
		ip |= uint32(b)
	}

	return ip, nil
}

// ToOctets converts a 32-bit unsigned integer into a readable string in "*.*.*.*" format.
func ToOctets(ip uint32) string {
	octets := make([]string, 4)
	for i := 3; i >= 0; i-- {
		octets[i] = strconv.Itoa(int(ip & 0xff))
		ip >>= 8
	}
	return strings.Join(octets, ".")
}

// IsIPAddress tells whether s is an IPv4 or IPv6 address, or a network in CIDR notation.
func IsIPAddress(s string) bool {
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

// ToHex converts an address to the uppercase hex form stored next to log rows. IPv4 addresses become 8 hex digits,
// IPv6 addresses 32 hex digits prefixed with "v6-".
func ToHex(ipAddr string) (string, error) {
	if ip, err := ParseIPAddress(ipAddr); err == nil {
		return fmt.Sprintf("%08X", ip), nil
	}

	addr, err := netip.ParseAddr(ipAddr)
	if err != nil || addr.Is4() {
		return "", fmt.Errorf(errInvalidIPAddrFmt, ipAddr)
	}
	b := addr.As16()
	return v6HexPrefix + strings.ToUpper(hex.EncodeToString(b[:])), nil
}

// FormatHex converts the output of ToHex back to a readable address.
func FormatHex(h string) (string, error) {
	if strings.HasPrefix(h, v6HexPrefix) {
		b, err := hex.DecodeString(h[len(v6HexPrefix):])
		if err != nil || len(b) != 16 {
			return "", fmt.Errorf(errInvalidHexFmt, h)
		}
		var a [16]byte
		copy(a[:], b)
		return netip.AddrFrom16(a).String(), nil
	}

	if len(h) != 8 {
		return "", fmt.Errorf(errInvalidHexFmt, h)
	}
	ip, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return "", fmt.Errorf(errInvalidHexFmt, h)
	}
	return ToOctets(uint32(ip)), nil
}
