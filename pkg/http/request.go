package http

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIP is returned when no client address can be resolved
const UnknownIP = "unknown"

// IPConfig holds configuration for IP extraction
type IPConfig struct {
	TrustedProxies []string // CIDR ranges of trusted proxies
}

// ExtractClientIP resolves the client address of a request.
// Forwarding headers are honored only when the direct peer is a trusted proxy:
// the first valid X-Forwarded-For entry wins, then X-Real-IP, then RemoteAddr.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := getRemoteAddr(r)

	if config != nil && isTrustedProxy(remoteIP, config.TrustedProxies) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, ip := range strings.Split(xff, ",") {
				ip = strings.TrimSpace(ip)
				if isValidIP(ip) {
					return ip
				}
			}
		}

		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); isValidIP(xri) {
			return xri
		}
	}

	return remoteIP
}

// ClientIP is ExtractClientIP with an explicit resolution flag
func ClientIP(r *http.Request, config *IPConfig) (string, bool) {
	ip := ExtractClientIP(r, config)
	if ip == UnknownIP || ip == "" {
		return "", false
	}
	return ip, true
}

// getRemoteAddr extracts the IP address from RemoteAddr, dropping the port
func getRemoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return UnknownIP
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	clientIP := net.ParseIP(ip)
	if clientIP == nil {
		return false
	}

	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if ipNet.Contains(clientIP) {
			return true
		}
	}

	return false
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
