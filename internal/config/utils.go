package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"
)

func validateURL(urlStr, fieldName string) error {
	if urlStr == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s must have http or https scheme", fieldName)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}

	return nil
}

// Location returns the time zone used for signing timestamps.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Render.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TrustedProxyPrefixes returns the validated trusted proxy list.
func (s ServerConfig) TrustedProxyPrefixes() []netip.Prefix {
	prefixes, _ := parsePrefixes(s.TrustedProxies)
	return prefixes
}

// parsePrefixes accepts CIDRs and bare addresses, which become single-host
// prefixes.
func parsePrefixes(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.Contains(v, "/") {
			prefix, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("invalid prefix %q: %w", v, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", v, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
