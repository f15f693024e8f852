package config

import (
	"fmt"
	"net/netip"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	// Client holds the settings of the example client commands.
	Client struct {
		// Resolver is the DNS server as "ip:port". Empty means the
		// default public resolver.
		Resolver string `yaml:"resolver"`

		// Seed seeds the TLS handshake generator. Zero means seed from
		// the current tick.
		Seed uint64 `yaml:"seed"`

		// LogLevel is a logrus level name. Empty means "info".
		LogLevel string `yaml:"logLevel"`
	}
)

// ReadYAML decodes the yaml file into v.
func ReadYAML(file string, v interface{}) error {
	b, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("error reading yaml config file: %w", err)
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("error decoding config from yaml: %w", err)
	}
	return nil
}

// ResolverAddrPort parses the configured resolver address. The boolean
// tells whether one was configured at all.
func (c *Client) ResolverAddrPort() (netip.AddrPort, bool, error) {
	if c.Resolver == "" {
		return netip.AddrPort{}, false, nil
	}
	addr, err := netip.ParseAddrPort(c.Resolver)
	if err != nil {
		return netip.AddrPort{}, false, fmt.Errorf("error parsing resolver address: %w", err)
	}
	return addr, true, nil
}
