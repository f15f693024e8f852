package cmd

import (
	"fmt"
	"math/rand"
	"net/netip"

	"github.com/psp-go/psp-net/dns"
	"github.com/psp-go/psp-net/platform"

	"github.com/spf13/cobra"
)

var (
	resolveCmd = &cobra.Command{
		Use:   "resolve <hostname>...",
		Short: "Resolve hostnames to IPv4 addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolve(args)
		},
	}

	resolveServer   string
	randomizeTxnIDs bool
)

func init() {
	resolveCmd.Flags().StringVar(&resolveServer, "server", "", "DNS server as ip:port")
	resolveCmd.Flags().BoolVar(&randomizeTxnIDs, "random-id", false,
		"randomize the query transaction id instead of the fixed default")
	rootCmd.AddCommand(resolveCmd)
}

func resolve(hostnames []string) error {
	server, err := resolverServer()
	if err != nil {
		return err
	}

	var opts []dns.Option
	if randomizeTxnIDs {
		opts = append(opts, dns.WithTransactionID(func() uint16 {
			return uint16(rand.Uint32())
		}))
	}

	resolver, err := dns.NewResolver(platform.NewHostStack(), server, opts...)
	if err != nil {
		return err
	}
	defer resolver.Close()

	for _, hostname := range hostnames {
		addr, err := resolver.Resolve(hostname)
		if err != nil {
			return fmt.Errorf("error resolving %s: %w", hostname, err)
		}
		fmt.Printf("%s %s\n", hostname, addr)
	}
	return nil
}

func resolverServer() (netip.AddrPort, error) {
	if resolveServer != "" {
		server, err := netip.ParseAddrPort(resolveServer)
		if err != nil {
			return netip.AddrPort{}, fmt.Errorf("error parsing server address: %w", err)
		}
		return server, nil
	}
	if server, ok, err := clientConfig.ResolverAddrPort(); err != nil || ok {
		if err != nil {
			return netip.AddrPort{}, err
		}
		return server, nil
	}
	return dns.DefaultServer, nil
}
