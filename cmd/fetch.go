package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/netip"

	"github.com/psp-go/psp-net/dns"
	"github.com/psp-go/psp-net/platform"
	"github.com/psp-go/psp-net/socket"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	fetchCmd = &cobra.Command{
		Use:   "fetch <hostname> [path]",
		Short: "Fetch a page over TLS and print it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 2 {
				path = args[1]
			}
			return fetch(args[0], path)
		},
	}

	fetchPort uint16
	fetchSeed uint64
)

func init() {
	fetchCmd.Flags().StringVar(&resolveServer, "server", "", "DNS server as ip:port")
	fetchCmd.Flags().Uint16Var(&fetchPort, "port", 443, "remote TLS port")
	fetchCmd.Flags().Uint64Var(&fetchSeed, "seed", 0, "handshake RNG seed, 0 seeds from the current tick")
	rootCmd.AddCommand(fetchCmd)
}

func fetch(hostname, path string) error {
	stack := platform.NewHostStack()
	server, err := resolverServer()
	if err != nil {
		return err
	}

	resolver, err := dns.NewResolver(stack, server)
	if err != nil {
		return err
	}
	defer resolver.Close()

	addr, err := resolver.Resolve(hostname)
	if err != nil {
		return fmt.Errorf("error resolving %s: %w", hostname, err)
	}
	logrus.WithField("address", addr).Debug("hostname resolved")

	tcpSock, err := socket.OpenTCP(stack, socket.NewOptions(netip.AddrPortFrom(addr, fetchPort)))
	if err != nil {
		return err
	}

	tlsSock, err := socket.NewTLS(tcpSock)
	if err != nil {
		return err
	}
	seed := fetchSeed
	if seed == 0 {
		seed = clientConfig.Seed
	}
	ready, err := tlsSock.Open(socket.NewTLSOptions(seed, hostname))
	if err != nil {
		return fmt.Errorf("error opening TLS session: %w", err)
	}
	defer ready.Close()

	request := fmt.Sprintf("GET %s HTTP/1.1\r\nHost: %s\r\nConnection: close\r\n\r\n", path, hostname)
	if _, err := ready.Write([]byte(request)); err != nil {
		return fmt.Errorf("error writing request: %w", err)
	}
	if err := ready.Flush(); err != nil {
		return fmt.Errorf("error flushing request: %w", err)
	}

	for {
		text, err := ready.ReadText()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("error reading response: %w", err)
		}
		if text == "" {
			return nil
		}
		fmt.Print(text)
	}
}
