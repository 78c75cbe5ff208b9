package chain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
)

// ErrNoEndpoint is returned when neither the configured endpoint nor any
// fallback produced a usable connection to the expected network.
var ErrNoEndpoint = errors.New("chain: no usable RPC endpoint")

// sepoliaFallbacks are tried in order when the configured endpoint is
// absent or fails.  Selection happens once per dial; there is no retry or
// circuit breaking beyond that.
var sepoliaFallbacks = []string{
	"https://ethereum-sepolia-rpc.publicnode.com",
	"https://rpc.sepolia.org",
	"https://1rpc.io/sepolia",
	"https://rpc2.sepolia.org",
}

// Config carries the attestation settings resolved from the environment.
type Config struct {
	RPCURL      string // primary endpoint, tried before the fallbacks
	ChainID     int64  // expected network id; endpoints on other networks are rejected
	PrivateKey  string // hex signer key; empty disables attestation
	ExplorerURL string // display-only base for transaction links
}

// Dial connects to the first endpoint that both answers and reports the
// expected chain id: the configured primary first, then each fallback in
// order.  If every candidate fails it returns ErrNoEndpoint wrapping the
// last error seen.
func Dial(ctx context.Context, cfg Config) (*ethclient.Client, error) {
	candidates := sepoliaFallbacks
	if cfg.RPCURL != "" {
		candidates = append([]string{cfg.RPCURL}, candidates...)
	}
	want := big.NewInt(cfg.ChainID)

	var lastErr error
	for _, url := range candidates {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		id, err := client.ChainID(ctx)
		if err != nil {
			client.Close()
			lastErr = err
			continue
		}
		if id.Cmp(want) != 0 {
			client.Close()
			lastErr = fmt.Errorf("endpoint %s is chain %s, want %s", url, id, want)
			continue
		}
		return client, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoEndpoint, lastErr)
	}
	return nil, ErrNoEndpoint
}

// DialFunc lets the attestor defer endpoint selection until the first
// attempt so that RPC outages at boot do not disable attestation for the
// process lifetime.
type DialFunc func(ctx context.Context) (Backend, error)

// Dialer adapts Dial to a DialFunc for the given config.
func Dialer(cfg Config) DialFunc {
	return func(ctx context.Context) (Backend, error) {
		client, err := Dial(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Printf("attest: connected to chain %d", cfg.ChainID)
		return client, nil
	}
}
