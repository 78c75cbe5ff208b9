package chain

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// burnAddress receives attestation transactions.  It has no controlling
// key; it only carries the digest payload.
var burnAddress = common.HexToAddress("0x000000000000000000000000000000000000dEaD")

// attestGasLimit covers the 21000 intrinsic cost plus a 32-byte payload
// with headroom.
const attestGasLimit = uint64(30000)

var (
	// ErrNoSignerKey means CHAIN_PRIVATE_KEY is absent; attestation cannot run.
	ErrNoSignerKey = errors.New("chain: signer private key not configured")
	// ErrNoFunds means the wallet balance is zero.  An expected condition on
	// test networks, logged at warning level rather than as a failure.
	ErrNoFunds = errors.New("chain: wallet balance is zero")
	// ErrNilReceipt means the transaction was sent but never confirmed
	// within the wait window.
	ErrNilReceipt = errors.New("chain: no receipt before deadline")
)

// Backend is the narrow slice of the RPC client the attestor needs.
// *ethclient.Client satisfies it; tests substitute a fake.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Attestor performs the end-to-end "log this business event on-chain"
// operation: balance preflight, signed submission to the burn address and a
// receipt wait.  Every attempt is independent; no state is persisted
// between calls and there are no retries.
type Attestor struct {
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int

	dial DialFunc

	mu      sync.Mutex
	backend Backend

	pollEvery   time.Duration
	waitTimeout time.Duration
}

// NewAttestor builds an attestor from the chain config.  It fails with
// ErrNoSignerKey when no private key is configured; RPC connectivity is
// resolved lazily on the first Attest call so a provider outage at boot
// does not matter.
func NewAttestor(cfg Config, dial DialFunc) (*Attestor, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x")
	if raw == "" {
		return nil, ErrNoSignerKey
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("chain: invalid signer key: %w", err)
	}
	pub, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("chain: signer key has no ECDSA public key")
	}
	return &Attestor{
		key:         key,
		from:        crypto.PubkeyToAddress(*pub),
		chainID:     big.NewInt(cfg.ChainID),
		dial:        dial,
		pollEvery:   3 * time.Second,
		waitTimeout: 90 * time.Second,
	}, nil
}

// From returns the wallet address used for attestations.
func (a *Attestor) From() common.Address { return a.from }

// Attest submits the digest to the chain and waits for one confirmation.
// It never returns an error to the caller: the result is either the
// confirmed transaction hash or ok=false.  Scholarship processing must
// proceed whatever happens here, so every failure is logged and swallowed.
func (a *Attestor) Attest(ctx context.Context, digest string) (txHash string, ok bool) {
	hash, err := a.run(ctx, digest)
	if err != nil {
		if errors.Is(err, ErrNoFunds) {
			log.Printf("attest: skipped: %v", err)
		} else {
			log.Printf("attest: failed: %v", err)
		}
		return "", false
	}
	return hash, true
}

// run is the fallible core of Attest.  The state of one attempt moves
// through wallet ready -> balance checked -> submitted -> confirmed, and any
// error aborts the attempt.
func (a *Attestor) run(ctx context.Context, digest string) (string, error) {
	backend, err := a.ensureBackend(ctx)
	if err != nil {
		return "", err
	}

	balance, err := backend.BalanceAt(ctx, a.from, nil)
	if err != nil {
		return "", fmt.Errorf("balance query: %w", err)
	}
	if balance.Sign() == 0 {
		return "", ErrNoFunds
	}

	nonce, err := backend.PendingNonceAt(ctx, a.from)
	if err != nil {
		return "", fmt.Errorf("nonce query: %w", err)
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("gas price query: %w", err)
	}

	payload, err := digestBytes(digest)
	if err != nil {
		return "", err
	}

	tx := types.NewTransaction(nonce, burnAddress, big.NewInt(0), attestGasLimit, gasPrice, payload)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(a.chainID), a.key)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	if err := backend.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send: %w", err)
	}

	receipt, err := a.waitReceipt(ctx, backend, signed.Hash())
	if err != nil {
		return "", err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("chain: transaction %s reverted", signed.Hash().Hex())
	}
	return signed.Hash().Hex(), nil
}

// ensureBackend dials on first use and caches the client afterwards.
func (a *Attestor) ensureBackend(ctx context.Context) (Backend, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.backend != nil {
		return a.backend, nil
	}
	backend, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	a.backend = backend
	return backend, nil
}

// waitReceipt polls for the transaction receipt until it appears, the
// wait window elapses, or the caller's context is cancelled.
func (a *Attestor) waitReceipt(ctx context.Context, backend Backend, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, a.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(a.pollEvery)
	defer ticker.Stop()
	for {
		receipt, err := backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ErrNilReceipt
		case <-ticker.C:
		}
	}
}

// digestBytes decodes the 0x-prefixed hex digest into its 32 raw bytes.
func digestBytes(digest string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(digest, "0x"))
	if err != nil {
		return nil, fmt.Errorf("chain: invalid digest %q: %w", digest, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("chain: digest must be 32 bytes, got %d", len(raw))
	}
	return raw, nil
}
