package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKey is a throwaway secp256k1 key used only in tests.
const testKey = "4c0883a69102937d6231471b5dbb6204fe512961708279feb1be6ae5538da033"

// fakeBackend is an in-memory Backend that records how the attestor
// drives it.
type fakeBackend struct {
	balance *big.Int

	sendErr    error
	sendCalls  int
	lastTx     *types.Transaction
	noReceipt  bool
	receiptErr error
}

func (f *fakeBackend) BalanceAt(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	if f.balance == nil {
		return big.NewInt(0), nil
	}
	return f.balance, nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.sendCalls++
	f.lastTx = tx
	return f.sendErr
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, _ common.Hash) (*types.Receipt, error) {
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if f.noReceipt {
		return nil, errors.New("not found")
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func newTestAttestor(t *testing.T, backend Backend) *Attestor {
	t.Helper()
	a, err := NewAttestor(Config{PrivateKey: testKey, ChainID: 11155111}, nil)
	require.NoError(t, err)
	a.backend = backend
	a.pollEvery = 5 * time.Millisecond
	a.waitTimeout = 50 * time.Millisecond
	return a
}

func TestNewAttestorNoKey(t *testing.T) {
	_, err := NewAttestor(Config{}, nil)
	assert.ErrorIs(t, err, ErrNoSignerKey)

	_, err = NewAttestor(Config{PrivateKey: "  0x "}, nil)
	assert.ErrorIs(t, err, ErrNoSignerKey)
}

func TestNewAttestorInvalidKey(t *testing.T) {
	_, err := NewAttestor(Config{PrivateKey: "not-hex"}, nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSignerKey)
}

func TestAttestSuccess(t *testing.T) {
	backend := &fakeBackend{balance: big.NewInt(1_000_000_000_000_000)}
	a := newTestAttestor(t, backend)

	digest := ApplicationDigest(42, 7, time.Now())
	hash, ok := a.Attest(context.Background(), digest)

	require.True(t, ok)
	assert.Len(t, hash, 66)
	assert.Equal(t, 1, backend.sendCalls)

	require.NotNil(t, backend.lastTx)
	assert.Equal(t, burnAddress, *backend.lastTx.To())
	assert.Equal(t, attestGasLimit, backend.lastTx.Gas())
	assert.Zero(t, backend.lastTx.Value().Sign())
	assert.Len(t, backend.lastTx.Data(), 32)
}

func TestAttestZeroBalanceNeverSubmits(t *testing.T) {
	backend := &fakeBackend{balance: big.NewInt(0)}
	a := newTestAttestor(t, backend)

	hash, ok := a.Attest(context.Background(), ApplicationDigest(42, 7, time.Now()))

	assert.False(t, ok)
	assert.Empty(t, hash)
	assert.Equal(t, 0, backend.sendCalls)
}

func TestAttestSendFailure(t *testing.T) {
	backend := &fakeBackend{
		balance: big.NewInt(1),
		sendErr: errors.New("nonce too low"),
	}
	a := newTestAttestor(t, backend)

	hash, ok := a.Attest(context.Background(), ApplicationDigest(42, 7, time.Now()))

	assert.False(t, ok)
	assert.Empty(t, hash)
}

func TestAttestReceiptTimeout(t *testing.T) {
	backend := &fakeBackend{balance: big.NewInt(1), noReceipt: true}
	a := newTestAttestor(t, backend)

	hash, ok := a.Attest(context.Background(), ApplicationDigest(42, 7, time.Now()))

	assert.False(t, ok)
	assert.Empty(t, hash)
	assert.Equal(t, 1, backend.sendCalls)
}

func TestAttestDialFailure(t *testing.T) {
	a, err := NewAttestor(Config{PrivateKey: testKey, ChainID: 11155111},
		func(context.Context) (Backend, error) {
			return nil, errors.New("all endpoints down")
		})
	require.NoError(t, err)

	hash, ok := a.Attest(context.Background(), ApplicationDigest(42, 7, time.Now()))

	assert.False(t, ok)
	assert.Empty(t, hash)
}

func TestAttestRejectsMalformedDigest(t *testing.T) {
	backend := &fakeBackend{balance: big.NewInt(1)}
	a := newTestAttestor(t, backend)

	hash, ok := a.Attest(context.Background(), "0xdeadbeef")

	assert.False(t, ok)
	assert.Empty(t, hash)
	assert.Equal(t, 0, backend.sendCalls)
}
