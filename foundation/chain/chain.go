// Package chain provides access to an Ethereum compatible network for
// reading transactions and receipts, decoding token transfer events, and
// sending signed token transfers from a configured account.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Config represents the settings needed to talk to a network.
type Config struct {
	RPCURL        string
	ChainID       *big.Int
	TokenContract common.Address
	BadgeContract common.Address
	PrivateKey    *ecdsa.PrivateKey
}

// Client provides the chain read and write operations against a single
// configured network.
type Client struct {
	eth           *ethclient.Client
	chainID       *big.Int
	tokenContract common.Address
	badgeContract common.Address
	privateKey    *ecdsa.PrivateKey
	erc20         abi.ABI
	badge         abi.ABI
}

// New constructs a client by dialing the configured RPC endpoint.
func New(cfg Config) (*Client, error) {
	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing rpc endpoint %q: %w", cfg.RPCURL, err)
	}

	erc20, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parsing erc20 abi: %w", err)
	}

	badge, err := abi.JSON(strings.NewReader(badgeABI))
	if err != nil {
		return nil, fmt.Errorf("parsing badge abi: %w", err)
	}

	c := Client{
		eth:           eth,
		chainID:       cfg.ChainID,
		tokenContract: cfg.TokenContract,
		badgeContract: cfg.BadgeContract,
		privateKey:    cfg.PrivateKey,
		erc20:         erc20,
		badge:         badge,
	}

	return &c, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// ChainID returns the id of the configured network.
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// TokenContract returns the address of the configured token contract.
func (c *Client) TokenContract() common.Address {
	return c.tokenContract
}

// FaucetAddress returns the address of the configured signing account.
func (c *Client) FaucetAddress() common.Address {
	return crypto.PubkeyToAddress(c.privateKey.PublicKey)
}

// Receipt returns the receipt for the specified transaction hash.
func (c *Client) Receipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	receipt, err := c.eth.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return nil, mapReadError("receipt", err)
	}

	return receipt, nil
}

// Transaction returns the sender, recipient and value for the specified
// transaction hash. The sender is recovered from the signature.
func (c *Client) Transaction(ctx context.Context, txHash string) (Tx, error) {
	tx, _, err := c.eth.TransactionByHash(ctx, common.HexToHash(txHash))
	if err != nil {
		return Tx{}, mapReadError("transaction", err)
	}

	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return Tx{}, fmt.Errorf("recovering sender: %w", err)
	}

	// A nil To field represents contract creation. The zero address is
	// carried in that case and will never match a configured recipient.
	var to common.Address
	if tx.To() != nil {
		to = *tx.To()
	}

	return Tx{
		Hash:  tx.Hash(),
		From:  from,
		To:    to,
		Value: tx.Value(),
	}, nil
}

// TransferEvents decodes the token transfer events for the configured token
// contract from the receipt logs.
func (c *Client) TransferEvents(receipt *types.Receipt) []TransferEvent {
	return TransferEvents(c.tokenContract, receipt)
}

// =============================================================================

// mapReadError converts the raw errors from the RPC layer into the typed
// errors the engines branch on. Transient errors pass through wrapped.
func mapReadError(op string, err error) error {
	switch {
	case errors.Is(err, ethereum.NotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}

	return fmt.Errorf("%s: %w", op, err)
}
