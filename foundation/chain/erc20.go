package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// The gas limits follow what the contracts actually consume. A plain token
// transfer stays well under 100k and the badge airdrop under 200k.
const (
	tokenTransferGas = 100_000
	badgeMintGas     = 200_000
)

// erc20ABI carries only the pieces of the token contract this service
// touches: the transfer event plus the transfer and balanceOf functions.
const erc20ABI = `[
	{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}],"name":"Transfer","type":"event"},
	{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}
]`

// badgeABI carries just the airdrop function of the badge NFT contract.
const badgeABI = `[
	{"inputs":[{"internalType":"address","name":"to","type":"address"}],"name":"airdrop","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// transferEventID is the topic hash identifying token transfer logs.
var transferEventID = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// TokenBalance returns the token balance of the specified owner by calling
// balanceOf on the configured token contract.
func (c *Client) TokenBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	data, err := c.erc20.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("packing balanceOf: %w", err)
	}

	msg := ethereum.CallMsg{
		To:   &c.tokenContract,
		Data: data,
	}

	out, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, mapReadError("balanceOf", err)
	}

	res, err := c.erc20.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("unpacking balanceOf: %w", err)
	}

	balance, ok := res[0].(*big.Int)
	if !ok {
		return nil, errors.New("balanceOf returned an unexpected type")
	}

	return balance, nil
}

// SendToken signs and broadcasts a token transfer from the configured
// signing account to the specified recipient. It returns the hash of the
// broadcast transaction without waiting for it to be mined.
func (c *Client) SendToken(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	if c.privateKey == nil {
		return common.Hash{}, errors.New("no signing key configured")
	}

	data, err := c.erc20.Pack("transfer", to, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("packing transfer: %w", err)
	}

	signedTx, err := c.signTx(ctx, c.tokenContract, data, tokenTransferGas)
	if err != nil {
		return common.Hash{}, err
	}

	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transfer: %w", err)
	}

	return signedTx.Hash(), nil
}

// MintBadge signs and broadcasts an airdrop call on the badge contract for
// the specified recipient and waits for the transaction to be mined. The
// gas is paid by the configured signing account.
func (c *Client) MintBadge(ctx context.Context, to common.Address) (common.Hash, error) {
	if c.privateKey == nil {
		return common.Hash{}, errors.New("no signing key configured")
	}

	data, err := c.badge.Pack("airdrop", to)
	if err != nil {
		return common.Hash{}, fmt.Errorf("packing airdrop: %w", err)
	}

	signedTx, err := c.signTx(ctx, c.badgeContract, data, badgeMintGas)
	if err != nil {
		return common.Hash{}, err
	}

	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting airdrop: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.eth, signedTx)
	if err != nil {
		return common.Hash{}, mapReadError("waiting for airdrop", err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Hash{}, fmt.Errorf("airdrop transaction %s failed on chain", signedTx.Hash())
	}

	return signedTx.Hash(), nil
}

// =============================================================================

// signTx builds and signs a dynamic fee transaction against the specified
// contract using the current network fee suggestions.
func (c *Client) signTx(ctx context.Context, contract common.Address, data []byte, gas uint64) (*types.Transaction, error) {
	from := crypto.PubkeyToAddress(c.privateKey.PublicKey)

	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, mapReadError("nonce", err)
	}

	tipCap, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, mapReadError("gas tip", err)
	}

	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, mapReadError("chain head", err)
	}

	// Leave headroom for two base fee increases while the transaction
	// waits to be included.
	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &contract,
		Data:      data,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.privateKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	return signedTx, nil
}
