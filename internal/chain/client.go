package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Minimal ABI fragments for the two read-only calls the indexer needs.
const (
	controllerABIJSON = `[{"inputs":[],"name":"startBlock","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`
	pairABIJSON       = `[{"inputs":[],"name":"getReserves","outputs":[{"internalType":"uint112","name":"_reserve0","type":"uint112"},{"internalType":"uint112","name":"_reserve1","type":"uint112"},{"internalType":"uint32","name":"_blockTimestampLast","type":"uint32"}],"stateMutability":"view","type":"function"}]`
)

var (
	controllerABI abi.ABI
	pairABI       abi.ABI
)

func init() {
	var err error
	controllerABI, err = abi.JSON(strings.NewReader(controllerABIJSON))
	if err != nil {
		panic(fmt.Sprintf("parse controller abi: %v", err))
	}
	pairABI, err = abi.JSON(strings.NewReader(pairABIJSON))
	if err != nil {
		panic(fmt.Sprintf("parse pair abi: %v", err))
	}
}

// Client implements Caller over a JSON-RPC node.
type Client struct {
	ec *ethclient.Client
}

// Dial connects to the given RPC endpoint.
func Dial(ctx context.Context, rpcURL string) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", rpcURL, err)
	}
	return &Client{ec: ec}, nil
}

// NewClient wraps an existing ethclient connection.
func NewClient(ec *ethclient.Client) *Client {
	return &Client{ec: ec}
}

// Close closes the underlying RPC connection.
func (c *Client) Close() {
	c.ec.Close()
}

// Eth exposes the underlying client for log filtering and header lookups.
func (c *Client) Eth() *ethclient.Client {
	return c.ec
}

// StartBlock reads the immutable startBlock() value from a reward controller.
func (c *Client) StartBlock(ctx context.Context, contract common.Address) (*big.Int, error) {
	data, err := controllerABI.Pack("startBlock")
	if err != nil {
		return nil, fmt.Errorf("pack startBlock: %w", err)
	}

	out, err := c.ec.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call startBlock on %s: %w", contract.Hex(), err)
	}

	values, err := controllerABI.Unpack("startBlock", out)
	if err != nil {
		return nil, fmt.Errorf("unpack startBlock: %w", err)
	}

	start, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected startBlock return type %T", values[0])
	}
	return start, nil
}

// GetReserves reads the current (reserve0, reserve1) of a UniswapV2-style pair.
func (c *Client) GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	data, err := pairABI.Pack("getReserves")
	if err != nil {
		return nil, nil, fmt.Errorf("pack getReserves: %w", err)
	}

	out, err := c.ec.CallContract(ctx, ethereum.CallMsg{To: &pair, Data: data}, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("call getReserves on %s: %w", pair.Hex(), err)
	}

	values, err := pairABI.Unpack("getReserves", out)
	if err != nil {
		return nil, nil, fmt.Errorf("unpack getReserves: %w", err)
	}

	reserve0, ok0 := values[0].(*big.Int)
	reserve1, ok1 := values[1].(*big.Int)
	if !ok0 || !ok1 {
		return nil, nil, fmt.Errorf("unexpected getReserves return types %T, %T", values[0], values[1])
	}
	return reserve0, reserve1, nil
}

// Verify interface compliance at compile time.
var _ Caller = (*Client)(nil)
