// Package client wraps the full node's JSON-RPC surface for wallet use.
package client

import (
	"context"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/minichain-go/minichain/service"
)

const callTimeout = 10 * time.Second

type FullNodeClient struct {
	cli *jrpc2.Client
}

// Dial connects to the full node RPC endpoint at ip:port.
func Dial(ipAddr string, port string) *FullNodeClient {
	ch := jhttp.NewChannel("http://"+ipAddr+":"+port+"/rpc", nil)
	return &FullNodeClient{cli: jrpc2.NewClient(ch, nil)}
}

// NewFullNodeClient wraps an already-established jrpc2 client.
func NewFullNodeClient(cli *jrpc2.Client) *FullNodeClient {
	return &FullNodeClient{cli: cli}
}

func (c *FullNodeClient) Close() error {
	return c.cli.Close()
}

func (c *FullNodeClient) SetTransaction(req *service.SetTransactionRequest) (*service.SetTransactionResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	var res service.SetTransactionResponse
	if err := c.cli.CallResult(ctx, service.MethodSetTransaction, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *FullNodeClient) SetBlock(req *service.SetBlockRequest) (*service.SetBlockResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	var res service.SetBlockResponse
	if err := c.cli.CallResult(ctx, service.MethodSetBlock, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *FullNodeClient) GetBalance(req *service.GetBalanceRequest) (*service.GetBalanceResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	var res service.GetBalanceResponse
	if err := c.cli.CallResult(ctx, service.MethodGetBalance, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *FullNodeClient) BestBlock() (*service.BestBlockResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	var res service.BestBlockResponse
	if err := c.cli.CallResult(ctx, service.MethodBestBlock, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
