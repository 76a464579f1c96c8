package node

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minichain-go/minichain/commands"
	"github.com/minichain-go/minichain/model"
	"github.com/minichain-go/minichain/service"
	"github.com/minichain-go/minichain/utils"
)

// startTestServer exposes a fresh full node server over an httptest server and
// returns both with a connected RPC client.
func startTestServer(t *testing.T) (*FullNodeServer, *jrpc2.Client) {
	t.Helper()
	sev := NewFullNodeServer(testConfig(), Address{IpAddr: "127.0.0.1", Port: "0"}, make(chan commands.Command, 1))

	mux := http.NewServeMux()
	mux.Handle("/rpc", sev.Handler())
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	ch := jhttp.NewChannel(ts.URL+"/rpc", nil)
	client := jrpc2.NewClient(ch, nil)
	t.Cleanup(func() { client.Close() })
	return sev, client
}

func TestServerBestBlock(t *testing.T) {
	sev, client := startTestServer(t)

	var res service.BestBlockResponse
	require.NoError(t, client.CallResult(context.Background(), service.MethodBestBlock, nil, &res))
	assert.Equal(t, int64(1), res.Height)
	assert.Equal(t, sev.FullNode().Chain().BestBlock().Hash, res.Block.Hash)
}

func TestServerSetTransaction(t *testing.T) {
	sev, client := startTestServer(t)
	f := sev.FullNode()

	owned := f.GetUtxoForPublicKey(f.PublicKeyBytes())
	utxos := make(map[model.UTXO]*model.Output)
	for utxo, output := range owned.L {
		o := output
		utxos[utxo] = &o
	}
	tx, err := utils.CreatePendingTransaction(f.keys, utxos, []*model.Output{
		{Value: 10, PublicKey: []byte("receiver")},
	})
	require.NoError(t, err)

	var res service.SetTransactionResponse
	req := service.SetTransactionRequest{Tx: service.FromTransaction(tx)}
	require.NoError(t, client.CallResult(context.Background(), service.MethodSetTransaction, &req, &res))
	assert.True(t, res.Ok)
	assert.Equal(t, 1, f.Chain().TxPool().Size())

	// Same transaction again is a duplicate.
	assert.Error(t, client.CallResult(context.Background(), service.MethodSetTransaction, &req, &res))
}

func TestServerSetTransactionRejectsInvalid(t *testing.T) {
	sev, client := startTestServer(t)

	// Spends an output that doesn't exist on the chain.
	req := service.SetTransactionRequest{Tx: service.Transaction{
		Hash:   "00ab",
		Inputs: []service.Input{{PrevTxHash: "00cd", Index: 0}},
	}}
	var res service.SetTransactionResponse
	assert.Error(t, client.CallResult(context.Background(), service.MethodSetTransaction, &req, &res))
	assert.Equal(t, 0, sev.FullNode().Chain().TxPool().Size())
}

func TestServerSetBlock(t *testing.T) {
	sev, client := startTestServer(t)
	f := sev.FullNode()

	block := mineNext(t, f)
	req := service.SetBlockRequest{Block: service.FromBlock(block)}
	var res service.SetBlockResponse
	require.NoError(t, client.CallResult(context.Background(), service.MethodSetBlock, &req, &res))
	assert.True(t, res.Ok)
	assert.Equal(t, int64(2), f.GetHeight())

	// Replaying the same block fails.
	assert.Error(t, client.CallResult(context.Background(), service.MethodSetBlock, &req, &res))
}

func TestServerGetBalance(t *testing.T) {
	sev, client := startTestServer(t)
	f := sev.FullNode()

	var res service.GetBalanceResponse
	req := service.GetBalanceRequest{PublicKey: utils.BytesToHex(f.PublicKeyBytes())}
	require.NoError(t, client.CallResult(context.Background(), service.MethodGetBalance, &req, &res))
	require.Len(t, res.UtxoOutputPairs, 1)
	assert.Equal(t, testConfig().COINBASE_REWARD, res.UtxoOutputPairs[0].Output.Value)

	// Unknown key owns nothing.
	req = service.GetBalanceRequest{PublicKey: "00ab"}
	require.NoError(t, client.CallResult(context.Background(), service.MethodGetBalance, &req, &res))
	assert.Empty(t, res.UtxoOutputPairs)
}

func TestServerMineAdvancesTail(t *testing.T) {
	sev, _ := startTestServer(t)

	_, err := sev.Mine(make(chan commands.Command))
	require.NoError(t, err)
	assert.Equal(t, int64(2), sev.FullNode().GetHeight())
}
