package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minichain-go/minichain/commands"
	"github.com/minichain-go/minichain/config"
	"github.com/minichain-go/minichain/model"
	"github.com/minichain-go/minichain/utils"
)

// Low difficulty keeps mining in test runs near-instant.
func testConfig() config.AppConfig {
	return config.AppConfig{
		DIFFICULTY:      8,
		COINBASE_REWARD: 25,
	}
}

func mineNext(t *testing.T, f *FullNode) *model.Block {
	t.Helper()
	block, _, err := f.CreateNewBlock(make(chan commands.Command))
	require.NoError(t, err)
	return block
}

func TestMineAndHandleNewBlock(t *testing.T) {
	f := NewFullNode(testConfig())
	assert.Equal(t, int64(1), f.GetHeight())

	block := mineNext(t, f)
	tailChange, err := f.HandleNewBlock(block)
	require.NoError(t, err)
	assert.True(t, tailChange)
	assert.Equal(t, int64(2), f.GetHeight())
	assert.Equal(t, block.Hash, f.GetTail().B.Hash)
}

func TestHandleNewBlockRejectsBadProof(t *testing.T) {
	f := NewFullNode(testConfig())

	block := mineNext(t, f)
	block.Nounce++

	_, err := f.HandleNewBlock(block)
	assert.Error(t, err)
	assert.Equal(t, int64(1), f.GetHeight())
}

func TestHandleNewBlockRejectsTamperedHash(t *testing.T) {
	f := NewFullNode(testConfig())

	block := mineNext(t, f)
	block.Hash = "00ab"

	_, err := f.HandleNewBlock(block)
	assert.Error(t, err)
}

func TestHandleNewBlockRejectsWrongCoinbase(t *testing.T) {
	c := testConfig()
	f := NewFullNode(c)

	block := mineNext(t, f)
	// Overpay the miner and re-mine so the proof is still valid.
	coinbase, err := utils.CreateCoinbaseTx(c.COINBASE_REWARD+1, f.PublicKeyBytes(), 2)
	require.NoError(t, err)
	block.Coinbase = coinbase
	_, err = utils.Mine(block, c.DIFFICULTY, make(chan commands.Command))
	require.NoError(t, err)

	_, err = f.HandleNewBlock(block)
	assert.Error(t, err)
}

func TestHandleNewBlockRejectsUnknownParent(t *testing.T) {
	f := NewFullNode(testConfig())

	block := mineNext(t, f)
	block.PrevHash = "00ab"
	_, err := utils.Mine(block, testConfig().DIFFICULTY, make(chan commands.Command))
	require.NoError(t, err)

	_, err = f.HandleNewBlock(block)
	assert.Error(t, err)
}

// End to end: spend the genesis reward, mine the spend into a block and check
// balances and the pool afterwards.
func TestTransactionFlow(t *testing.T) {
	c := testConfig()
	f := NewFullNode(c)
	_, receiverPk := utils.GenerateKeyPair(2048)
	receiverBytes := utils.PublicKeyToBytes(receiverPk)

	owned := f.GetUtxoForPublicKey(f.PublicKeyBytes())
	require.Equal(t, 1, owned.Size())

	utxos := make(map[model.UTXO]*model.Output)
	for utxo, output := range owned.L {
		o := output
		utxos[utxo] = &o
	}
	tx, err := utils.CreatePendingTransaction(f.keys, utxos, []*model.Output{
		{Value: 10, PublicKey: receiverBytes},
	})
	require.NoError(t, err)
	require.NoError(t, f.AddTransactionToPool(tx))
	assert.Equal(t, 1, f.Chain().TxPool().Size())

	block := mineNext(t, f)
	require.Len(t, block.Txs, 1)

	tailChange, err := f.HandleNewBlock(block)
	require.NoError(t, err)
	assert.True(t, tailChange)

	// Confirmed transaction leaves the pool.
	assert.Equal(t, 0, f.Chain().TxPool().Size())

	receiverUtxos := f.GetUtxoForPublicKey(receiverBytes)
	total := 0.0
	for _, output := range receiverUtxos.L {
		total += output.Value
	}
	assert.Equal(t, 10.0, total)

	// The miner keeps the change plus the fresh reward.
	minerUtxos := f.GetUtxoForPublicKey(f.PublicKeyBytes())
	total = 0.0
	for _, output := range minerUtxos.L {
		total += output.Value
	}
	assert.Equal(t, c.COINBASE_REWARD+15.0, total)
}

func TestDuplicateTransactionRejected(t *testing.T) {
	f := NewFullNode(testConfig())

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

	require.NoError(t, f.AddTransactionToPool(tx))
	assert.Error(t, f.AddTransactionToPool(tx))
	assert.Error(t, f.AddTransactionToPool(nil))
}
