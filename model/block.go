package model

type Block struct {
	// Hash of this entire block in the hex string format.
	Hash string
	// Hash of the previous block in the hex format. Empty only for genesis.
	PrevHash string
	// Transactions for this block, excluding the coinbase.
	Txs []*Transaction
	// Coinbase transaction as the miner's reward.
	Coinbase *Transaction
	// Nounce is the miner's challenge for computing the block.
	Nounce int64
}
