// Package service defines the JSON wire types of the full node RPC surface,
// shared by the server and the wallet/peer clients, plus the conversions to
// and from the in-memory model. Byte fields travel hex encoded.
package service

import (
	"github.com/minichain-go/minichain/model"
	"github.com/minichain-go/minichain/utils"
)

const (
	MethodSetTransaction = "node.settransaction"
	MethodSetBlock       = "node.setblock"
	MethodGetBalance     = "node.getbalance"
	MethodBestBlock      = "node.bestblock"
	MethodAddPeer        = "node.addpeer"
)

type Input struct {
	PrevTxHash string `json:"prev_tx_hash"`
	Index      int64  `json:"index"`
	Signature  string `json:"signature"`
}

type Output struct {
	Value     float64 `json:"value"`
	PublicKey string  `json:"public_key"`
}

type Transaction struct {
	Hash    string   `json:"hash"`
	Inputs  []Input  `json:"inputs"`
	Outputs []Output `json:"outputs"`
	Height  int64    `json:"height"`
}

type Block struct {
	Hash     string        `json:"hash"`
	PrevHash string        `json:"prev_hash"`
	Txs      []Transaction `json:"txs"`
	Coinbase *Transaction  `json:"coinbase"`
	Nounce   int64         `json:"nounce"`
}

type UTXO struct {
	PrevTxHash string `json:"prev_tx_hash"`
	Index      int64  `json:"index"`
}

type UtxoOutputPair struct {
	Utxo   UTXO   `json:"utxo"`
	Output Output `json:"output"`
}

type SetTransactionRequest struct {
	Tx Transaction `json:"tx"`
}

type SetTransactionResponse struct {
	Ok bool `json:"ok"`
}

type SetBlockRequest struct {
	Block Block `json:"block"`
}

type SetBlockResponse struct {
	Ok bool `json:"ok"`
}

type GetBalanceRequest struct {
	PublicKey string `json:"public_key"`
}

type GetBalanceResponse struct {
	UtxoOutputPairs []UtxoOutputPair `json:"utxo_output_pairs"`
}

type BestBlockResponse struct {
	Block  Block `json:"block"`
	Height int64 `json:"height"`
}

type AddPeerRequest struct {
	IpAddr string `json:"ip_addr"`
	Port   string `json:"port"`
}

type AddPeerResponse struct {
	Ok bool `json:"ok"`
}

func FromInput(in *model.Input) Input {
	return Input{
		PrevTxHash: in.PrevTxHash,
		Index:      in.Index,
		Signature:  utils.BytesToHex(in.Signature),
	}
}

func ToInput(in Input) (*model.Input, error) {
	sig, err := utils.HexToBytes(in.Signature)
	if err != nil {
		return nil, err
	}
	return &model.Input{
		PrevTxHash: in.PrevTxHash,
		Index:      in.Index,
		Signature:  sig,
	}, nil
}

func FromOutput(out *model.Output) Output {
	return Output{
		Value:     out.Value,
		PublicKey: utils.BytesToHex(out.PublicKey),
	}
}

func ToOutput(out Output) (*model.Output, error) {
	pk, err := utils.HexToBytes(out.PublicKey)
	if err != nil {
		return nil, err
	}
	return &model.Output{
		Value:     out.Value,
		PublicKey: pk,
	}, nil
}

func FromTransaction(tx *model.Transaction) Transaction {
	t := Transaction{
		Hash:   tx.Hash,
		Height: tx.Height,
	}
	for _, in := range tx.Inputs {
		t.Inputs = append(t.Inputs, FromInput(in))
	}
	for _, out := range tx.Outputs {
		t.Outputs = append(t.Outputs, FromOutput(out))
	}
	return t
}

func ToTransaction(t Transaction) (*model.Transaction, error) {
	tx := &model.Transaction{
		Hash:   t.Hash,
		Height: t.Height,
	}
	for _, in := range t.Inputs {
		min, err := ToInput(in)
		if err != nil {
			return nil, err
		}
		tx.Inputs = append(tx.Inputs, min)
	}
	for _, out := range t.Outputs {
		mout, err := ToOutput(out)
		if err != nil {
			return nil, err
		}
		tx.Outputs = append(tx.Outputs, mout)
	}
	return tx, nil
}

func FromBlock(b *model.Block) Block {
	blk := Block{
		Hash:     b.Hash,
		PrevHash: b.PrevHash,
		Nounce:   b.Nounce,
	}
	for _, tx := range b.Txs {
		blk.Txs = append(blk.Txs, FromTransaction(tx))
	}
	if b.Coinbase != nil {
		cb := FromTransaction(b.Coinbase)
		blk.Coinbase = &cb
	}
	return blk
}

func ToBlock(blk Block) (*model.Block, error) {
	b := &model.Block{
		Hash:     blk.Hash,
		PrevHash: blk.PrevHash,
		Nounce:   blk.Nounce,
	}
	for _, t := range blk.Txs {
		tx, err := ToTransaction(t)
		if err != nil {
			return nil, err
		}
		b.Txs = append(b.Txs, tx)
	}
	if blk.Coinbase != nil {
		cb, err := ToTransaction(*blk.Coinbase)
		if err != nil {
			return nil, err
		}
		b.Coinbase = cb
	}
	return b, nil
}
