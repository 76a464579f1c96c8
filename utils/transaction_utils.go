package utils

import (
	"crypto/rsa"
	"errors"
	"math"

	"github.com/minichain-go/minichain/model"
)

// GetInputBytes converts an input to a byte slice, with or without the signature.
// The unsigned form is what the spender actually signs.
func GetInputBytes(input *model.Input, withSig bool) ([]byte, error) {
	var data []byte
	prevHash, err := HexToBytes(input.PrevTxHash)
	if err != nil {
		return nil, err
	}
	data = append(data, prevHash...)
	data = append(data, Int64ToBytes(input.Index)...)
	if withSig {
		data = append(data, input.Signature...)
	}
	return data, nil
}

func GetOutputBytes(output *model.Output) []byte {
	var data []byte
	data = append(data, Float64ToBytes(output.Value)...)
	data = append(data, output.PublicKey...)
	return data
}

// GetTransactionBytes concatenates all inputs and outputs in byte slices,
// plus the height stamp that keeps coinbases of different blocks distinct.
func GetTransactionBytes(t *model.Transaction, withSig bool) ([]byte, error) {
	var data []byte
	for _, input := range t.Inputs {
		inputData, err := GetInputBytes(input, withSig)
		if err != nil {
			return nil, err
		}
		data = append(data, inputData...)
	}
	for _, output := range t.Outputs {
		data = append(data, GetOutputBytes(output)...)
	}
	data = append(data, Int64ToBytes(t.Height)...)
	return data, nil
}

// HashTransaction fills the transaction's hash from its byte form.
func HashTransaction(t *model.Transaction) error {
	data, err := GetTransactionBytes(t, false)
	if err != nil {
		return err
	}
	t.Hash = BytesToHex(SHA256(data))
	return nil
}

// GetInputDataToSignByIndex fetches the i-th input from the transaction and
// returns the byte stream the spender must sign: that input without signature,
// plus every output.
func GetInputDataToSignByIndex(t *model.Transaction, index int) ([]byte, error) {
	if index < 0 || index >= len(t.Inputs) {
		return nil, errors.New("index is out of the range")
	}
	// Don't include signature since we haven't signed it yet.
	data, err := GetInputBytes(t.Inputs[index], false)
	if err != nil {
		return nil, err
	}
	for _, output := range t.Outputs {
		data = append(data, GetOutputBytes(output)...)
	}
	return data, nil
}

// CreateCoinbaseTx creates the block reward transaction: no inputs, a single
// output paying the miner. The height stamp makes the hash unique per block.
func CreateCoinbaseTx(value float64, pk []byte, height int64) (*model.Transaction, error) {
	cb := &model.Transaction{
		Outputs: []*model.Output{
			{
				Value:     value,
				PublicKey: pk,
			},
		},
		Height: height,
	}
	if err := HashTransaction(cb); err != nil {
		return nil, err
	}
	return cb, nil
}

// IsValidCoinbase checks the coinbase claims no inputs and pays out exactly
// the expected amount (reward plus total transaction fee).
func IsValidCoinbase(cb *model.Transaction, expected float64) error {
	if cb == nil {
		return errors.New("block has no coinbase")
	}
	if len(cb.Inputs) != 0 {
		return errors.New("coinbase must not claim inputs")
	}
	total := 0.0
	for _, output := range cb.Outputs {
		if output.Value < 0 {
			return errors.New("coinbase output is negative")
		}
		total += output.Value
	}
	if math.Abs(total-expected) > 1e-9 {
		return errors.New("coinbase value doesn't match reward plus fee")
	}
	return nil
}

// CreatePendingTransaction builds a signed transaction spending every provided
// UTXO, paying the requested outputs and returning the change to the owner of
// sk. The caller is responsible for having fetched a fresh UTXO view first.
func CreatePendingTransaction(sk *rsa.PrivateKey, utxos map[model.UTXO]*model.Output, outputs []*model.Output) (*model.Transaction, error) {
	var inputs []*model.Input
	// Total money from all UTXOs.
	totalValue := 0.0
	for utxo, output := range utxos {
		inputs = append(inputs, &model.Input{
			PrevTxHash: utxo.PrevTxHash,
			Index:      utxo.Index,
		})
		totalValue += output.Value
	}

	// Total amount of money transferred to others.
	totalTransferValue := 0.0
	for _, output := range outputs {
		totalTransferValue += output.Value
	}
	if totalTransferValue > totalValue {
		return nil, errors.New("not enough balance to transfer")
	}

	// Output with the amount of money left after transfer.
	selfOutput := &model.Output{
		Value:     totalValue - totalTransferValue,
		PublicKey: PublicKeyToBytes(&sk.PublicKey),
	}
	outputs = append(outputs, selfOutput)

	pendingTransaction := &model.Transaction{
		Inputs:  inputs,
		Outputs: outputs,
	}
	// Sign every input with the owner's private key.
	for i := range inputs {
		toSignMsg, err := GetInputDataToSignByIndex(pendingTransaction, i)
		if err != nil {
			return nil, err
		}
		inputs[i].Signature, err = Sign(toSignMsg, sk)
		if err != nil {
			return nil, err
		}
	}
	if err := HashTransaction(pendingTransaction); err != nil {
		return nil, err
	}
	return pendingTransaction, nil
}
