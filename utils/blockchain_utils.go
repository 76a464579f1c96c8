package utils

import (
	"errors"
	"log"

	"github.com/minichain-go/minichain/commands"
	"github.com/minichain-go/minichain/model"
)

// GetBlockBytes flattens the block into the byte stream that gets hashed:
// nounce, previous hash, every transaction, then the coinbase.
func GetBlockBytes(block *model.Block) ([]byte, error) {
	var rawBlock []byte

	rawBlock = append(rawBlock, Int64ToBytes(block.Nounce)...)

	preHashBytes, err := HexToBytes(block.PrevHash)
	if err != nil {
		return nil, err
	}
	rawBlock = append(rawBlock, preHashBytes...)

	for _, tx := range block.Txs {
		txBytes, err := GetTransactionBytes(tx, true)
		if err != nil {
			return nil, err
		}
		rawBlock = append(rawBlock, txBytes...)
	}

	if block.Coinbase != nil {
		coinbaseBytes, err := GetTransactionBytes(block.Coinbase, true)
		if err != nil {
			return nil, err
		}
		rawBlock = append(rawBlock, coinbaseBytes...)
	}

	return rawBlock, nil
}

// Mine fills the nounce and hash given the current difficulty setting.
// Mining runs until a matching nounce is found or a command arrives on ctl,
// in which case the command is handed back and the block is left unfinished.
func Mine(block *model.Block, difficulty int, ctl chan commands.Command) (commands.Command, error) {
	for i := int64(0); ; i++ {
		select {
		case c := <-ctl:
			return c, errors.New("mining interrupted by command")
		default:
		}
		block.Nounce = i
		isMatched, digest := MatchDifficulty(block, difficulty)
		if isMatched {
			block.Hash = digest
			return commands.NewDefaultCommand(), nil
		}
	}
}

// MatchDifficulty reports whether the block's bytes hash with enough leading
// zeros, and returns the digest in hex.
func MatchDifficulty(block *model.Block, difficulty int) (bool, string) {
	blockBytes, err := GetBlockBytes(block)
	if err != nil {
		log.Println(err)
		return false, ""
	}
	digest := SHA256(blockBytes)
	return ByteHasLeadingZeros(digest, difficulty), BytesToHex(digest)
}

// ByteHasLeadingZeros checks the first difficulty bits are all zero.
func ByteHasLeadingZeros(bytes []byte, difficulty int) bool {
	numOfZeroBytes := difficulty / 8
	numOfZeroBits := difficulty % 8

	totalBytes := numOfZeroBytes
	if numOfZeroBits > 0 {
		totalBytes += 1
	}
	if totalBytes > len(bytes) {
		return false
	}
	for i := 0; i < numOfZeroBytes; i++ {
		if bytes[i] != 0 {
			return false
		}
	}
	if numOfZeroBits == 0 {
		return true
	}
	nextByte := bytes[numOfZeroBytes]
	return (nextByte>>byte(8-numOfZeroBits))&0xFF == 0
}

// CreateGenesisBlock builds the block the chain boots from: no parent, no
// transactions, just a coinbase paying the initial reward to pk. No mining
// is required, the genesis block is valid by contract.
func CreateGenesisBlock(reward float64, pk []byte) (*model.Block, error) {
	coinbase, err := CreateCoinbaseTx(reward, pk, 1)
	if err != nil {
		return nil, err
	}
	block := &model.Block{
		Coinbase: coinbase,
	}
	blockBytes, err := GetBlockBytes(block)
	if err != nil {
		return nil, err
	}
	block.Hash = BytesToHex(SHA256(blockBytes))
	return block, nil
}
