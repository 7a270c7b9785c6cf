package database

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrDecode is returned when bytes can't be decoded into a ledger structure.
var ErrDecode = errors.New("decode failure")

// MaxScriptSize is the largest locking or unlocking script the decoder will
// accept. Encoding has no limit, this only protects the decoder from hostile
// length prefixes.
const MaxScriptSize = 10_000

// HeaderSize is the size of an encoded block header in bytes.
const HeaderSize = 4 + common.HashLength + common.HashLength + 4 + 4 + 4

// Minimum encoded sizes used to bound element counts before allocating.
const (
	minTxInSize  = common.HashLength + 8 + 4
	minTxOutSize = 8 + 8
	minTxSize    = 4 + 8 + 8 + 4
)

// =============================================================================

// EncodeTransaction returns the canonical binary form of the transaction. All
// integers are little endian at fixed width, digests are written raw and the
// scripts and input/output lists are prefixed with their uint64 length.
func EncodeTransaction(tx Transaction) []byte {
	var e encoder
	e.transaction(tx)
	return e.buf.Bytes()
}

// EncodeHeader returns the canonical binary form of the block header.
func EncodeHeader(header BlockHeader) []byte {
	var e encoder
	e.buf.Grow(HeaderSize)
	e.header(header)
	return e.buf.Bytes()
}

// EncodeBlock returns the canonical binary form of the block.
func EncodeBlock(block Block) []byte {
	var e encoder
	e.header(block.Header)
	e.uint64(uint64(len(block.Transactions)))
	for _, tx := range block.Transactions {
		e.transaction(tx)
	}
	return e.buf.Bytes()
}

// DecodeTransaction parses the canonical binary form of a transaction. The
// data must contain exactly one transaction.
func DecodeTransaction(data []byte) (Transaction, error) {
	d := decoder{data: data}

	tx, err := d.transaction()
	if err != nil {
		return Transaction{}, err
	}

	if err := d.done(); err != nil {
		return Transaction{}, err
	}

	return tx, nil
}

// DecodeHeader parses the canonical binary form of a block header.
func DecodeHeader(data []byte) (BlockHeader, error) {
	d := decoder{data: data}

	header, err := d.header()
	if err != nil {
		return BlockHeader{}, err
	}

	if err := d.done(); err != nil {
		return BlockHeader{}, err
	}

	return header, nil
}

// DecodeBlock parses the canonical binary form of a block.
func DecodeBlock(data []byte) (Block, error) {
	d := decoder{data: data}

	header, err := d.header()
	if err != nil {
		return Block{}, err
	}

	count, err := d.count("transactions", minTxSize)
	if err != nil {
		return Block{}, err
	}

	var trans []Transaction
	if count > 0 {
		trans = make([]Transaction, 0, count)
	}
	for i := 0; i < count; i++ {
		tx, err := d.transaction()
		if err != nil {
			return Block{}, fmt.Errorf("transaction %d: %w", i, err)
		}
		trans = append(trans, tx)
	}

	if err := d.done(); err != nil {
		return Block{}, err
	}

	block := Block{
		Header:       header,
		Transactions: trans,
	}

	return block, nil
}

// =============================================================================

// encoder writes the canonical form into a buffer. Writes to a bytes.Buffer
// can't fail so there are no error returns.
type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) uint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) hash(h common.Hash) {
	e.buf.Write(h[:])
}

func (e *encoder) varBytes(b []byte) {
	e.uint64(uint64(len(b)))
	e.buf.Write(b)
}

func (e *encoder) header(h BlockHeader) {
	e.uint32(h.Version)
	e.hash(h.PrevBlockHash)
	e.hash(h.MerkleRoot)
	e.uint32(h.TimeStamp)
	e.uint32(h.DifficultyBits)
	e.uint32(h.Nonce)
}

func (e *encoder) transaction(tx Transaction) {
	e.uint32(tx.Version)

	e.uint64(uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		e.hash(in.PreviousOutput)
		e.varBytes(in.UnlockingScript)
		e.uint32(in.Sequence)
	}

	e.uint64(uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		e.uint64(out.Value)
		e.varBytes(out.LockingScript)
	}

	e.uint32(tx.LockTime)
}

// =============================================================================

// decoder reads the canonical form. Every read checks the remaining length
// first so malformed input produces an error instead of a panic.
type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) remaining() int {
	return len(d.data) - d.pos
}

func (d *decoder) next(n int, field string) ([]byte, error) {
	if n < 0 || d.remaining() < n {
		return nil, fmt.Errorf("%w: short read on %s: need %d bytes, have %d", ErrDecode, field, n, d.remaining())
	}

	b := d.data[d.pos : d.pos+n]
	d.pos += n

	return b, nil
}

func (d *decoder) uint32(field string) (uint32, error) {
	b, err := d.next(4, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *decoder) uint64(field string) (uint64, error) {
	b, err := d.next(8, field)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *decoder) hash(field string) (common.Hash, error) {
	b, err := d.next(common.HashLength, field)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(b), nil
}

// count reads a length prefix for a list and makes sure the remaining data
// could hold that many elements of at least minSize bytes each.
func (d *decoder) count(field string, minSize int) (int, error) {
	n, err := d.uint64(field)
	if err != nil {
		return 0, err
	}

	if n > uint64(d.remaining()/minSize) {
		return 0, fmt.Errorf("%w: %s count %d exceeds remaining data", ErrDecode, field, n)
	}

	return int(n), nil
}

func (d *decoder) varBytes(field string) ([]byte, error) {
	n, err := d.uint64(field)
	if err != nil {
		return nil, err
	}

	if n > MaxScriptSize {
		return nil, fmt.Errorf("%w: %s is larger than the max allowed size [count %d, max %d]", ErrDecode, field, n, MaxScriptSize)
	}

	if n == 0 {
		return nil, nil
	}

	b, err := d.next(int(n), field)
	if err != nil {
		return nil, err
	}

	// Don't alias the caller's buffer.
	return bytes.Clone(b), nil
}

func (d *decoder) header() (BlockHeader, error) {
	var h BlockHeader
	var err error

	if h.Version, err = d.uint32("header version"); err != nil {
		return BlockHeader{}, err
	}
	if h.PrevBlockHash, err = d.hash("prev block hash"); err != nil {
		return BlockHeader{}, err
	}
	if h.MerkleRoot, err = d.hash("merkle root"); err != nil {
		return BlockHeader{}, err
	}
	if h.TimeStamp, err = d.uint32("timestamp"); err != nil {
		return BlockHeader{}, err
	}
	if h.DifficultyBits, err = d.uint32("difficulty bits"); err != nil {
		return BlockHeader{}, err
	}
	if h.Nonce, err = d.uint32("nonce"); err != nil {
		return BlockHeader{}, err
	}

	return h, nil
}

func (d *decoder) transaction() (Transaction, error) {
	var tx Transaction
	var err error

	if tx.Version, err = d.uint32("tx version"); err != nil {
		return Transaction{}, err
	}

	numIn, err := d.count("inputs", minTxInSize)
	if err != nil {
		return Transaction{}, err
	}
	if numIn > 0 {
		tx.Inputs = make([]TxIn, numIn)
	}
	for i := range tx.Inputs {
		in := &tx.Inputs[i]
		if in.PreviousOutput, err = d.hash("previous output"); err != nil {
			return Transaction{}, err
		}
		if in.UnlockingScript, err = d.varBytes("unlocking script"); err != nil {
			return Transaction{}, err
		}
		if in.Sequence, err = d.uint32("sequence"); err != nil {
			return Transaction{}, err
		}
	}

	numOut, err := d.count("outputs", minTxOutSize)
	if err != nil {
		return Transaction{}, err
	}
	if numOut > 0 {
		tx.Outputs = make([]TxOut, numOut)
	}
	for i := range tx.Outputs {
		out := &tx.Outputs[i]
		if out.Value, err = d.uint64("value"); err != nil {
			return Transaction{}, err
		}
		if out.LockingScript, err = d.varBytes("locking script"); err != nil {
			return Transaction{}, err
		}
	}

	if tx.LockTime, err = d.uint32("lock time"); err != nil {
		return Transaction{}, err
	}

	return tx, nil
}

func (d *decoder) done() error {
	if d.remaining() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrDecode, d.remaining())
	}
	return nil
}
