package database_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func le32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func le64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func sampleTx() database.Transaction {
	return database.NewTransaction(
		1,
		[]database.TxIn{database.NewTxIn(common.BytesToHash(bytes.Repeat([]byte{0x11}, 32)), []byte{0xAA, 0xBB}, 0xFFFFFFFF)},
		[]database.TxOut{database.NewTxOut(50, []byte{0xCC})},
		7,
	)
}

// =============================================================================

func Test_EncodeTransaction(t *testing.T) {
	var exp []byte
	exp = append(exp, le32(1)...)
	exp = append(exp, le64(1)...)
	exp = append(exp, bytes.Repeat([]byte{0x11}, 32)...)
	exp = append(exp, le64(2)...)
	exp = append(exp, 0xAA, 0xBB)
	exp = append(exp, le32(0xFFFFFFFF)...)
	exp = append(exp, le64(1)...)
	exp = append(exp, le64(50)...)
	exp = append(exp, le64(1)...)
	exp = append(exp, 0xCC)
	exp = append(exp, le32(7)...)

	t.Log("Given the need to encode a transaction canonically.")
	{
		got := database.EncodeTransaction(sampleTx())
		if !bytes.Equal(got, exp) {
			t.Logf("\t\tgot: %x", got)
			t.Logf("\t\texp: %x", exp)
			t.Fatalf("\t%s\tShould produce the canonical layout.", failed)
		}
		t.Logf("\t%s\tShould produce the canonical layout.", success)

		if !bytes.Equal(database.EncodeTransaction(sampleTx()), got) {
			t.Fatalf("\t%s\tShould produce the same bytes every time.", failed)
		}
		t.Logf("\t%s\tShould produce the same bytes every time.", success)

		tx, err := database.DecodeTransaction(got)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to decode the bytes: %v", failed, err)
		}

		if tx.ID() != sampleTx().ID() {
			t.Fatalf("\t%s\tShould decode to the same transaction.", failed)
		}
		t.Logf("\t%s\tShould decode to the same transaction.", success)
	}
}

func Test_EncodeHeader(t *testing.T) {
	header := database.BlockHeader{
		Version:        1,
		PrevBlockHash:  common.BytesToHash(bytes.Repeat([]byte{0x01}, 32)),
		MerkleRoot:     common.BytesToHash(bytes.Repeat([]byte{0x02}, 32)),
		TimeStamp:      1_700_000_000,
		DifficultyBits: 16,
		Nonce:          42,
	}

	var exp []byte
	exp = append(exp, le32(1)...)
	exp = append(exp, bytes.Repeat([]byte{0x01}, 32)...)
	exp = append(exp, bytes.Repeat([]byte{0x02}, 32)...)
	exp = append(exp, le32(1_700_000_000)...)
	exp = append(exp, le32(16)...)
	exp = append(exp, le32(42)...)

	got := database.EncodeHeader(header)
	if len(got) != database.HeaderSize || !bytes.Equal(got, exp) {
		t.Logf("\t\tgot: %x", got)
		t.Logf("\t\texp: %x", exp)
		t.Fatalf("\t%s\tShould produce the %d byte canonical header.", failed, database.HeaderSize)
	}
	t.Logf("\t%s\tShould produce the %d byte canonical header.", success, database.HeaderSize)

	decoded, err := database.DecodeHeader(got)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to decode the header: %v", failed, err)
	}

	if decoded != header {
		t.Fatalf("\t%s\tShould decode to the same header.", failed)
	}
	t.Logf("\t%s\tShould decode to the same header.", success)
}

func Test_EncodeBlock(t *testing.T) {
	block := database.Block{
		Header:       database.BlockHeader{Version: 1, TimeStamp: 10, Nonce: 3},
		Transactions: []database.Transaction{sampleTx(), database.NewTransaction(2, nil, nil, 0)},
	}

	data := database.EncodeBlock(block)

	decoded, err := database.DecodeBlock(data)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to decode the block: %v", failed, err)
	}

	if decoded.Hash() != block.Hash() || len(decoded.Transactions) != 2 {
		t.Fatalf("\t%s\tShould decode to the same block.", failed)
	}

	for i := range block.Transactions {
		if decoded.Transactions[i].ID() != block.Transactions[i].ID() {
			t.Fatalf("\t%s\tShould decode transaction %d.", failed, i)
		}
	}
	t.Logf("\t%s\tShould decode to the same block.", success)

	empty := database.EncodeBlock(database.Block{})
	if len(empty) != database.HeaderSize+8 {
		t.Fatalf("\t%s\tShould encode an empty block as a header and a zero count.", failed)
	}
	t.Logf("\t%s\tShould encode an empty block as a header and a zero count.", success)
}

func Test_DecodeMalformed(t *testing.T) {
	valid := database.EncodeTransaction(sampleTx())

	hugeCount := append(le32(1), le64(1<<62)...)

	hugeScript := append(le32(1), le64(1)...)
	hugeScript = append(hugeScript, make([]byte, 32)...)
	hugeScript = append(hugeScript, le64(database.MaxScriptSize+1)...)
	hugeScript = append(hugeScript, make([]byte, 64)...)

	type table struct {
		name string
		data []byte
	}

	tt := []table{
		{name: "empty", data: nil},
		{name: "version-only", data: le32(1)},
		{name: "truncated", data: valid[:len(valid)-1]},
		{name: "trailing", data: append(bytes.Clone(valid), 0x00)},
		{name: "huge-count", data: hugeCount},
		{name: "huge-script", data: hugeScript},
	}

	t.Log("Given the need to reject malformed encodings without panicking.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				_, err := database.DecodeTransaction(tst.data)
				if !errors.Is(err, database.ErrDecode) {
					t.Fatalf("\t%s\tTest %d:\tShould get a decode error for %s: %v", failed, testID, tst.name, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get a decode error for %s.", success, testID, tst.name)

				if _, err := database.DecodeBlock(tst.data); err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould not decode %s as a block.", failed, testID, tst.name)
				}
			}

			t.Run(tst.name, f)
		}
	}

	if _, err := database.DecodeHeader(make([]byte, database.HeaderSize-1)); !errors.Is(err, database.ErrDecode) {
		t.Fatalf("\t%s\tShould get a decode error for a short header: %v", failed, err)
	}
}
