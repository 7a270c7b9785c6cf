package database_test

import (
	"crypto/sha256"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common"
)

func Test_MerkleRoot(t *testing.T) {
	tx1 := database.NewTransaction(1, nil, []database.TxOut{database.NewTxOut(1, nil)}, 0)
	tx2 := database.NewTransaction(1, nil, []database.TxOut{database.NewTxOut(2, nil)}, 0)
	tx3 := database.NewTransaction(1, nil, []database.TxOut{database.NewTxOut(3, nil)}, 0)

	pair := func(left common.Hash, right common.Hash) common.Hash {
		return common.Hash(sha256.Sum256(append(left.Bytes(), right.Bytes()...)))
	}

	t.Log("Given the need to commit to a block's transactions.")
	{
		if database.MerkleRoot(nil) != database.ZeroHash {
			t.Fatalf("\t%s\tShould get the zero hash for no transactions.", failed)
		}
		t.Logf("\t%s\tShould get the zero hash for no transactions.", success)

		if database.MerkleRoot([]database.Transaction{tx1}) != tx1.ID() {
			t.Fatalf("\t%s\tShould get the transaction id for a single transaction.", failed)
		}
		t.Logf("\t%s\tShould get the transaction id for a single transaction.", success)

		exp := pair(pair(tx1.ID(), tx2.ID()), pair(tx3.ID(), tx3.ID()))
		got := database.MerkleRoot([]database.Transaction{tx1, tx2, tx3})
		if got != exp {
			t.Logf("\t\tgot: %s", got)
			t.Logf("\t\texp: %s", exp)
			t.Fatalf("\t%s\tShould pair the last transaction with itself on an odd level.", failed)
		}
		t.Logf("\t%s\tShould pair the last transaction with itself on an odd level.", success)

		if database.MerkleRoot([]database.Transaction{tx2, tx1, tx3}) == got {
			t.Fatalf("\t%s\tShould get a different root when transactions are reordered.", failed)
		}
		t.Logf("\t%s\tShould get a different root when transactions are reordered.", success)

		if database.MerkleRoot([]database.Transaction{tx1, tx2, tx3}) != got {
			t.Fatalf("\t%s\tShould be deterministic.", failed)
		}
	}
}

func Test_Digest(t *testing.T) {
	exp := common.HexToHash("0xe3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	if database.Digest(nil) != exp {
		t.Fatalf("\t%s\tShould get the sha256 digest of no data.", failed)
	}
	t.Logf("\t%s\tShould get the sha256 digest of no data.", success)
}

func Test_BlockHash(t *testing.T) {
	block := database.Block{
		Header: database.BlockHeader{Version: 1, TimeStamp: 100, Nonce: 1},
	}

	hash := block.Hash()
	if hash != database.HashHeader(block.Header) {
		t.Fatalf("\t%s\tShould hash the header.", failed)
	}

	block.Transactions = []database.Transaction{database.NewTransaction(1, nil, nil, 0)}
	if block.Hash() != hash {
		t.Fatalf("\t%s\tShould only hash the header, the merkle root commits to the transactions.", failed)
	}
	t.Logf("\t%s\tShould only hash the header.", success)

	block.Header.Nonce++
	if block.Hash() == hash {
		t.Fatalf("\t%s\tShould get a different hash for a different nonce.", failed)
	}
	t.Logf("\t%s\tShould get a different hash for a different nonce.", success)
}

func Test_Genesis(t *testing.T) {
	genesis := database.NewGenesisBlock(1_700_000_000)

	if genesis.Header.PrevBlockHash != database.ZeroHash || genesis.Header.MerkleRoot != database.ZeroHash {
		t.Fatalf("\t%s\tShould have a zero parent hash and merkle root.", failed)
	}

	if genesis.Header.Version != database.BlockVersion || genesis.Header.DifficultyBits != 0 || len(genesis.Transactions) != 0 {
		t.Fatalf("\t%s\tShould be an unmined version %d block with no transactions.", failed, database.BlockVersion)
	}
	t.Logf("\t%s\tShould construct the genesis block.", success)
}

func Test_POW(t *testing.T) {
	trans := []database.Transaction{
		database.NewTransaction(1, nil, []database.TxOut{database.NewTxOut(10, nil)}, 0),
	}
	prev := database.Digest([]byte("parent"))

	type table struct {
		name       string
		difficulty int
	}

	tt := []table{
		{name: "zero", difficulty: 0},
		{name: "one", difficulty: 1},
		{name: "two", difficulty: 2},
	}

	t.Log("Given the need to mine blocks.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				block := database.POW(database.POWArgs{
					PrevBlockHash: prev,
					TimeStamp:     1_700_000_000,
					Difficulty:    tst.difficulty,
					Trans:         trans,
				})

				hash := block.Hash()
				for i := range tst.difficulty {
					if hash[i] != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould have %d leading zero bytes: %s", failed, testID, tst.difficulty, hash)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould have %d leading zero bytes.", success, testID, tst.difficulty)

				if !database.IsHashSolved(tst.difficulty, hash) {
					t.Fatalf("\t%s\tTest %d:\tShould report the hash as solved.", failed, testID)
				}

				if block.Header.PrevBlockHash != prev || block.Header.MerkleRoot != database.MerkleRoot(trans) {
					t.Fatalf("\t%s\tTest %d:\tShould link the parent and commit to the transactions.", failed, testID)
				}

				if block.Header.DifficultyBits != uint32(tst.difficulty*8) {
					t.Fatalf("\t%s\tTest %d:\tShould record the difficulty in bits.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould build the header.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_IsHashSolved(t *testing.T) {
	var hash common.Hash
	hash[2] = 1

	type table struct {
		difficulty int
		solved     bool
	}

	tt := []table{
		{difficulty: 0, solved: true},
		{difficulty: 2, solved: true},
		{difficulty: 3, solved: false},
		{difficulty: -1, solved: false},
		{difficulty: 33, solved: false},
	}

	for _, tst := range tt {
		if got := database.IsHashSolved(tst.difficulty, hash); got != tst.solved {
			t.Fatalf("\t%s\tShould get %t for difficulty %d, got %t.", failed, tst.solved, tst.difficulty, got)
		}
	}
	t.Logf("\t%s\tShould check the leading zero bytes.", success)

	if !database.IsHashSolved(32, database.ZeroHash) {
		t.Fatalf("\t%s\tShould solve the zero hash at full difficulty.", failed)
	}
}
