package quorum

import (
	"crypto/ed25519"
	"testing"

	"github.com/cyphar-go/paperback/pkg/document"
	"github.com/cyphar-go/paperback/pkg/envelope"
	"github.com/cyphar-go/paperback/pkg/keyshard"
	"github.com/cyphar-go/paperback/pkg/shamir"
	"github.com/stretchr/testify/require"
)

// buildBackup mints a quorumSize-of-quorumSize backup by hand, mirroring
// what the top-level paperback.Backup type does: a fresh signing
// key and doc key, a Shamir-shared envelope, a signed main document, and one
// signed key shard per dealer share.
func buildBackup(t *testing.T, quorumSize uint32, plaintext []byte) (document.MainDocument, []keyshard.KeyShard, ed25519.PrivateKey) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	var docKey [envelope.DocKeySize]byte
	copy(docKey[:], []byte("0123456789abcdef0123456789abcde"))

	secret := envelope.ShardSecret{DocKey: docKey, IDPrivateKey: priv}
	dealer, err := shamir.NewDealer(quorumSize, secret.Bytes())
	require.NoError(t, err)

	doc, err := document.New(quorumSize, plaintext, docKey, priv)
	require.NoError(t, err)

	var shards []keyshard.KeyShard
	for i := uint32(0); i < quorumSize; i++ {
		s, err := dealer.NextShard()
		require.NoError(t, err)
		shards = append(shards, keyshard.New(doc.Checksum(), s, priv))
	}

	return doc, shards, priv
}

func TestQuorumRecoverDocument(t *testing.T) {
	doc, shards, _ := buildBackup(t, 3, []byte("the whole point of paperback"))

	uq := NewUntrustedQuorum()
	uq.PushMainDocument(doc)
	for _, s := range shards {
		uq.PushShard(s)
	}

	q, err := uq.Validate()
	require.NoError(t, err)
	require.True(t, q.HasMainDocument())

	plaintext, err := q.RecoverDocument()
	require.NoError(t, err)
	require.Equal(t, []byte("the whole point of paperback"), plaintext)
}

func TestQuorumRejectsWrongShardCount(t *testing.T) {
	doc, shards, _ := buildBackup(t, 4, []byte("needs four shards"))

	uq := NewUntrustedQuorum()
	uq.PushMainDocument(doc)
	for _, s := range shards[:3] {
		uq.PushShard(s)
	}

	_, err := uq.Validate()
	require.Error(t, err)
	var iqe *InconsistentQuorumError
	require.ErrorAs(t, err, &iqe)
}

func TestQuorumRejectsForgedShard(t *testing.T) {
	doc, shards, _ := buildBackup(t, 2, []byte("forgery test"))

	tampered := shards[0]
	tampered.Identity.Signature = append([]byte(nil), tampered.Identity.Signature...)
	tampered.Identity.Signature[0] ^= 0xff

	uq := NewUntrustedQuorum()
	uq.PushMainDocument(doc)
	uq.PushShard(tampered)
	uq.PushShard(shards[1])

	_, err := uq.Validate()
	require.Error(t, err)
}

func TestQuorumRejectsInconsistentDocument(t *testing.T) {
	docA, shardsA, _ := buildBackup(t, 2, []byte("backup A"))
	_, shardsB, _ := buildBackup(t, 2, []byte("backup B"))

	uq := NewUntrustedQuorum()
	uq.PushMainDocument(docA)
	uq.PushShard(shardsA[0])
	uq.PushShard(shardsB[0])

	_, err := uq.Validate()
	require.Error(t, err)
	var iqe *InconsistentQuorumError
	require.ErrorAs(t, err, &iqe)
	require.True(t, len(iqe.Groups) > 1)
}

func TestQuorumMintsNewShard(t *testing.T) {
	doc, shards, _ := buildBackup(t, 2, []byte("expand me"))

	uq := NewUntrustedQuorum()
	uq.PushMainDocument(doc)
	uq.PushShard(shards[0])
	uq.PushShard(shards[1])

	q, err := uq.Validate()
	require.NoError(t, err)

	newShard, err := q.NewShard(FreshShard())
	require.NoError(t, err)
	require.True(t, newShard.Verify())
	require.Equal(t, doc.Checksum(), newShard.DocumentChecksum())

	// The new shard, combined with one of the originals, should recover
	// the same document.
	uq2 := NewUntrustedQuorum()
	uq2.PushMainDocument(doc)
	uq2.PushShard(shards[0])
	uq2.PushShard(newShard)

	q2, err := uq2.Validate()
	require.NoError(t, err)
	plaintext, err := q2.RecoverDocument()
	require.NoError(t, err)
	require.Equal(t, []byte("expand me"), plaintext)
}

func TestQuorumRejectsNewShardOnSealedBackup(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	var docKey [envelope.DocKeySize]byte
	copy(docKey[:], []byte("sealedsealedsealedsealedsealed!"))

	sealedSecret := envelope.ShardSecret{DocKey: docKey}
	dealer, err := shamir.NewDealer(2, sealedSecret.Bytes())
	require.NoError(t, err)

	doc, err := document.New(2, []byte("sealed content"), docKey, priv)
	require.NoError(t, err)

	var shards []keyshard.KeyShard
	for i := 0; i < 2; i++ {
		s, err := dealer.NextShard()
		require.NoError(t, err)
		shards = append(shards, keyshard.New(doc.Checksum(), s, priv))
	}

	uq := NewUntrustedQuorum()
	uq.PushMainDocument(doc)
	uq.PushShard(shards[0])
	uq.PushShard(shards[1])

	q, err := uq.Validate()
	require.NoError(t, err)

	_, err = q.NewShard(FreshShard())
	require.Error(t, err)
}

func TestQuorumRecreatesExistingShard(t *testing.T) {
	doc, shards, _ := buildBackup(t, 3, []byte("recreate me"))

	uq := NewUntrustedQuorum()
	uq.PushMainDocument(doc)
	for _, s := range shards {
		uq.PushShard(s)
	}
	q, err := uq.Validate()
	require.NoError(t, err)

	recreated, err := q.NewShard(ExistingShard(shards[0].ID()))
	require.NoError(t, err)
	require.Equal(t, shards[0].ID(), recreated.ID())
	require.Equal(t, shards[0].Shard(), recreated.Shard())
}
