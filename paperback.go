// Package paperback ties together pkg/document, pkg/envelope, pkg/keyshard,
// and pkg/shamir into the top-level Backup type: the entry point for
// creating a fresh paper backup. Recovering and expanding an existing
// backup from scanned shards instead goes through pkg/quorum directly.
package paperback

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/cyphar-go/paperback/pkg/document"
	"github.com/cyphar-go/paperback/pkg/envelope"
	"github.com/cyphar-go/paperback/pkg/keyshard"
	"github.com/cyphar-go/paperback/pkg/shamir"
)

// Backup is a freshly created paper backup: a signed, encrypted main
// document plus the Shamir dealer needed to mint its key shards.
type Backup struct {
	mainDocument document.MainDocument
	dealer       shamir.Dealer
	idPrivateKey ed25519.PrivateKey
}

// New creates a Backup of secret requiring quorumSize key shards to
// recover, with a signing key included in the envelope so further shards
// can be minted later from any quorum of the originals.
func New(quorumSize uint32, secret []byte) (*Backup, error) {
	return newBackup(quorumSize, secret, false)
}

// NewSealed creates a Backup like New, but omits the signing key from the
// envelope: once this call returns, no quorum of this backup's shards will
// ever be able to mint further shards, only recover the secret.
func NewSealed(quorumSize uint32, secret []byte) (*Backup, error) {
	return newBackup(quorumSize, secret, true)
}

func newBackup(quorumSize uint32, secret []byte, sealed bool) (*Backup, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("paperback: generating identity keypair: %w", err)
	}

	var docKey [envelope.DocKeySize]byte
	if _, err := rand.Read(docKey[:]); err != nil {
		return nil, fmt.Errorf("paperback: drawing document key: %w", err)
	}

	shardSecret := envelope.ShardSecret{DocKey: docKey}
	if !sealed {
		shardSecret.IDPrivateKey = priv
	}

	mainDocument, err := document.New(quorumSize, secret, docKey, priv)
	if err != nil {
		return nil, fmt.Errorf("paperback: building main document: %w", err)
	}

	dealer, err := shamir.NewDealer(quorumSize, shardSecret.Bytes())
	if err != nil {
		return nil, fmt.Errorf("paperback: constructing shamir dealer: %w", err)
	}

	return &Backup{mainDocument: mainDocument, dealer: dealer, idPrivateKey: priv}, nil
}

// MainDocument returns the backup's signed main document.
func (b *Backup) MainDocument() document.MainDocument {
	return b.mainDocument
}

// NextShard mints a freshly-numbered key shard for this backup.
func (b *Backup) NextShard() (keyshard.KeyShard, error) {
	shard, err := b.dealer.NextShard()
	if err != nil {
		return keyshard.KeyShard{}, fmt.Errorf("paperback: minting shard: %w", err)
	}
	return keyshard.New(b.mainDocument.Checksum(), shard, b.idPrivateKey), nil
}

// QuorumSize returns the number of shards required to recover this backup.
func (b *Backup) QuorumSize() uint32 {
	return b.mainDocument.QuorumSize()
}
