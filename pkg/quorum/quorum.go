// Package quorum assembles untrusted main documents and key shards into a
// trusted Quorum: a set that has been checked for forged signatures and for
// mutual agreement on which backup it belongs to, and from which the
// original secret (or further key shards) can be recovered.
package quorum

import (
	"crypto/ed25519"
	"fmt"
	"sync"

	"github.com/cyphar-go/paperback/pkg/document"
	"github.com/cyphar-go/paperback/pkg/envelope"
	"github.com/cyphar-go/paperback/pkg/keyshard"
	"github.com/cyphar-go/paperback/pkg/perr"
	"github.com/cyphar-go/paperback/pkg/shamir"
	"github.com/cyphar-go/paperback/pkg/wire"
)

// Kind tags an Item as having passed or failed signature verification.
type Kind int

const (
	KindMainDocument Kind = iota
	KindForgedMainDocument
	KindKeyShard
	KindForgedKeyShard
)

// Item is one untrusted artifact pushed into an UntrustedQuorum, tagged
// with the outcome of its signature check.
type Item struct {
	Kind     Kind
	Document document.MainDocument // valid when Kind is (Forged)MainDocument
	Shard    keyshard.KeyShard     // valid when Kind is (Forged)KeyShard
}

func classifyDocument(doc document.MainDocument) Item {
	if doc.Verify() {
		return Item{Kind: KindMainDocument, Document: doc}
	}
	return Item{Kind: KindForgedMainDocument, Document: doc}
}

func classifyShard(shard keyshard.KeyShard) Item {
	if shard.Verify() {
		return Item{Kind: KindKeyShard, Shard: shard}
	}
	return Item{Kind: KindForgedKeyShard, Shard: shard}
}

// groupID is the key documents/shards must agree on to belong to the same
// quorum: paperback version, document checksum, quorum size, and signer
// public key. ed25519.PublicKey is a slice and can't be compared with ==, so
// it's converted to a string for use as a map/struct key.
type groupID struct {
	version     uint32
	docChecksum string // wire.Multihash.Bytes(), as a map key
	quorumSize  uint32
	publicKey   string // raw Ed25519 public key bytes, as a map key
}

func groupIDOf(item Item) groupID {
	switch item.Kind {
	case KindMainDocument, KindForgedMainDocument:
		return groupID{
			version:     item.Document.Version(),
			docChecksum: string(item.Document.Checksum().Bytes()),
			quorumSize:  item.Document.QuorumSize(),
			publicKey:   string(item.Document.Identity.PublicKey),
		}
	default:
		return groupID{
			version:     keyShardVersion,
			docChecksum: string(item.Shard.DocumentChecksum().Bytes()),
			quorumSize:  item.Shard.QuorumSize(),
			publicKey:   string(item.Shard.Identity.PublicKey),
		}
	}
}

// keyShardVersion stands in for the version field a KeyShard doesn't expose
// directly on its own (it's folded into the wire layout, not a method) —
// key shards and documents only ever share one wire version, so this is a
// constant rather than a field lookup.
const keyShardVersion = keyshard.Version

// Grouping is the result of clustering every pushed item by groupID — more
// than one group means the pushed items don't agree on which backup they
// belong to.
type Grouping [][]Item

// InconsistentQuorumError reports that UntrustedQuorum.Validate found more
// than one group (or a forged member, or a main document whose declared
// quorum size doesn't match the number of shards present). It carries the
// full grouping so a caller can show the user which items disagree.
type InconsistentQuorumError struct {
	Reason string
	Groups Grouping
}

func (e *InconsistentQuorumError) Error() string {
	return fmt.Sprintf("paperback: %s", e.Reason)
}

func (e *InconsistentQuorumError) Is(target error) bool {
	return target == perr.ErrInconsistentQuorum
}

// UntrustedQuorum accumulates main documents and key shards before they've
// been checked for mutual consistency. Nothing is trusted until Validate
// succeeds.
type UntrustedQuorum struct {
	quorumSize   *uint32
	mainDocument *document.MainDocument
	shards       map[shardKey]keyshard.KeyShard
}

// shardKey identifies a pushed shard by the backup it claims to belong to
// and its own ID.
type shardKey struct {
	group groupID
	id    shamir.ID
}

// NewUntrustedQuorum returns an empty UntrustedQuorum.
func NewUntrustedQuorum() *UntrustedQuorum {
	return &UntrustedQuorum{shards: make(map[shardKey]keyshard.KeyShard)}
}

// QuorumSize returns the quorum size implied by whatever's been pushed so
// far, or false if nothing has been pushed yet.
func (q *UntrustedQuorum) QuorumSize() (uint32, bool) {
	if q.quorumSize == nil {
		return 0, false
	}
	return *q.quorumSize, true
}

// PushShard adds an untrusted key shard. Pushing a shard with the same group
// (version, document checksum, quorum size, signer) and ID as one already
// present replaces the prior one (mirroring a user re-scanning the same
// physical shard); shards from different groups are kept apart even if their
// IDs collide.
func (q *UntrustedQuorum) PushShard(shard keyshard.KeyShard) *UntrustedQuorum {
	if q.quorumSize == nil {
		size := shard.QuorumSize()
		q.quorumSize = &size
	}
	key := shardKey{group: groupIDOf(Item{Kind: KindKeyShard, Shard: shard}), id: shard.ID()}
	q.shards[key] = shard
	return q
}

// PushMainDocument sets (or replaces) the untrusted main document.
func (q *UntrustedQuorum) PushMainDocument(doc document.MainDocument) *UntrustedQuorum {
	if q.quorumSize == nil {
		size := doc.QuorumSize()
		q.quorumSize = &size
	}
	q.mainDocument = &doc
	return q
}

// NumShards returns the number of distinct shards pushed so far.
func (q *UntrustedQuorum) NumShards() int {
	return len(q.shards)
}

func (q *UntrustedQuorum) group() Grouping {
	var items []Item
	if q.mainDocument != nil {
		items = append(items, classifyDocument(*q.mainDocument))
	}
	for _, s := range q.shards {
		items = append(items, classifyShard(s))
	}

	groups := make(map[groupID][]Item)
	var order []groupID
	for _, item := range items {
		id := groupIDOf(item)
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], item)
	}

	out := make(Grouping, 0, len(order))
	for _, id := range order {
		out = append(out, groups[id])
	}
	return out
}

// Validate checks every pushed item for a single consistent grouping and no
// forged members, then builds a Quorum. Validate consumes q: callers should
// discard it afterwards.
func (q *UntrustedQuorum) Validate() (*Quorum, error) {
	groups := q.group()

	if len(groups) != 1 {
		return nil, &InconsistentQuorumError{Reason: "key shards and documents are inconsistent", Groups: groups}
	}
	items := groups[0]

	for _, item := range items {
		if item.Kind == KindForgedMainDocument || item.Kind == KindForgedKeyShard {
			return nil, &InconsistentQuorumError{Reason: "quorum contains a forged document", Groups: groups}
		}
	}

	var mainDocument *document.MainDocument
	var shards []keyshard.KeyShard
	for _, item := range items {
		switch item.Kind {
		case KindMainDocument:
			if mainDocument != nil {
				return nil, &InconsistentQuorumError{Reason: "more than one main document in grouping", Groups: groups}
			}
			doc := item.Document
			mainDocument = &doc
		case KindKeyShard:
			shards = append(shards, item.Shard)
		}
	}

	if mainDocument == nil && len(shards) == 0 {
		return nil, &InconsistentQuorumError{Reason: "no main documents or shards present in quorum", Groups: groups}
	}

	var version, quorumSize uint32
	var docChecksum wire.Multihash
	var publicKey ed25519.PublicKey
	if mainDocument != nil {
		version = mainDocument.Version()
		quorumSize = mainDocument.QuorumSize()
		docChecksum = mainDocument.Checksum()
		publicKey = mainDocument.Identity.PublicKey
	} else {
		version = keyShardVersion
		quorumSize = shards[0].QuorumSize()
		docChecksum = shards[0].DocumentChecksum()
		publicKey = shards[0].Identity.PublicKey
	}

	if expected, ok := q.QuorumSize(); ok && expected != quorumSize {
		return nil, &InconsistentQuorumError{Reason: "quorum size disagreement", Groups: groups}
	}

	if mainDocument != nil && mainDocument.QuorumSize() != uint32(len(shards)) {
		return nil, &InconsistentQuorumError{
			Reason: fmt.Sprintf("quorum size required is %d but had %d shards", mainDocument.QuorumSize(), len(shards)),
			Groups: groups,
		}
	}

	return &Quorum{
		mainDocument: mainDocument,
		shards:       shards,
		version:      version,
		quorumSize:   quorumSize,
		publicKey:    publicKey,
		docChecksum:  docChecksum,
	}, nil
}

// NewShardKind selects the behavior of Quorum.NewShard.
type NewShardKind struct {
	existingID shamir.ID
	fresh      bool
}

// FreshShard requests a new shard at a freshly drawn, random x-value.
func FreshShard() NewShardKind {
	return NewShardKind{fresh: true}
}

// ExistingShard requests the shard be deterministically recreated at the
// x-value named by id.
func ExistingShard(id shamir.ID) NewShardKind {
	return NewShardKind{existingID: id}
}

// Quorum is a set of main documents/key shards that have passed signature
// verification and mutual-consistency checks. It can recover the original
// secret (if it holds a main document) and, unless the backup is sealed,
// mint further key shards.
type Quorum struct {
	mainDocument *document.MainDocument
	shards       []keyshard.KeyShard

	version     uint32
	quorumSize  uint32
	publicKey   ed25519.PublicKey
	docChecksum wire.Multihash

	dealerOnce sync.Once
	dealer     shamir.Dealer
	dealerErr  error
}

// HasMainDocument reports whether this quorum holds a main document (and so
// can recover the original secret).
func (q *Quorum) HasMainDocument() bool {
	return q.mainDocument != nil
}

// DocumentChecksum returns the checksum every member of this quorum agreed
// on.
func (q *Quorum) DocumentChecksum() wire.Multihash {
	return q.docChecksum
}

// QuorumSize returns the number of shards required to recover this backup.
func (q *Quorum) QuorumSize() uint32 {
	return q.quorumSize
}

// decodeShardSecret parses raw as a ShardSecret, rejecting any trailing
// bytes (a recovered secret whose length doesn't match its encoding is a
// sign of a mismatched or malicious set of shards, not a format to tolerate).
func decodeShardSecret(raw []byte) (envelope.ShardSecret, error) {
	r := wire.NewReader(raw)
	secret, err := envelope.Decode(r)
	if err != nil {
		return envelope.ShardSecret{}, err
	}
	if err := r.Done(); err != nil {
		return envelope.ShardSecret{}, err
	}
	return secret, nil
}

func (q *Quorum) getDealer() (shamir.Dealer, error) {
	q.dealerOnce.Do(func() {
		shards := make([]shamir.Shard, len(q.shards))
		for i, s := range q.shards {
			shards[i] = s.Shard()
		}
		q.dealer, q.dealerErr = shamir.RecoverDealer(shards)
	})
	return q.dealer, q.dealerErr
}

// RecoverDocument decrypts and returns the original backed-up secret. It
// requires both a main document and enough shards to reconstruct the
// envelope's AEAD key.
func (q *Quorum) RecoverDocument() ([]byte, error) {
	if q.mainDocument == nil {
		return nil, fmt.Errorf("quorum: %w: no main document in quorum, cannot recover", perr.ErrMissingCapability)
	}

	dealer, err := q.getDealer()
	if err != nil {
		return nil, fmt.Errorf("quorum: %w: %v", perr.ErrShamir, err)
	}

	secret, err := decodeShardSecret(dealer.Secret())
	if err != nil {
		return nil, fmt.Errorf("quorum: %w: decoding shard secret: %v", perr.ErrMalformedSecret, err)
	}

	if secret.IDPrivateKey != nil {
		pub, ok := secret.IDPrivateKey.Public().(ed25519.PublicKey)
		if !ok || string(pub) != string(q.publicKey) {
			return nil, fmt.Errorf("quorum: %w: private key doesn't match quorum public key", perr.ErrInvariantViolation)
		}
	}

	return q.mainDocument.Decrypt(secret.DocKey)
}

// NewShard mints a further key shard, per kind. It requires enough shards
// to reconstruct the Shamir dealer and a signing key — sealed backups have
// no signing key and so can never mint further shards.
func (q *Quorum) NewShard(kind NewShardKind) (keyshard.KeyShard, error) {
	dealer, err := q.getDealer()
	if err != nil {
		return keyshard.KeyShard{}, fmt.Errorf("quorum: %w: %v", perr.ErrShamir, err)
	}

	secret, err := decodeShardSecret(dealer.Secret())
	if err != nil {
		return keyshard.KeyShard{}, fmt.Errorf("quorum: %w: decoding shard secret: %v", perr.ErrMalformedSecret, err)
	}

	if secret.IDPrivateKey == nil {
		return keyshard.KeyShard{}, fmt.Errorf("quorum: %w: backup is sealed, no new key shards allowed", perr.ErrMissingCapability)
	}

	pub, ok := secret.IDPrivateKey.Public().(ed25519.PublicKey)
	if !ok || string(pub) != string(q.publicKey) {
		return keyshard.KeyShard{}, fmt.Errorf("quorum: %w: id private key doesn't match expected id public key", perr.ErrInvariantViolation)
	}

	var shard shamir.Shard
	if kind.fresh {
		shard, err = dealer.NextShard()
		if err != nil {
			return keyshard.KeyShard{}, fmt.Errorf("quorum: minting new shard: %w", err)
		}
	} else {
		x, err := shamir.ParseID(kind.existingID)
		if err != nil {
			return keyshard.KeyShard{}, fmt.Errorf("quorum: %w: %v", perr.ErrWireParse, err)
		}
		var ok bool
		shard, ok = dealer.Shard(x)
		if !ok {
			return keyshard.KeyShard{}, fmt.Errorf("quorum: %w: requested shard id has x value of 0", perr.ErrInvariantViolation)
		}
	}

	return keyshard.New(q.docChecksum, shard, secret.IDPrivateKey), nil
}
