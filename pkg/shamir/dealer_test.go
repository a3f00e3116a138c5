package shamir

import (
	"testing"

	"github.com/cyphar-go/paperback/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestDealerRoundTripSmallThreshold(t *testing.T) {
	secret := []byte("this is a test secret, not 4-byte aligned!")
	dealer, err := NewDealer(3, secret)
	require.NoError(t, err)
	require.Equal(t, secret, dealer.Secret())

	var shards []Shard
	for i := 0; i < 3; i++ {
		s, err := dealer.NextShard()
		require.NoError(t, err)
		shards = append(shards, s)
	}

	recovered, err := RecoverDealer(shards)
	require.NoError(t, err)
	require.Equal(t, secret, recovered.Secret())
}

func TestDealerRejectsLowThreshold(t *testing.T) {
	_, err := NewDealer(1, []byte("x"))
	require.Error(t, err)
}

func TestDealerRejectsThresholdAboveMax(t *testing.T) {
	_, err := NewDealer(config.MaxQuorumSize+1, []byte("x"))
	require.Error(t, err)
}

func TestShardXZeroRejected(t *testing.T) {
	dealer, err := NewDealer(2, []byte("secret"))
	require.NoError(t, err)
	_, ok := dealer.Shard(0)
	require.False(t, ok)
}

func TestRecoverDealerRejectsWrongShardCount(t *testing.T) {
	dealer, err := NewDealer(4, []byte("abcd1234"))
	require.NoError(t, err)

	var shards []Shard
	for i := 0; i < 3; i++ {
		s, err := dealer.NextShard()
		require.NoError(t, err)
		shards = append(shards, s)
	}

	_, err = RecoverDealer(shards)
	require.Error(t, err)
}

func TestRecoverDealerRejectsInconsistentThreshold(t *testing.T) {
	dealer, err := NewDealer(2, []byte("secret"))
	require.NoError(t, err)

	a, err := dealer.NextShard()
	require.NoError(t, err)
	b, err := dealer.NextShard()
	require.NoError(t, err)
	b.Threshold = 3

	_, err = RecoverDealer([]Shard{a, b})
	require.Error(t, err)
}

func TestShardIDRoundTrip(t *testing.T) {
	dealer, err := NewDealer(2, []byte("secret"))
	require.NoError(t, err)
	s, err := dealer.NextShard()
	require.NoError(t, err)

	x, err := ParseID(s.ID())
	require.NoError(t, err)
	require.Equal(t, s.X, x)
}

func TestManyThresholdsRoundTrip(t *testing.T) {
	for _, k := range []uint32{2, 3, 5, 10} {
		secret := []byte("round trip secret payload")
		dealer, err := NewDealer(k, secret)
		require.NoError(t, err)

		shards := make([]Shard, k)
		for i := range shards {
			s, err := dealer.NextShard()
			require.NoError(t, err)
			shards[i] = s
		}

		recovered, err := RecoverDealer(shards)
		require.NoError(t, err)
		require.Equal(t, secret, recovered.Secret())
	}
}
