package gf32

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddIsXor(t *testing.T) {
	require.Equal(t, Elem(0), Elem(0x1234).Add(Elem(0x1234)))
	require.Equal(t, Elem(0x3726), Elem(0x1234).Add(Elem(0x2512)))
}

func TestEveryElementIsItsOwnAdditiveInverse(t *testing.T) {
	for _, v := range []Elem{0, 1, 0xdeadbeef, 0xffffffff} {
		require.Equal(t, v, v.Neg())
		require.Equal(t, Zero, v.Add(v))
	}
}

func TestMulIdentity(t *testing.T) {
	for _, v := range []Elem{0, 1, 42, 0xcafebabe} {
		require.Equal(t, v, v.Mul(One))
		require.Equal(t, Zero, v.Mul(Zero))
	}
}

func TestMulCommutative(t *testing.T) {
	a, b := Elem(0x1337beef), Elem(0x0d15ea5e)
	require.Equal(t, a.Mul(b), b.Mul(a))
}

func TestMulDistributesOverAdd(t *testing.T) {
	a, b, c := Elem(7), Elem(11), Elem(99)
	lhs := a.Mul(b.Add(c))
	rhs := a.Mul(b).Add(a.Mul(c))
	require.Equal(t, lhs, rhs)
}

func TestZeroHasNoInverse(t *testing.T) {
	_, ok := Zero.Inverse()
	require.False(t, ok)
}

func TestInverseRoundTrip(t *testing.T) {
	for _, v := range []Elem{1, 2, 3, 0xdeadbeef, 0x12345678, 0xffffffff} {
		inv, ok := v.Inverse()
		require.True(t, ok, "expected %d to be invertible", v)
		require.Equal(t, One, v.Mul(inv))
	}
}

func TestDivByZeroPanics(t *testing.T) {
	require.Panics(t, func() {
		Elem(5).Div(Zero)
	})
}

func TestBytesRoundTrip(t *testing.T) {
	v := Elem(0x01020304)
	require.Equal(t, v, FromBytes(v.Bytes()))
}

func TestFromBytesPartialPadsShortInput(t *testing.T) {
	elem, rest := FromBytesPartial([]byte{0x01, 0x02})
	require.Equal(t, Elem(0x0201), elem)
	require.Empty(t, rest)
}

func TestFromBytesPartialReturnsRemainder(t *testing.T) {
	elem, rest := FromBytesPartial([]byte{0x01, 0x00, 0x00, 0x00, 0xff, 0xee})
	require.Equal(t, Elem(1), elem)
	require.Equal(t, []byte{0xff, 0xee}, rest)
}

func FuzzMulInverse(f *testing.F) {
	f.Add(uint32(1))
	f.Add(uint32(2))
	f.Add(uint32(0xdeadbeef))
	f.Add(uint32(0xffffffff))

	f.Fuzz(func(t *testing.T, raw uint32) {
		v := Elem(raw)
		if v == Zero {
			t.Skip("zero has no inverse")
		}
		inv, ok := v.Inverse()
		require.True(t, ok)
		require.Equal(t, One, v.Mul(inv))
		require.Equal(t, One, inv.Mul(v))
	})
}

func FuzzAddIsSelfInverse(f *testing.F) {
	f.Add(uint32(0), uint32(0))
	f.Add(uint32(1), uint32(2))

	f.Fuzz(func(t *testing.T, a, b uint32) {
		x, y := Elem(a), Elem(b)
		require.Equal(t, x, x.Add(y).Add(y))
	})
}
