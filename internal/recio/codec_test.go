package recio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypedRoundTripContiguous(t *testing.T) {
	eng := newTestEngine(t, 4, 2880, 8*2880)
	file, _ := openMemFile(t, eng, HDUImage)

	src := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	original := append([]byte(nil), src...)
	require.NoError(t, eng.WriteInt32s(file, 0, 4, 2, src))

	dst := make([]byte, 8)
	require.NoError(t, eng.ReadInt32s(file, 0, 4, 2, dst))
	require.Equal(t, original, dst)
}

func TestTypedRoundTripStrided(t *testing.T) {
	eng := newTestEngine(t, 4, 2880, 8*2880)
	file, _ := openMemFile(t, eng, HDUImage)

	src := []byte{0xAA, 0xBB, 0xCC, 0xDD} // 2 int16 values
	original := append([]byte(nil), src...)
	require.NoError(t, eng.WriteInt16s(file, 0, 6, 2, src))

	dst := make([]byte, 4)
	require.NoError(t, eng.ReadInt16s(file, 0, 6, 2, dst))
	require.Equal(t, original, dst)
}

func TestByteSwapIdentityWhenWidthOne(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03}
	swapBytes(buf, 1)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, buf)
}

func TestSwapBytesWidthFour(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04}
	swapBytes(buf, 4)
	if nativeIsBigEndian {
		require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf)
	} else {
		require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)
	}
}

func TestIEEEFloatCodecIsIdentity(t *testing.T) {
	var c IEEEFloatCodec
	buf := []byte{0x3f, 0x80, 0x00, 0x00}
	before := append([]byte(nil), buf...)
	c.FromWire(buf, 4)
	require.Equal(t, before, buf)
	c.ToWire(buf, 4)
	require.Equal(t, before, buf)
}
