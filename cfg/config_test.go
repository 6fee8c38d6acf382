package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteSize_UnmarshalText(t *testing.T) {
	cases := []struct {
		in   string
		want ByteSize
	}{
		{"2880", 2880},
		{"2880B", 2880},
		{"10KiB", 10 * 1024},
		{"1MiB", 1024 * 1024},
	}

	for _, c := range cases {
		var b ByteSize
		require.NoError(t, b.UnmarshalText([]byte(c.in)), c.in)
		assert.Equal(t, c.want, b, c.in)
	}
}

func TestByteSize_UnmarshalText_Invalid(t *testing.T) {
	var b ByteSize
	assert.Error(t, b.UnmarshalText([]byte("")))
	assert.Error(t, b.UnmarshalText([]byte("not-a-size")))
}

func TestValidateConfig_RejectsTooSmallPool(t *testing.T) {
	c := GetDefaultConfig()
	c.Engine.NumBuffers = 0

	err := ValidateConfig(&c)

	assert.ErrorContains(t, err, "num-buffers")
}

func TestValidateConfig_RejectsMinDirectBelowRecordLength(t *testing.T) {
	c := GetDefaultConfig()
	c.Engine.MinDirectBytes = c.Engine.RecordLength - 1

	err := ValidateConfig(&c)

	assert.ErrorContains(t, err, "min-direct-bytes")
}

func TestValidateConfig_AcceptsDefaults(t *testing.T) {
	c := GetDefaultConfig()

	assert.NoError(t, ValidateConfig(&c))
}
