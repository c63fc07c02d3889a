package header

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textinput/lexdict/buffer"
	"github.com/textinput/lexdict/format"
)

func imageOf(t *testing.T, p *Policy) []byte {
	t.Helper()
	g := buffer.NewUnbound(format.MaxDictionarySize)
	require.NoError(t, p.AppendImage(g))
	var buf bytes.Buffer
	_, err := g.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestPolicy_RoundTrip(t *testing.T) {
	p := New(format.Version4, map[string]string{
		KeyName:              "main_en",
		KeyLocale:            "en_US",
		KeyVersion:           "54",
		KeyHasHistoricalInfo: "1",
	})

	img := imageOf(t, p)
	assert.Equal(t, p.Size(), len(img))

	parsed, err := Parse(img, format.Version4)
	require.NoError(t, err)

	assert.Equal(t, p.Size(), parsed.Size())
	assert.True(t, parsed.HasHistoricalInfo())

	name, ok := parsed.Attribute(KeyName)
	require.True(t, ok)
	assert.Equal(t, "main_en", name)

	v, ok := parsed.IntAttribute(KeyVersion)
	require.True(t, ok)
	assert.Equal(t, 54, v)
}

func TestPolicy_NoHistoricalInfoByDefault(t *testing.T) {
	p := New(format.Version4, map[string]string{KeyLocale: "de"})
	parsed, err := Parse(imageOf(t, p), format.Version4)
	require.NoError(t, err)
	assert.False(t, parsed.HasHistoricalInfo())
}

func TestPolicy_ParseIgnoresTrailingBytes(t *testing.T) {
	p := New(format.Version4, map[string]string{KeyLocale: "fr"})
	img := imageOf(t, p)

	// A mapped header file may be followed by growth from a previous
	// in-place update; Parse must only consume the declared size.
	img = append(img, 0xDE, 0xAD)
	parsed, err := Parse(img, format.Version4)
	require.NoError(t, err)
	assert.Equal(t, p.Size(), parsed.Size())
}

func TestPolicy_ParseErrors(t *testing.T) {
	p := New(format.Version4, map[string]string{KeyLocale: "es"})
	img := imageOf(t, p)

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), img...)
		bad[0] ^= 0xFF
		_, err := Parse(bad, format.Version4)
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Parse(img[:len(img)-1], format.Version4)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("short prelude", func(t *testing.T) {
		_, err := Parse(img[:4], format.Version4)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("unsupported version", func(t *testing.T) {
		_, err := Parse(img, format.Version(99))
		assert.ErrorIs(t, err, format.ErrUnsupportedVersion)
	})

	t.Run("version mismatch", func(t *testing.T) {
		bad := append([]byte(nil), img...)
		binary.LittleEndian.PutUint16(bad[4:6], 99)
		_, err := Parse(bad, format.Version4)
		assert.ErrorIs(t, err, format.ErrUnsupportedVersion)
	})
}

func TestPolicy_DeterministicImage(t *testing.T) {
	attrs := map[string]string{"b": "2", "a": "1", "c": "3"}
	img1 := imageOf(t, New(format.Version4, attrs))
	img2 := imageOf(t, New(format.Version4, attrs))
	assert.Equal(t, img1, img2)
}
