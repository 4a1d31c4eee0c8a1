package stream

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specdiff/internal/testutil"
)

func readAll(t *testing.T, r *Reader) ([]int64, []string) {
	t.Helper()
	var lines []int64
	var data []string
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return lines, data
		}
		require.NoError(t, err)
		lines = append(lines, rec.Line)
		data = append(data, string(rec.Data))
	}
}

func TestReader_SkipsBlankLines(t *testing.T) {
	r := NewReader(strings.NewReader("a\n\n  \t\nb\r\nc"))

	lines, data := readAll(t, r)
	assert.Equal(t, []int64{1, 4, 5}, lines)
	assert.Equal(t, []string{"a", "b", "c"}, data)
	assert.Equal(t, int64(5), r.Lines())
	assert.Equal(t, int64(2), r.Blank())
}

func TestReader_OnBlankReportsLineNumbers(t *testing.T) {
	r := NewReader(strings.NewReader("\na\n   \t \r\nb\n\n"))
	var blank []int64
	r.OnBlank(func(line int64) { blank = append(blank, line) })

	lines, _ := readAll(t, r)
	assert.Equal(t, []int64{2, 4}, lines)
	assert.Equal(t, []int64{1, 3, 5}, blank)
	// Every consumed line is either a record or a reported blank.
	assert.Equal(t, r.Lines(), int64(len(lines)+len(blank)))
}

func TestReader_Empty(t *testing.T) {
	r := NewReader(strings.NewReader(""))

	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)

	// EOF is sticky.
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_LongLine(t *testing.T) {
	long := strings.Repeat("x", 3*readBufferSize+17)
	r := NewReader(strings.NewReader(long + "\nshort\n"))

	_, data := readAll(t, r)
	require.Len(t, data, 2)
	assert.Len(t, data[0], len(long))
	assert.Equal(t, "short", data[1])
}

func TestReader_ReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	r := NewReader(&testutil.ErrReader{Data: []byte("first\n"), Err: boom})

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "first", string(rec.Data))

	_, err = r.Next()
	assert.ErrorIs(t, err, boom)
}
