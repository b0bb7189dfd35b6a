package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCause = errors.New("cause")

func TestErrorList(t *testing.T) {
	var l ErrorList
	assert.Nil(t, l.Err())
	assert.Equal(t, "no error", l.Error())

	l.Add(NewError(0, 1, "unexpected '+'"))
	require.Error(t, l.Err())
	assert.Equal(t, "0-1: unexpected '+'", l.Error())

	l.Add(Wrap(errCause, 2, 5))
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "2 errors: 0-1: unexpected '+'; 2-5: cause", l.Error())
	assert.True(t, errors.Is(l.Err(), errCause))

	var entry *Error
	require.True(t, errors.As(l.Err(), &entry))
	assert.Equal(t, Span{Begin: 0, End: 1}, entry.Span)
}

func TestShow(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  *Error
		want string
	}{
		{
			name: "underlines the span",
			src:  "1 m + 2 sec",
			err:  NewError(8, 11, "unknown unit"),
			want: "1 m + 2 sec\n        ^^^ unknown unit",
		},
		{
			name: "empty span at end of input",
			src:  "1 +",
			err:  NewError(3, 3, "expected operand"),
			want: "1 +\n   ^ expected operand",
		},
		{
			name: "span past the end is clamped",
			src:  "x",
			err:  NewError(0, 9, "boom"),
			want: "x\n^ boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Show(tt.src, tt.err))
		})
	}
}
