package message

import (
	"strings"
	"testing"

	"github.com/itohio/badgelab/pkg/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Layout(t *testing.T) {
	data := Marshal(Frame{UID: "0496DA753E6180"})
	require.Len(t, data, UIDSize)
	assert.Equal(t, []byte("0496DA753E6180"), data[:14])
	for _, b := range data[14:] {
		assert.Zero(t, b)
	}

	data = Marshal(Frame{UID: "5DA85A06", Level: access.Limited, HasLevel: true})
	require.Len(t, data, MaxSize)
	assert.Equal(t, byte(access.Limited), data[UIDSize])
}

func TestMarshal_Truncates(t *testing.T) {
	long := strings.Repeat("A", 40)
	data := Marshal(Frame{UID: long})
	require.Len(t, data, UIDSize)
	assert.Zero(t, data[MaxUIDLen], "buffer must stay NUL terminated")

	f, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("A", MaxUIDLen), f.UID)
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Frame
		wantErr bool
	}{
		{
			name: "peer frame is upper-cased",
			data: Marshal(Frame{UID: "0496da753e6180"}),
			want: Frame{UID: "0496DA753E6180"},
		},
		{
			name: "short payload",
			data: []byte("7F09D231"),
			want: Frame{UID: "7F09D231"},
		},
		{
			name: "with level",
			data: Marshal(Frame{UID: "7F09D231", Level: access.Granted, HasLevel: true}),
			want: Frame{UID: "7F09D231", Level: access.Granted, HasLevel: true},
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: true,
		},
		{
			name:    "oversized",
			data:    make([]byte, MaxSize+1),
			wantErr: true,
		},
		{
			name:    "bad level byte",
			data:    append(Marshal(Frame{UID: "AA"}), 9),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshal_SizeError(t *testing.T) {
	_, err := Unmarshal([]byte{})
	assert.ErrorIs(t, err, ErrFrameSize)
}
