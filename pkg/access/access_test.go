package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestFormatUID(t *testing.T) {
	assert.Equal(t, "0496DA753E6180", FormatUID([]byte{0x04, 0x96, 0xda, 0x75, 0x3e, 0x61, 0x80}))
	assert.Equal(t, "5DA85A06", FormatUID([]byte{0x5d, 0xa8, 0x5a, 0x06}))
	assert.Equal(t, "000A", FormatUID([]byte{0x00, 0x0a}))
	assert.Equal(t, "", FormatUID(nil))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "0496da753e6180", want: "0496DA753E6180"},
		{in: " 7f:09:d2:31 ", want: "7F09D231"},
		{in: "5d-a8-5a-06", want: "5DA85A06"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "", want: Granted},
		{in: "granted", want: Granted},
		{in: "LIMITED", want: Limited},
		{in: " denied ", want: Denied},
		{in: "admin", want: Denied, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownLevel)
		} else {
			assert.NoError(t, err)
		}
		assert.Equal(t, tt.want, got, "ParseLevel(%q)", tt.in)
	}

	for _, l := range []Level{Denied, Limited, Granted} {
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
}

func TestList_Lookup(t *testing.T) {
	list := NewList([]Entry{
		{UID: "0496DA753E6180", Level: Granted},
		{UID: "7f09d231", Level: Limited},
	})

	tests := []struct {
		name string
		uid  string
		want Level
	}{
		{name: "exact", uid: "0496DA753E6180", want: Granted},
		{name: "lower case", uid: "0496da753e6180", want: Granted},
		{name: "separators", uid: "7F:09:D2:31", want: Limited},
		{name: "unknown", uid: "DEADBEEF", want: Denied},
		{name: "prefix of a longer uid", uid: "0496DA75", want: Denied},
		{name: "zero padded short uid", uid: "0000007F09D231", want: Denied},
		{name: "empty", uid: "", want: Denied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, list.Lookup(tt.uid))
		})
	}

	assert.Equal(t, 2, list.Len())
}

func TestList_Nil(t *testing.T) {
	var list *List
	assert.Equal(t, Denied, list.Lookup("0496DA753E6180"))
	assert.Equal(t, 0, list.Len())
}

func TestList_Hashed(t *testing.T) {
	// MinCost keeps the test fast; HashUID uses DefaultCost.
	hash, err := bcrypt.GenerateFromPassword([]byte("5DA85A06"), bcrypt.MinCost)
	require.NoError(t, err)

	list := NewList([]Entry{{Hash: string(hash), Level: Limited}})
	assert.Equal(t, Limited, list.Lookup("5da85a06"))
	assert.Equal(t, Denied, list.Lookup("5DA85A07"))
}

func TestHashUID(t *testing.T) {
	hash, err := HashUID("5d:a8:5a:06")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("5DA85A06")))

	_, err = HashUID("  ")
	assert.Error(t, err)
}
