package pgrest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPrimaryKeyOf(t *testing.T) {
	reg := Registry{
		"licenses": {"license_nr", "valid_from"},
		"users":    {"user_id"},
	}

	assert.Equal(t, PrimaryKey{"license_nr", "valid_from"}, reg.PrimaryKeyOf("licenses"))
	assert.Equal(t, PrimaryKey{"user_id"}, reg.PrimaryKeyOf("users"))
	assert.Equal(t, PrimaryKey{"id"}, reg.PrimaryKeyOf("unregistered"))
	assert.True(t, reg.PrimaryKeyOf("licenses").IsCompound())
	assert.False(t, reg.PrimaryKeyOf("users").IsCompound())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		pk     PrimaryKey
		wantID string
		want   []string
	}{
		{
			name:   "scalar string key",
			record: Record{"id": "abc", "name": "ignored"},
			pk:     PrimaryKey{"id"},
			wantID: "abc",
			want:   []string{"abc"},
		},
		{
			name:   "scalar numeric key",
			record: Record{"id": float64(7)},
			pk:     PrimaryKey{"id"},
			wantID: "7",
			want:   []string{"7"},
		},
		{
			name:   "compound string key",
			record: Record{"a": "x", "b": "y"},
			pk:     PrimaryKey{"a", "b"},
			wantID: `["x","y"]`,
			want:   []string{"x", "y"},
		},
		{
			name:   "compound mixed key keeps order",
			record: Record{"nr": float64(12), "region": "eu"},
			pk:     PrimaryKey{"region", "nr"},
			wantID: `["eu",12]`,
			want:   []string{"eu", "12"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Encode(tt.record, tt.pk)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)

			vals, err := Decode(id, tt.pk)
			require.NoError(t, err)
			assert.Equal(t, tt.want, vals)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	pk := PrimaryKey{"a", "b"}

	_, err := Decode("not-json", pk)
	var malformed *MalformedIdentifierError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "not-json", malformed.ID)

	_, err = Decode(`["only-one"]`, pk)
	require.True(t, errors.As(err, &malformed))
}

func TestKeyProjection(t *testing.T) {
	record := Record{"a": "x", "b": float64(2), "name": "ada"}

	got := KeyProjection(PrimaryKey{"a", "b"}, record)
	assert.Equal(t, Record{"a": "x", "b": float64(2)}, got)

	// missing key columns are simply omitted
	got = KeyProjection(PrimaryKey{"a", "missing"}, record)
	assert.Equal(t, Record{"a": "x"}, got)
}
