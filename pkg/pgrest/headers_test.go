package pgrest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestHeaders(t *testing.T) {
	assert.Equal(t, PreferCountExact, ListHeaders().Get(HeaderPrefer))

	h := WriteHeaders(true)
	assert.Equal(t, PreferReturnRepresentation, h.Get(HeaderPrefer))
	assert.Equal(t, MIMESingularJSON, h.Get(HeaderAccept))

	h = WriteHeaders(false)
	assert.Equal(t, PreferReturnRepresentation, h.Get(HeaderPrefer))
	assert.Empty(t, h.Get(HeaderAccept))

	assert.Equal(t, MIMESingularJSON, SingularHeaders().Get(HeaderAccept))
}
