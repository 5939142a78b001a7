package offline

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClients(t *testing.T) {
	c := NewClients()

	known := uuid.New()
	b, ok := c.Register(known.String())
	require.True(t, ok)
	assert.Equal(t, known, b)

	_, ok = c.Register("")
	assert.False(t, ok)
	_, ok = c.Register("not-a-uuid")
	assert.False(t, ok)
	_, ok = c.Register(uuid.Nil.String())
	assert.False(t, ok)

	minted := c.Mint()
	assert.NotEqual(t, uuid.Nil, minted)
	assert.Equal(t, 1, c.Len(), "invalid and minted ids are not recorded")
	assert.Empty(t, c.Controller(known))

	_, ok = c.Register(minted.String())
	require.True(t, ok)

	assert.Equal(t, 2, c.Claim("spark-v1"))
	assert.Equal(t, "spark-v1", c.Controller(known))
	assert.Zero(t, c.Claim("spark-v1"), "claiming twice changes nothing")

	c.Register(known.String())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "spark-v1", c.Controller(known), "re-registering keeps the controller")
}

func TestClients_LimitEvictsLeastRecentlySeen(t *testing.T) {
	c := NewClientsLimit(2)

	a, b, d := uuid.New(), uuid.New(), uuid.New()
	c.Register(a.String())
	c.Register(b.String())
	c.Register(a.String())
	c.Register(d.String())

	assert.Equal(t, 2, c.Len())
	c.Claim("v")
	assert.Equal(t, "v", c.Controller(a))
	assert.Equal(t, "v", c.Controller(d))
	assert.Empty(t, c.Controller(b), "b was seen least recently")

	for i := 0; i < 100; i++ {
		c.Register(uuid.NewString())
	}
	assert.Equal(t, 2, c.Len())
}
