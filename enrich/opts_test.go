package enrich

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestOptsNormalize(t *testing.T) {
	opts := DefaultOpts
	assert.NoError(t, opts.normalize())
	expect.EQ(t, opts.ChunkSize, 50000)
	expect.True(t, opts.Parallelism > 0)

	opts = DefaultOpts
	opts.Simulations = 100
	opts.ChunkSize = 0
	assert.NoError(t, opts.normalize())
	expect.EQ(t, opts.ChunkSize, 100)

	opts = DefaultOpts
	opts.Simulations = 100
	opts.ChunkSize = 5000
	assert.NoError(t, opts.normalize())
	expect.EQ(t, opts.ChunkSize, 100)

	opts = DefaultOpts
	opts.Simulations = -1
	expect.True(t, opts.normalize() != nil)

	opts = DefaultOpts
	opts.RegionSetMaxRetries = 0
	expect.True(t, opts.normalize() != nil)
}
