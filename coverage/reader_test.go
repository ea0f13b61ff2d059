package coverage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistats/regionenrich/interval"
)

func TestReadPositions(t *testing.T) {
	pos, err := ReadPositions(strings.NewReader(
		"chrA\t10\nchrA\t20\n\nchrB\t5\nchrA\t30\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"chrA", "chrB"}, pos.Chroms)
	assert.Equal(t, []interval.PosType{10, 20, 30}, pos.Offsets["chrA"])
	assert.Equal(t, []interval.PosType{5}, pos.Offsets["chrB"])
}

func TestReadPositionsErrors(t *testing.T) {
	_, err := ReadPositions(strings.NewReader("chrA\n"))
	assert.Error(t, err)
	_, err = ReadPositions(strings.NewReader("chrA\tten\n"))
	assert.Error(t, err)
	_, err = ReadPositions(strings.NewReader("chrA\t-3\n"))
	assert.Error(t, err)
}
