package interval

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Genome is a chromosome name -> length table.  Chromosome order is the
// insertion order; the rest of the engine preserves this order wherever a
// deterministic chromosome traversal matters (e.g. the coverage prefix-sum
// table).
type Genome struct {
	names   []string
	lengths map[string]PosType
}

// NewGenome returns an empty genome table.
func NewGenome() *Genome {
	return &Genome{lengths: map[string]PosType{}}
}

// Add registers a chromosome.  It returns an error on a duplicate name or a
// nonpositive length.
func (g *Genome) Add(name string, length PosType) error {
	if length <= 0 {
		return fmt.Errorf("interval.Genome: nonpositive length %d for chromosome %s", length, name)
	}
	if _, found := g.lengths[name]; found {
		return fmt.Errorf("interval.Genome: duplicate chromosome %s", name)
	}
	g.names = append(g.names, name)
	g.lengths[name] = length
	return nil
}

// Names returns chromosome names in insertion order.  The returned slice must
// not be modified.
func (g *Genome) Names() []string { return g.names }

// Length returns the length of the named chromosome, and whether the
// chromosome is known.
func (g *Genome) Length(name string) (PosType, bool) {
	l, found := g.lengths[name]
	return l, found
}

// ReadGenome parses a chrom.sizes-style table (chromosome name and length,
// whitespace-separated, one chromosome per line).
func ReadGenome(reader io.Reader) (*Genome, error) {
	g := NewGenome()
	scanner := bufio.NewScanner(reader)
	lineIdx := 0
	var tokens [2][]byte
	for scanner.Scan() {
		lineIdx++
		nToken := getTokens(tokens[:], scanner.Bytes())
		if nToken == 0 {
			continue
		}
		if nToken != 2 {
			return nil, fmt.Errorf("interval.ReadGenome: line %d has fewer tokens than expected", lineIdx)
		}
		length, err := strconv.Atoi(string(tokens[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "interval.ReadGenome: line %d", lineIdx)
		}
		if length <= 0 || length >= PosTypeMax {
			return nil, fmt.Errorf("interval.ReadGenome: chromosome length %d out of range on line %d", length, lineIdx)
		}
		if err := g.Add(string(tokens[0]), PosType(length)); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(g.names) == 0 {
		return nil, fmt.Errorf("interval.ReadGenome: empty genome table")
	}
	return g, nil
}

// ReadGenomeFromPath is a wrapper for ReadGenome that takes a path instead of
// an io.Reader.
func ReadGenomeFromPath(path string) (*Genome, error) {
	reader, cleanup, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return ReadGenome(reader)
}
