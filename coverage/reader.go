package coverage

import (
	"bufio"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/epistats/regionenrich/interval"
)

// Positions holds per-chromosome covered offsets in file order.
type Positions struct {
	Chroms  []string
	Offsets map[string][]interval.PosType
}

// ReadPositions parses a covered-position table: one "chromosome<TAB>offset"
// record per line, 0-based offsets, grouped by chromosome and ascending
// within each chromosome (ordering is validated by Builder.Add, not here).
func ReadPositions(reader io.Reader) (Positions, error) {
	pos := Positions{Offsets: map[string][]interval.PosType{}}
	scanner := bufio.NewScanner(reader)
	lineIdx := 0
	var tokens [2][]byte
	for scanner.Scan() {
		lineIdx++
		nToken := tokenize(tokens[:], scanner.Bytes())
		if nToken == 0 {
			continue
		}
		if nToken != 2 {
			return Positions{}, errors.Errorf("coverage.ReadPositions: line %d has fewer tokens than expected", lineIdx)
		}
		off, err := strconv.Atoi(string(tokens[1]))
		if err != nil {
			return Positions{}, errors.Wrapf(err, "coverage.ReadPositions: line %d", lineIdx)
		}
		if off < 0 || off >= interval.PosTypeMax {
			return Positions{}, errors.Errorf("coverage.ReadPositions: offset %d out of range on line %d", off, lineIdx)
		}
		chrom := string(tokens[0])
		if _, found := pos.Offsets[chrom]; !found {
			pos.Chroms = append(pos.Chroms, chrom)
		}
		pos.Offsets[chrom] = append(pos.Offsets[chrom], interval.PosType(off))
	}
	if err := scanner.Err(); err != nil {
		return Positions{}, err
	}
	return pos, nil
}

// ReadPositionsFromPath is a wrapper for ReadPositions that takes a path
// instead of an io.Reader.  Gzip inputs are decompressed transparently.
func ReadPositionsFromPath(path string) (pos Positions, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ReadPositions(reader)
}

// tokenize splits curLine on runs of characters <= ' ', saving up to
// len(tokens) tokens and returning the number saved.
func tokenize(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}
