package interval

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
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

// BEDOpts defines behavior of this package's BED-loading functions.
type BEDOpts struct {
	// OneBasedInput interprets the BED interval boundaries as one-based
	// [start, end] instead of the usual zero-based [start, end).
	OneBasedInput bool
}

// ReadBED parses the first three columns of a BED stream into entries, in
// file order, with no merging or sorting applied.  It also reports the raw
// record count (including records dropped for being empty).
func ReadBED(reader io.Reader, opts BEDOpts) (entries []Entry, records int, err error) {
	scanner := bufio.NewScanner(reader)
	var startSubtract int
	if opts.OneBasedInput {
		startSubtract++
	}
	var tokens [3][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		nToken := getTokens(tokens[:], scanner.Bytes())
		if nToken != 3 {
			if nToken == 0 {
				continue
			}
			err = fmt.Errorf("interval.ReadBED: line %d has fewer tokens than expected", lineIdx)
			return
		}
		records++
		var parsedStart int
		if parsedStart, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			return
		}
		parsedStart -= startSubtract
		if parsedStart < 0 {
			err = fmt.Errorf("interval.ReadBED: negative start coordinate %s on line %d", tokens[1], lineIdx)
			return
		}
		var parsedEnd int
		if parsedEnd, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			return
		}
		if parsedEnd < parsedStart || parsedEnd >= PosTypeMax {
			err = fmt.Errorf("interval.ReadBED: invalid coordinate pair on line %d", lineIdx)
			return
		}
		if parsedEnd == parsedStart {
			continue
		}
		// The token refers to bytes of the scanner's buffer that will be
		// overwritten soon, so the chromosome name needs a full copy.
		entries = append(entries, Entry{
			Chrom:  string(tokens[0]),
			Start0: PosType(parsedStart),
			End:    PosType(parsedEnd),
		})
	}
	err = scanner.Err()
	return
}

// NewUnion loads a BED stream and reduces it to a merged interval union.
// Input does not need to be sorted.
func NewUnion(reader io.Reader, opts BEDOpts) (Union, error) {
	entries, _, err := ReadBED(reader, opts)
	if err != nil {
		return Union{}, err
	}
	sortEntries(entries)
	return NewUnionFromEntries(entries)
}

// openMaybeGzip opens path via the grail file package, transparently
// decompressing gzip inputs.  The returned cleanup must be called once the
// reader is drained.
func openMaybeGzip(path string) (io.Reader, func(), error) {
	ctx := vcontext.Background()
	infile, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { infile.Close(ctx) } // nolint: errcheck
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			cleanup()
			return nil, nil, err
		}
		reader = gz
	}
	return reader, cleanup, nil
}

// NewUnionFromPath is a wrapper for NewUnion that takes a path instead of an
// io.Reader.
func NewUnionFromPath(path string, opts BEDOpts) (Union, error) {
	reader, cleanup, err := openMaybeGzip(path)
	if err != nil {
		return Union{}, err
	}
	defer cleanup()
	return NewUnion(reader, opts)
}

// ReadBEDFromPath is a wrapper for ReadBED that takes a path instead of an
// io.Reader.
func ReadBEDFromPath(path string, opts BEDOpts) ([]Entry, int, error) {
	reader, cleanup, err := openMaybeGzip(path)
	if err != nil {
		return nil, 0, err
	}
	defer cleanup()
	return ReadBED(reader, opts)
}
