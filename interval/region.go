package interval

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRegionString converts a command-line region restriction into an Entry
// with 0-based, half-open boundaries.  Three forms are accepted:
//
//	[chromosome]:[1-based first pos]-[1-based last pos]
//	[chromosome]:[1-based pos]
//	[chromosome]
//
// The bare-chromosome form returns the interval [0, PosTypeMax - 1).
func ParseRegionString(region string) (Entry, error) {
	colonPos := strings.IndexByte(region, ':')
	if colonPos == -1 {
		if region == "" {
			return Entry{}, fmt.Errorf("interval.ParseRegionString: empty region string")
		}
		return Entry{Chrom: region, Start0: 0, End: PosTypeMax - 1}, nil
	}
	chrom, rangeStr := region[:colonPos], region[colonPos+1:]
	if chrom == "" {
		return Entry{}, fmt.Errorf("interval.ParseRegionString: empty chromosome in %q", region)
	}
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		pos1, err := parsePos1(rangeStr)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Chrom: chrom, Start0: pos1 - 1, End: pos1}, nil
	}
	start1, err := parsePos1(rangeStr[:dashPos])
	if err != nil {
		return Entry{}, err
	}
	end1, err := parsePos1(rangeStr[dashPos+1:])
	if err != nil {
		return Entry{}, err
	}
	if end1 <= start1 {
		return Entry{}, fmt.Errorf("interval.ParseRegionString: invalid range %q", rangeStr)
	}
	return Entry{Chrom: chrom, Start0: start1 - 1, End: end1}, nil
}

// parsePos1 parses a 1-based position.  PosTypeMax - 1 is the highest
// accepted value, so the resulting half-open end never reaches PosTypeMax.
func parsePos1(s string) (PosType, error) {
	pos, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("interval.ParseRegionString: %v", err)
	}
	if pos <= 0 || pos >= PosTypeMax {
		return 0, fmt.Errorf("interval.ParseRegionString: position %s out of range", s)
	}
	return PosType(pos), nil
}
