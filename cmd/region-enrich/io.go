package main

// Input loading and result serialization for region-enrich.  All coordinate
// parsing lives in the interval and coverage packages; this file only glues
// paths, filtering and the output table together.

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"

	"github.com/epistats/regionenrich/coverage"
	"github.com/epistats/regionenrich/enrich"
	"github.com/epistats/regionenrich/interval"
)

// loadInputRegions reads the tested regions and truncates them against the
// optional filter, dropping regions that fall entirely outside it.
func loadInputRegions(path string, filter interval.Union, opts interval.BEDOpts) ([]interval.Entry, error) {
	entries, _, err := interval.ReadBEDFromPath(path, opts)
	if err != nil {
		return nil, err
	}
	return clipEntries(entries, filter), nil
}

// loadLoiSets reads each loci-of-interest file into a merged union, keyed by
// the file's basename (without .bed/.gz suffixes).
func loadLoiSets(paths []string, filter interval.Union, opts interval.BEDOpts) ([]enrich.LoiInfo, error) {
	lois := make([]enrich.LoiInfo, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		entries, records, err := interval.ReadBEDFromPath(path, opts)
		if err != nil {
			return nil, err
		}
		filtered := clipEntries(entries, filter)
		regions := interval.NewSorted(filtered).Merged()
		if regions.IntervalCount() == 0 {
			log.Error.Printf("%s: no loci remain after filtering, label will be tested against an empty set", path)
		}
		lois = append(lois, enrich.LoiInfo{
			Label:   loiLabel(path),
			Regions: regions,
			Loaded:  len(filtered),
			Records: records,
		})
		log.Printf("loaded %d of %d record(s) from %s", len(filtered), records, path)
	}
	return lois, nil
}

func loiLabel(path string) string {
	base := filepath.Base(path)
	for _, suffix := range []string{".gz", ".bed"} {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}

func clipEntries(entries []interval.Entry, filter interval.Union) []interval.Entry {
	if len(filter.Chroms()) == 0 {
		return entries
	}
	return interval.Entries(interval.NewSorted(entries).ClipTo(filter))
}

// buildBackground assembles the sampling background: a coverage-weighted
// index when -coverage is given, otherwise a uniform union of the allowed
// ranges (whole genome by default) minus any excluded ranges.
func buildBackground(flags pathFlags, genome *interval.Genome, bedOpts interval.BEDOpts) (*enrich.Background, error) {
	if flags.coveragePath != "" {
		positions, err := coverage.ReadPositionsFromPath(flags.coveragePath)
		if err != nil {
			return nil, err
		}
		builder := coverage.NewBuilder(genome)
		for _, chrom := range positions.Chroms {
			if err := builder.Add(chrom, positions.Offsets[chrom]); err != nil {
				return nil, err
			}
		}
		idx, err := builder.Build()
		if err != nil {
			return nil, err
		}
		log.Printf("coverage background: %d position(s) on %d chromosome(s)", idx.Total(), idx.NumChroms())
		return enrich.NewWeightedBackground(idx), nil
	}

	allowed := interval.Union{}
	if flags.backgroundPath != "" {
		var err error
		if allowed, err = interval.NewUnionFromPath(flags.backgroundPath, bedOpts); err != nil {
			return nil, err
		}
	}
	if flags.excludePath != "" {
		excluded, err := interval.NewUnionFromPath(flags.excludePath, bedOpts)
		if err != nil {
			return nil, err
		}
		if len(allowed.Chroms()) == 0 {
			allowed = excluded.Complement(genome)
		} else {
			allowed = allowed.Subtract(excluded, genome)
		}
	}
	bg, err := enrich.NewUniformBackground(allowed, genome)
	if err != nil {
		return nil, err
	}
	return bg, nil
}

// writeResults serializes one row per tested label.
func writeResults(ctx context.Context, path string, results []enrich.Result) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, out, &err)

	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString("loi\tloaded\trecords\tobserved\tsampled_sets_n\tsampled_mean\tsampled_median\tsampled_sd\tcount_above\tcount_below\tp_value\tq_value")
	if err = w.EndLine(); err != nil {
		return
	}
	for i := range results {
		r := &results[i]
		w.WriteString(r.Label)
		w.WriteUint32(uint32(r.Loaded))
		w.WriteUint32(uint32(r.Records))
		w.WriteString(strconv.Itoa(r.Observed))
		w.WriteString(strconv.FormatInt(r.Simulations, 10))
		w.WriteString(formatFloat(r.SampledMean))
		w.WriteString(formatFloat(r.SampledMedian))
		w.WriteString(formatFloat(r.SampledSD))
		w.WriteString(strconv.FormatInt(r.CountAbove, 10))
		w.WriteString(strconv.FormatInt(r.CountBelow, 10))
		w.WriteString(formatFloat(r.PValue))
		w.WriteString(formatFloat(r.QValue))
		if err = w.EndLine(); err != nil {
			return
		}
	}
	return w.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
