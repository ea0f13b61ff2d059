package main

// region-enrich estimates whether the overlap between a set of input regions
// (e.g. differentially methylated regions) and one or more loci-of-interest
// files exceeds (or falls below) what would occur by chance.  It repeatedly
// draws randomized region sets with matched weights from a constrained
// background, compares the chosen metric on real vs. randomized data, and
// reports permutation p-values with Benjamini-Hochberg q-values.
//
// Example, coverage-weighted background:
//
//	region-enrich -genome hg38.chrom.sizes -regions dmrs.bed \
//	    -coverage cytosines.tsv.gz -loi cpg_islands.bed,enhancers.bed \
//	    -simulations 100000 -hypothesis greater -output enrichment.tsv
//
// Example, uniform background restricted to chr1:
//
//	region-enrich -genome hg38.chrom.sizes -regions dmrs.bed \
//	    -background mappable.bed -loi cpg_islands.bed \
//	    -filter chr1 -output enrichment.tsv
import (
	"flag"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/epistats/regionenrich/enrich"
	"github.com/epistats/regionenrich/interval"
)

type pathFlags struct {
	genomePath     string
	regionsPath    string
	loiPaths       string
	coveragePath   string
	backgroundPath string
	excludePath    string
	filterRegion   string
	outputPath     string
	oneBased       bool
}

func main() {
	opts := enrich.DefaultOpts
	flags := pathFlags{}
	metricName := enrich.OverlapCount.String()
	hypothesisName := enrich.Greater.String()

	flag.StringVar(&flags.genomePath, "genome", "", "chrom.sizes-style table of chromosome lengths (required)")
	flag.StringVar(&flags.regionsPath, "regions", "", "BED file of input regions whose enrichment is tested (required)")
	flag.StringVar(&flags.loiPaths, "loi", "", "Comma-separated list of loci-of-interest BED files (required)")
	flag.StringVar(&flags.coveragePath, "coverage", "", `Covered-position table ("chrom<TAB>offset" per line) for a
coverage-weighted background.  Mutually exclusive with -background.`)
	flag.StringVar(&flags.backgroundPath, "background", "", `BED file of allowed ranges for a uniform-basepair background.
When neither -coverage nor -background is given, the whole genome is allowed.`)
	flag.StringVar(&flags.excludePath, "exclude", "", "BED file of ranges subtracted from the uniform background (e.g. assembly gaps)")
	flag.StringVar(&flags.filterRegion, "filter", "", "Restrict the test to one region, e.g. chr1 or chr1:100-2000 (1-based, inclusive)")
	flag.StringVar(&flags.outputPath, "output", "./enrichment.tsv", "Output TSV path")
	flag.BoolVar(&flags.oneBased, "one-based", false, "Interpret BED inputs as one-based [start, end]")

	flag.IntVar(&opts.Simulations, "simulations", enrich.DefaultOpts.Simulations, "Number of randomized region sets to draw")
	flag.IntVar(&opts.ChunkSize, "chunk-size", enrich.DefaultOpts.ChunkSize,
		"Simulations held in memory at once (0 = all in one chunk)")
	flag.IntVar(&opts.RegionSetMaxRetries, "set-retries", enrich.DefaultOpts.RegionSetMaxRetries,
		"Whole-set redraws before the run aborts")
	flag.IntVar(&opts.SingleRegionMaxRetries, "region-retries", enrich.DefaultOpts.SingleRegionMaxRetries,
		"Candidate draws per region before the set attempt is abandoned")
	flag.BoolVar(&opts.WithReplacement, "with-replacement", false, "Permit overlaps among the regions of one simulated set")
	flag.IntVar(&opts.Parallelism, "parallelism", 0, "Worker count (0 = all cores)")
	flag.StringVar(&metricName, "metric", metricName, "Comparison metric: overlap or intersection")
	flag.BoolVar(&opts.LoiFirst, "loi-first", false, "Compute metric(loi, simulated) instead of metric(simulated, loi)")
	flag.StringVar(&hypothesisName, "hypothesis", hypothesisName, "Test tail: greater, less or two-sided")
	flag.Int64Var(&opts.Seed, "seed", 0, "Seed for reproducible draws (0 = nondeterministic)")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	var err error
	if opts.Metric, err = enrich.ParseMetric(metricName); err != nil {
		log.Fatalf("%v", err)
	}
	if opts.Hypothesis, err = enrich.ParseHypothesis(hypothesisName); err != nil {
		log.Fatalf("%v", err)
	}
	if flags.genomePath == "" || flags.regionsPath == "" || flags.loiPaths == "" {
		log.Fatalf("-genome, -regions and -loi are required")
	}
	if flags.coveragePath != "" && flags.backgroundPath != "" {
		log.Fatalf("-coverage and -background are mutually exclusive")
	}
	if flags.coveragePath != "" && flags.excludePath != "" {
		log.Fatalf("-exclude applies to the uniform background only")
	}

	genome, err := interval.ReadGenomeFromPath(flags.genomePath)
	if err != nil {
		log.Fatalf("load genome %s: %v", flags.genomePath, err)
	}
	filter, err := parseFilter(flags.filterRegion, genome)
	if err != nil {
		log.Fatalf("parse -filter: %v", err)
	}
	opts.Filter = filter

	bedOpts := interval.BEDOpts{OneBasedInput: flags.oneBased}
	input, err := loadInputRegions(flags.regionsPath, filter, bedOpts)
	if err != nil {
		log.Fatalf("load input regions %s: %v", flags.regionsPath, err)
	}
	if len(input) == 0 {
		log.Fatalf("no input regions remain after filtering %s", flags.regionsPath)
	}
	log.Printf("loaded %d input region(s) from %s", len(input), flags.regionsPath)

	lois, err := loadLoiSets(strings.Split(flags.loiPaths, ","), filter, bedOpts)
	if err != nil {
		log.Fatalf("load loci of interest: %v", err)
	}

	bg, err := buildBackground(flags, genome, bedOpts)
	if err != nil {
		log.Fatalf("build background: %v", err)
	}

	results, diag, err := enrich.RunEnrichmentTest(ctx, input, lois, bg, opts)
	if err != nil {
		log.Fatalf("enrichment test: %v", err)
	}
	if err := writeResults(ctx, flags.outputPath, results); err != nil {
		log.Fatalf("write %s: %v", flags.outputPath, err)
	}
	logAttempts(diag)
	log.Printf("wrote %d result row(s) to %s", len(results), flags.outputPath)
}

// parseFilter converts the -filter region string to a single-interval union,
// clamping an open-ended chromosome filter to the chromosome length.
func parseFilter(region string, genome *interval.Genome) (interval.Union, error) {
	if region == "" {
		return interval.Union{}, nil
	}
	entry, err := interval.ParseRegionString(region)
	if err != nil {
		return interval.Union{}, err
	}
	if length, found := genome.Length(entry.Chrom); found && entry.End > length {
		entry.End = length
	}
	return interval.NewUnionFromEntries([]interval.Entry{entry})
}

// logAttempts reports the whole-set retry histogram; a heavy tail here means
// the background is close to infeasible for the requested weights.
func logAttempts(diag enrich.RunDiagnostics) {
	for attempts, n := range diag.SetAttempts {
		if n > 0 && attempts > 0 {
			log.Printf("%d simulation(s) needed %d set attempts", n, attempts+1)
		}
	}
}
