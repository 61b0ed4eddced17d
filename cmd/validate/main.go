// Command validate decodes every configured traffic camera feed and checks the
// normalized output: decode success and record counts, finite coordinates,
// DGT geofence membership, per-source ID uniqueness and image URL shape.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -urbanas data/urbanas/trafico-camaras.kml \
//	  -m30 data/m30/calle30-camaras.xml \
//	  -radares data/radares/radares-fijos-moviles.csv \
//	  -dgt data/dgt/camaras_datex2_v36.xml
//
// Unset flags fall back to the FEED_*_PATH variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/couchcryptid/traffic-cams-service/internal/adapter/feed"
	"github.com/couchcryptid/traffic-cams-service/internal/config"
	"github.com/couchcryptid/traffic-cams-service/internal/domain"
	"github.com/couchcryptid/traffic-cams-service/internal/observability"
	"github.com/couchcryptid/traffic-cams-service/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	policy := flag.String("policy", string(cfg.CoordinatePolicy), "coordinate policy: drop or keep")
	overrides := make(map[domain.Source]*string, len(domain.Sources))
	for _, src := range domain.Sources {
		overrides[src] = flag.String(string(src), cfg.FeedPaths[src], "path to the "+string(src)+" feed")
	}
	flag.Parse()

	p, err := domain.ParseCoordinatePolicy(*policy)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(1)
	}
	paths := make(map[domain.Source]string, len(overrides))
	for src, path := range overrides {
		paths[src] = *path
	}

	if code := run(os.Stdout, paths, p); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, paths map[domain.Source]string, policy domain.CoordinatePolicy) int {
	extractors, err := feed.NewFileExtractors(paths)
	if err != nil {
		fmt.Fprintln(out, err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := pipeline.New(extractors, pipeline.NewTransformer(policy), logger,
		observability.NewUnregisteredMetrics(), 30*time.Second)

	decode := &phase{name: "Phase 1: Feeds decode"}
	bySource := make(map[domain.Source][]domain.Record, len(extractors))
	for _, e := range extractors {
		records, err := p.Source(context.Background(), e.Source())
		if err != nil {
			decode.errorf("%s (%s): %v", e.Source(), e.Path(), err)
			continue
		}
		if len(records) == 0 {
			decode.errorf("%s (%s): no records after normalization", e.Source(), e.Path())
		}
		bySource[e.Source()] = records
	}

	phases := []*phase{
		decode,
		validateCoordinates(bySource, policy),
		validateIDs(bySource),
		validateImageURLs(bySource),
	}

	return report(out, phases, bySource)
}

func validateCoordinates(bySource map[domain.Source][]domain.Record, policy domain.CoordinatePolicy) *phase {
	p := &phase{name: "Phase 2: Coordinates"}
	for _, src := range domain.Sources {
		for _, r := range bySource[src] {
			if !r.HasFiniteCoordinates() {
				// Non-finite rows are legitimate under the keep policy.
				if policy == domain.PolicyDrop {
					p.errorf("%s %s: non-finite coordinates (%v, %v)", src, r.ID, r.Latitude, r.Longitude)
				}
				continue
			}
			if src == domain.SourceDGT && !domain.MadridRegion.Contains(r.Latitude, r.Longitude) {
				p.errorf("dgt %s: (%v, %v) outside the Madrid region", r.ID, r.Latitude, r.Longitude)
			}
		}
	}
	return p
}

func validateIDs(bySource map[domain.Source][]domain.Record) *phase {
	p := &phase{name: "Phase 3: Unique IDs per source"}
	for _, src := range domain.Sources {
		seen := make(map[string]int)
		for i, r := range bySource[src] {
			if r.ID == "" {
				p.errorf("%s record %d: empty id", src, i)
				continue
			}
			if first, ok := seen[r.ID]; ok {
				p.errorf("%s: id %q at records %d and %d", src, r.ID, first, i)
				continue
			}
			seen[r.ID] = i
		}
	}
	return p
}

func validateImageURLs(bySource map[domain.Source][]domain.Record) *phase {
	p := &phase{name: "Phase 4: Image URLs"}
	for _, src := range domain.Sources {
		for _, r := range bySource[src] {
			if r.Kind == domain.KindRadar {
				if r.ImageURL != "" {
					p.errorf("%s %s: radar with imageUrl %q", src, r.ID, r.ImageURL)
				}
				continue
			}
			if r.ImageURL == "" {
				continue
			}
			u, err := url.Parse(r.ImageURL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				p.errorf("%s %s: imageUrl %q is not absolute", src, r.ID, r.ImageURL)
			}
		}
	}
	return p
}

func report(out io.Writer, phases []*phase, bySource map[domain.Source][]domain.Record) int {
	fmt.Fprintln(out, "\n=== Validation Report ===")
	fmt.Fprintln(out)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, "Records:")
	for _, src := range domain.Sources {
		fmt.Fprintf(out, " %s=%d", src, len(bySource[src]))
	}
	fmt.Fprintln(out)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		fmt.Fprintln(out, "\nValidation FAILED.")
		return 1
	}
	fmt.Fprintln(out, "\nAll validations passed.")
	return 0
}
