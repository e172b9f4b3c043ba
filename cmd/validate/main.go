// Command validate performs end-to-end integrity checks on a directory of
// gridded-weather archive fixtures: JSON shape and band presence, physical
// plausibility of the raw imagery, and recomputation of the derived ET series
// through the real source adapter. It also exercises the engine against a
// known reference scenario, independent of the fixtures.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -dir data/mock \
//	  -family gridmet
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pacs27/refet-etl/internal/adapter/archive"
	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/refet"
	"github.com/pacs27/refet-etl/internal/source"
)

// bandRange is the plausible value interval for a raw upstream band.
type bandRange struct {
	min, max float64
}

// familyBands lists required bands with plausibility ranges, per family.
var familyBands = map[string]map[string]bandRange{
	"gridmet": {
		"tmmx": {180, 340}, // K
		"tmmn": {180, 340},
		"sph":  {0, 0.05}, // kg/kg
		"srad": {0, 450},  // W/m²
		"vs":   {0, 75},   // m/s
	},
	"nldas": {
		"temperature":         {-60, 60}, // °C
		"specific_humidity":   {0, 0.05},
		"shortwave_radiation": {0, 1400},
		"wind_u":              {-75, 75},
		"wind_v":              {-75, 75},
	},
}

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
	dir := flag.String("dir", "", "fixture directory (as written by genmock)")
	family := flag.String("family", "gridmet", "source family to validate")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir, *family); code != 0 {
		os.Exit(code)
	}
}

func run(dir, family string) int {
	fmt.Println("=== Archive Fixture Integrity Validation ===")
	fmt.Println()

	anc, days, err := loadFixtures(dir, family)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixtures: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateFixtureIntegrity(family, anc, days),
		validatePlausibility(family, days),
		validateRecomputation(family, anc, days),
		validateReferenceScenario(),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Fixtures: %d day files, %dx%d grid, family %s\n",
		len(days), anc.Shape.Rows, anc.Shape.Cols, family)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadFixtures(dir, family string) (archive.AncillaryPayload, []archive.DayPayload, error) {
	var anc archive.AncillaryPayload
	if err := readJSON(filepath.Join(dir, family, "ancillary.json"), &anc); err != nil {
		return archive.AncillaryPayload{}, nil, fmt.Errorf("ancillary: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, family, "days", "*.json"))
	if err != nil {
		return archive.AncillaryPayload{}, nil, err
	}
	if len(paths) == 0 {
		return archive.AncillaryPayload{}, nil, fmt.Errorf("no day fixtures under %s", filepath.Join(dir, family, "days"))
	}
	sort.Strings(paths)

	days := make([]archive.DayPayload, 0, len(paths))
	for _, path := range paths {
		var day archive.DayPayload
		if err := readJSON(path, &day); err != nil {
			return archive.AncillaryPayload{}, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		days = append(days, day)
	}
	return anc, days, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ── Phase 1: Fixture Integrity ──
// Validates shapes, band presence, and calendar continuity.

func validateFixtureIntegrity(family string, anc archive.AncillaryPayload, days []archive.DayPayload) *phase {
	p := &phase{name: "Phase 1: Fixture Integrity (shape, bands)"}

	if _, err := anc.Ancillary(); err != nil {
		p.errorf("ancillary: %v", err)
	}

	required := familyBands[family]
	var prev time.Time
	for _, day := range days {
		date, err := time.ParseInLocation(archive.DateFormat, day.Date, time.UTC)
		if err != nil {
			p.errorf("%s: bad date: %v", day.Date, err)
			continue
		}
		if day.Family != family {
			p.errorf("%s: family is %q, want %q", day.Date, day.Family, family)
		}
		if day.Shape != anc.Shape {
			p.errorf("%s: shape %dx%d differs from ancillary %dx%d",
				day.Date, day.Shape.Rows, day.Shape.Cols, anc.Shape.Rows, anc.Shape.Cols)
		}
		if !prev.IsZero() && !date.Equal(prev.AddDate(0, 0, 1)) {
			p.errorf("%s: gap after %s (fixtures must be consecutive days)",
				day.Date, prev.Format(archive.DateFormat))
		}
		prev = date

		if _, err := day.Collection(); err != nil {
			p.errorf("%s: decode: %v", day.Date, err)
			continue
		}
		if required == nil {
			continue
		}
		for i, img := range day.Images {
			for name := range required {
				if _, ok := img.Bands[name]; !ok {
					p.errorf("%s image %d: missing band %q", day.Date, i, name)
				}
			}
		}
	}
	return p
}

// ── Phase 2: Physical Plausibility ──
// Validates raw band values against per-family ranges, and tmax >= tmin.

func validatePlausibility(family string, days []archive.DayPayload) *phase {
	p := &phase{name: "Phase 2: Physical Plausibility (raw bands)"}

	ranges, ok := familyBands[family]
	if !ok {
		p.errorf("no plausibility ranges defined for family %q", family)
		return p
	}

	for _, day := range days {
		for i, img := range day.Images {
			for name, data := range img.Bands {
				r, ok := ranges[name]
				if !ok {
					continue
				}
				for j, v := range data {
					if math.IsNaN(v) || math.IsInf(v, 0) {
						p.errorf("%s image %d band %s[%d]: non-finite value", day.Date, i, name, j)
						break
					}
					if v < r.min || v > r.max {
						p.errorf("%s image %d band %s[%d]: %g outside [%g, %g]",
							day.Date, i, name, j, v, r.min, r.max)
						break
					}
				}
			}

			tmax, okMax := img.Bands["tmmx"]
			tmin, okMin := img.Bands["tmmn"]
			if okMax && okMin && len(tmax) == len(tmin) {
				for j := range tmax {
					if tmax[j] < tmin[j] {
						p.errorf("%s image %d cell %d: tmmx %g < tmmn %g", day.Date, i, j, tmax[j], tmin[j])
						break
					}
				}
			}
		}
	}
	return p
}

// ── Phase 3: ET Recomputation ──
// Runs every fixture day through the real adapter and checks the derived
// series.

func validateRecomputation(family string, anc archive.AncillaryPayload, days []archive.DayPayload) *phase {
	p := &phase{name: "Phase 3: ET Recomputation (adapter output)"}

	src, err := source.New(family)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	terrain, err := anc.Ancillary()
	if err != nil {
		p.errorf("ancillary: %v", err)
		return p
	}

	for _, day := range days {
		collection, err := day.Collection()
		if err != nil {
			p.errorf("%s: decode: %v", day.Date, err)
			continue
		}
		eng, err := src.Daily(collection, terrain, source.Options{})
		if err != nil {
			p.errorf("%s: evaluate: %v", day.Date, err)
			continue
		}
		checkDerivedSeries(p, day.Date, eng)
	}
	return p
}

func checkDerivedSeries(p *phase, date string, eng *refet.Daily) {
	eto := eng.ETo()
	etr := eng.ETr()

	if !eto.Finite() {
		p.errorf("%s: eto has non-finite samples", date)
		return
	}
	if !etr.Finite() {
		p.errorf("%s: etr has non-finite samples", date)
		return
	}

	etoVals := eto.Values()
	etrVals := etr.Values()
	for i, v := range etoVals {
		if v < 0 || v > 20 {
			p.errorf("%s cell %d: eto %g mm outside [0, 20]", date, i, v)
			break
		}
		if etrVals[i] < v {
			p.errorf("%s cell %d: etr %g < eto %g", date, i, etrVals[i], v)
			break
		}
	}

	// The two-part decomposition must reassemble the full estimate.
	sum := eng.EToFS1().Add(eng.EToFS2())
	for i, v := range sum.Values() {
		if math.Abs(v-etoVals[i]) > 1e-9 {
			p.errorf("%s cell %d: fs1+fs2 %g != eto %g", date, i, v, etoVals[i])
			break
		}
	}
}

// ── Phase 4: Reference Scenario ──
// Validates the engine against a hand-computed mid-summer scenario.

func validateReferenceScenario() *phase {
	p := &phase{name: "Phase 4: Reference Scenario (engine)"}

	eng, err := refet.NewDaily(refet.Input{
		TMax: field.Scalar(30),
		TMin: field.Scalar(15),
		Ea:   field.Scalar(1.2),
		Rs:   field.Scalar(22),
		Uz:   field.Scalar(2),
		Zw:   2,
		Elev: field.Scalar(100),
		Lat:  field.Scalar(36.5),
		Doy:  180,
		Date: time.Date(2021, 6, 29, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		p.errorf("build engine: %v", err)
		return p
	}

	checks := []struct {
		name string
		got  float64
		want float64
		tol  float64
	}{
		{"eto", eng.ETo().At(0, 0), 5.69, 0.1},
		{"etr", eng.ETr().At(0, 0), 7.57, 0.1},
		{"etw", eng.ETw().At(0, 0), 4.66, 0.1},
		{"pet_hargreaves", eng.PETHargreaves().At(0, 0), 6.09, 0.1},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > c.tol {
			p.errorf("%s: got %.3f, want %.3f ± %.2f", c.name, c.got, c.want, c.tol)
		}
	}
	return p
}
