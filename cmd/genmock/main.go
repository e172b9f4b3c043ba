// Command genmock generates synthetic gridded-weather archive fixtures for
// the ETL test suites and the mock archive server. Days follow a smooth
// seasonal model so the derived ET series is reproducible run to run, and the
// generated imagery is fed through the actual source adapter to confirm it
// evaluates cleanly.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock \
//	  -family gridmet \
//	  -start 2021-06-01 -end 2021-07-01 \
//	  -rows 4 -cols 4
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pacs27/refet-etl/internal/adapter/archive"
	"github.com/pacs27/refet-etl/internal/source"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for fixture files")
	family := flag.String("family", "gridmet", "source family to generate (gridmet or nldas)")
	start := flag.String("start", "", "first day to generate (YYYY-MM-DD, inclusive)")
	end := flag.String("end", "", "day to stop at (YYYY-MM-DD, exclusive)")
	rows := flag.Int("rows", 4, "grid rows")
	cols := flag.Int("cols", 4, "grid cols")
	flag.Parse()

	if *out == "" || *start == "" || *end == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, -start, -end")
	}
	if *rows < 1 || *cols < 1 {
		return fmt.Errorf("grid must be at least 1x1")
	}

	startDate, err := time.ParseInLocation(archive.DateFormat, *start, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	endDate, err := time.ParseInLocation(archive.DateFormat, *end, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}
	if !startDate.Before(endDate) {
		return fmt.Errorf("-start must be before -end")
	}

	gen, err := generatorFor(*family)
	if err != nil {
		return err
	}

	shape := archive.Shape{Rows: *rows, Cols: *cols}
	familyDir := filepath.Join(*out, *family)

	anc := makeAncillary(shape)
	ancPath := filepath.Join(familyDir, "ancillary.json")
	if err := writeJSON(ancPath, anc); err != nil {
		return fmt.Errorf("writing ancillary fixture: %w", err)
	}
	log.Printf("wrote ancillary fixture: %s", ancPath)

	src, err := source.New(*family)
	if err != nil {
		return err
	}
	terrain, err := anc.Ancillary()
	if err != nil {
		return err
	}

	var days int
	for d := startDate; d.Before(endDate); d = d.AddDate(0, 0, 1) {
		payload := gen(*family, shape, d)

		// Evaluate through the real adapter so broken fixtures never land
		// in the tree.
		day, err := payload.Collection()
		if err != nil {
			return fmt.Errorf("%s: decode generated day: %w", payload.Date, err)
		}
		eng, err := src.Daily(day, terrain, source.Options{})
		if err != nil {
			return fmt.Errorf("%s: evaluate generated day: %w", payload.Date, err)
		}
		eto := eng.ETo().Summarize()

		path := filepath.Join(familyDir, "days", payload.Date+".json")
		if err := writeJSON(path, payload); err != nil {
			return fmt.Errorf("writing day fixture: %w", err)
		}
		log.Printf("%s: eto mean=%.2f min=%.2f max=%.2f mm", payload.Date, eto.Mean, eto.Min, eto.Max)
		days++
	}

	log.Printf("wrote %d day fixtures under %s", days, familyDir)
	return nil
}

// dayGenerator produces one family-day of synthetic imagery.
type dayGenerator func(family string, shape archive.Shape, date time.Time) archive.DayPayload

func generatorFor(family string) (dayGenerator, error) {
	switch family {
	case "gridmet":
		return gridmetDay, nil
	case "nldas":
		return nldasDay, nil
	default:
		return nil, fmt.Errorf("no generator for family %q (have: gridmet, nldas)", family)
	}
}

// makeAncillary builds a gently sloping terrain: elevation rises to the
// south-east, latitude decreases with row index.
func makeAncillary(shape archive.Shape) archive.AncillaryPayload {
	n := shape.Rows * shape.Cols
	elev := make([]float64, 0, n)
	lat := make([]float64, 0, n)
	for r := 0; r < shape.Rows; r++ {
		for c := 0; c < shape.Cols; c++ {
			elev = append(elev, 100+25*float64(r)+10*float64(c))
			lat = append(lat, 37.0-0.25*float64(r))
		}
	}
	return archive.AncillaryPayload{Shape: shape, Elevation: elev, Latitude: lat}
}

// seasonal returns a smooth annual cycle in [-1, 1] peaking in mid July.
func seasonal(date time.Time) float64 {
	return math.Sin(2 * math.Pi * float64(date.YearDay()-105) / 365)
}

// cellVar is a small deterministic per-cell perturbation so grids are not
// uniform.
func cellVar(shape archive.Shape, i int) float64 {
	r := float64(i / shape.Cols)
	c := float64(i % shape.Cols)
	return 0.5*math.Sin(1.7*r) + 0.5*math.Cos(2.3*c)
}

// gridmetDay emits one daily composite image with gridmet's native bands:
// temperatures in Kelvin, specific humidity in kg/kg, shortwave radiation in
// W/m², wind speed at 10 m in m/s.
func gridmetDay(family string, shape archive.Shape, date time.Time) archive.DayPayload {
	n := shape.Rows * shape.Cols
	s := seasonal(date)

	tmmx := make([]float64, n)
	tmmn := make([]float64, n)
	sph := make([]float64, n)
	srad := make([]float64, n)
	vs := make([]float64, n)
	for i := 0; i < n; i++ {
		v := cellVar(shape, i)
		tmaxC := 18 + 12*s + v
		tmmx[i] = tmaxC + 273.15
		tmmn[i] = tmaxC - 11 + 0.5*v + 273.15
		sph[i] = 0.006 + 0.004*s + 0.0002*v
		srad[i] = math.Max(40, 180+120*s+5*v)
		vs[i] = 2.5 + 0.8*math.Sin(2*math.Pi*float64(date.YearDay())/29) + 0.3*v
	}

	return archive.DayPayload{
		Family: family,
		Date:   date.Format(archive.DateFormat),
		Shape:  shape,
		Images: []archive.ImagePayload{{
			Timestamp: date,
			Bands: map[string][]float64{
				"tmmx": tmmx,
				"tmmn": tmmn,
				"sph":  sph,
				"srad": srad,
				"vs":   vs,
			},
		}},
	}
}

// nldasDay emits 24 hourly images with nldas's native bands: temperature in
// Celsius, specific humidity in kg/kg, shortwave radiation in W/m², wind
// components in m/s.
func nldasDay(family string, shape archive.Shape, date time.Time) archive.DayPayload {
	n := shape.Rows * shape.Cols
	s := seasonal(date)
	tmeanC := 12.5 + 12*s

	images := make([]archive.ImagePayload, 0, 24)
	for h := 0; h < 24; h++ {
		// Diurnal temperature cycle bottoming near 03:00 and peaking
		// near 15:00.
		diurnal := math.Sin(2 * math.Pi * float64(h-9) / 24)
		// Daylight half-sine between 06:00 and 18:00.
		var sw float64
		if h >= 6 && h < 18 {
			sw = (400 + 250*s) * math.Sin(math.Pi*float64(h-6)/12)
		}

		temp := make([]float64, n)
		q := make([]float64, n)
		rad := make([]float64, n)
		windU := make([]float64, n)
		windV := make([]float64, n)
		for i := 0; i < n; i++ {
			v := cellVar(shape, i)
			temp[i] = tmeanC + 5.5*diurnal + v
			q[i] = 0.006 + 0.004*s + 0.0002*v
			rad[i] = math.Max(0, sw+5*v)
			windU[i] = 1.8 + 0.3*v
			windV[i] = 1.2 + 0.5*math.Sin(2*math.Pi*float64(h)/24) + 0.2*v
		}

		images = append(images, archive.ImagePayload{
			Timestamp: date.Add(time.Duration(h) * time.Hour),
			Bands: map[string][]float64{
				"temperature":         temp,
				"specific_humidity":   q,
				"shortwave_radiation": rad,
				"wind_u":              windU,
				"wind_v":              windV,
			},
		})
	}

	return archive.DayPayload{
		Family: family,
		Date:   date.Format(archive.DateFormat),
		Shape:  shape,
		Images: images,
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
