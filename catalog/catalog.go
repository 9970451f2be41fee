// Package catalog loads the auction's lots from a players CSV.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cloudx-io/playerauction/core"
)

// Column names of the players CSV.
const (
	ColumnName          = "Players"
	ColumnSpecialism    = "Type"
	ColumnReservePrice  = "Base"
	ColumnPreviousPrice = "Sold_Price"
	ColumnCategory      = "Category"
	ColumnExperience    = "Experience"
	ColumnSet           = "Set"
	ColumnSerial        = "Serial_No"
)

var requiredColumns = []string{ColumnName, ColumnSpecialism, ColumnReservePrice, ColumnSet}

// StandardSets is the dealing order of the league's sets: star, established,
// mid-tier and emerging players, each split into batters, all-rounders and
// bowlers. Sets outside this list follow in order of first appearance.
var StandardSets = []string{
	"SBC", "SAC", "SBwC",
	"EBC", "EAC", "EBwC",
	"MBC", "MAC", "MBwC",
	"EmBwU", "EmAU", "EmBC",
}

var ErrEmptyCatalog = errors.New("catalog has no lots")

// Options controls optional parts of loading.
type Options struct {
	// StatsDir holds "<serial>.txt" files attached to lots as free-text stats.
	StatsDir string
	Logger   *zap.Logger
}

// LoadCSV reads the players CSV at path.
func LoadCSV(path string, opts Options) (core.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	cat, err := Parse(f, opts)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse reads a players CSV from r. Rows that cannot be parsed are skipped
// with a warning; a catalog without any lot is an error.
func Parse(r io.Reader, opts Options) (core.Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return core.Catalog{}, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return core.Catalog{}, fmt.Errorf("missing column %q", name)
		}
	}

	lots := make(map[string][]*core.Lot)
	var seen []string
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return core.Catalog{}, fmt.Errorf("line %d: %w", line, err)
		}

		row := csvRow{columns: columns, record: record}
		lot, err := row.lot()
		if err != nil {
			logger.Warn("skipping catalog row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if serial := row.get(ColumnSerial); serial != "" && opts.StatsDir != "" {
			lot.Stats = readStats(opts.StatsDir, serial, logger)
		}

		if _, ok := lots[lot.Category]; !ok {
			seen = append(seen, lot.Category)
		}
		lots[lot.Category] = append(lots[lot.Category], lot)
	}

	cat := core.Catalog{Categories: orderCategories(seen), Lots: lots}
	if cat.Len() == 0 {
		return core.Catalog{}, ErrEmptyCatalog
	}
	logger.Info("catalog loaded",
		zap.Int("lots", cat.Len()),
		zap.Int("sets", len(cat.Categories)),
	)
	return cat, nil
}

type csvRow struct {
	columns map[string]int
	record  []string
}

func (r csvRow) get(column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r csvRow) lot() (*core.Lot, error) {
	name := r.get(ColumnName)
	if name == "" {
		return nil, errors.New("empty player name")
	}
	set := r.get(ColumnSet)
	if set == "" {
		return nil, fmt.Errorf("%s: empty set", name)
	}
	reserve, err := parsePrice(r.get(ColumnReservePrice))
	if err != nil {
		return nil, fmt.Errorf("%s: base price: %w", name, err)
	}
	previous, err := parsePrice(r.get(ColumnPreviousPrice))
	if err != nil {
		return nil, fmt.Errorf("%s: sold price: %w", name, err)
	}

	return &core.Lot{
		Name:          name,
		Specialism:    r.get(ColumnSpecialism),
		Category:      set,
		ReservePrice:  reserve,
		PreviousPrice: previous,
		Profile:       profile(r.get(ColumnCategory), r.get(ColumnExperience)),
	}, nil
}

// parsePrice reads a price in crores; blank and "-" mean zero.
func parsePrice(s string) (float64, error) {
	if s == "" || s == "-" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("price %s is not a finite number", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative price %s", s)
	}
	return v, nil
}

func profile(category, experience string) string {
	switch {
	case category != "" && experience != "":
		return category + " / " + experience
	case category != "":
		return category
	default:
		return experience
	}
}

func readStats(dir, serial string, logger *zap.Logger) string {
	if f, err := strconv.ParseFloat(serial, 64); err == nil {
		serial = strconv.Itoa(int(f))
	}
	data, err := os.ReadFile(filepath.Join(dir, serial+".txt"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("stats file unreadable", zap.String("serial", serial), zap.Error(err))
		}
		return ""
	}
	return strings.ToValidUTF8(string(data), "")
}

func orderCategories(seen []string) []string {
	present := make(map[string]bool, len(seen))
	for _, s := range seen {
		present[s] = true
	}
	ordered := make([]string, 0, len(seen))
	standard := make(map[string]bool, len(StandardSets))
	for _, s := range StandardSets {
		standard[s] = true
		if present[s] {
			ordered = append(ordered, s)
		}
	}
	for _, s := range seen {
		if !standard[s] {
			ordered = append(ordered, s)
		}
	}
	return ordered
}
