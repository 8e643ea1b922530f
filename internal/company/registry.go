// Package company resolves mentions of NSE-listed companies in article text.
//
// A Registry is the read-only reference table of listed companies. A Matcher
// built from it scores every company's name variants against a text and
// reports the most confident matches.
package company

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seenimoa/nsenews/pkg/models"
	"github.com/seenimoa/nsenews/pkg/utils"
)

// ErrEmptyRegistry is returned when a company table has no usable rows.
var ErrEmptyRegistry = errors.New("company registry is empty")

// EQUITY_L.csv column headers.
const (
	colSymbol      = "SYMBOL"
	colName        = "NAME OF COMPANY"
	colSeries      = "SERIES"
	colListingDate = "DATE OF LISTING"
	colPaidUp      = "PAID UP VALUE"
	colMarketLot   = "MARKET LOT"
	colISIN        = "ISIN NUMBER"
	colFaceValue   = "FACE VALUE"
)

// Registry is an immutable table of listed companies keyed by symbol.
type Registry struct {
	records  []models.CompanyRecord
	bySymbol map[string]int
}

// NewRegistry builds a registry from records. Symbols are normalized,
// rows without a symbol are dropped, and the first row wins on duplicates.
func NewRegistry(records []models.CompanyRecord) *Registry {
	r := &Registry{
		records:  make([]models.CompanyRecord, 0, len(records)),
		bySymbol: make(map[string]int, len(records)),
	}
	for _, rec := range records {
		rec.Symbol = utils.NormalizeSymbol(rec.Symbol)
		rec.Name = strings.TrimSpace(rec.Name)
		if rec.Symbol == "" {
			continue
		}
		if _, dup := r.bySymbol[rec.Symbol]; dup {
			continue
		}
		r.bySymbol[rec.Symbol] = len(r.records)
		r.records = append(r.records, rec)
	}
	return r
}

// LoadCSV reads an NSE equity listing file.
func LoadCSV(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open company list: %w", err)
	}
	defer f.Close()

	reg, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// ReadCSV parses an NSE equity listing from r. Header names are matched
// after trimming; SYMBOL and NAME OF COMPANY are required.
func ReadCSV(r io.Reader) (*Registry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyRegistry
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{colSymbol, colName} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []models.CompanyRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		records = append(records, models.CompanyRecord{
			Symbol:      field(row, colSymbol),
			Name:        field(row, colName),
			Series:      field(row, colSeries),
			ListingDate: field(row, colListingDate),
			PaidUpValue: field(row, colPaidUp),
			MarketLot:   field(row, colMarketLot),
			ISIN:        field(row, colISIN),
			FaceValue:   field(row, colFaceValue),
		})
	}

	reg := NewRegistry(records)
	if reg.Len() == 0 {
		return nil, ErrEmptyRegistry
	}
	return reg, nil
}

// Len returns the number of companies.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// Records returns a copy of all companies in file order.
func (r *Registry) Records() []models.CompanyRecord {
	if r == nil {
		return nil
	}
	out := make([]models.CompanyRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Lookup finds a company by symbol (case-insensitive, exchange suffix allowed).
func (r *Registry) Lookup(symbol string) (models.CompanyRecord, bool) {
	if r == nil {
		return models.CompanyRecord{}, false
	}
	i, ok := r.bySymbol[utils.NormalizeSymbol(symbol)]
	if !ok {
		return models.CompanyRecord{}, false
	}
	return r.records[i], true
}

// Top returns the first n companies that have a name, in file order.
func (r *Registry) Top(n int) []models.CompanyRecord {
	if r == nil || n <= 0 {
		return nil
	}
	out := make([]models.CompanyRecord, 0, n)
	for _, rec := range r.records {
		if rec.Name == "" {
			continue
		}
		out = append(out, rec)
		if len(out) == n {
			break
		}
	}
	return out
}
