package company

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/seenimoa/nsenews/pkg/models"
)

const sampleCSV = `SYMBOL,NAME OF COMPANY, SERIES, DATE OF LISTING, PAID UP VALUE, MARKET LOT, ISIN NUMBER, FACE VALUE
RELIANCE,Reliance Industries Limited,EQ,29-NOV-1995,10,1,INE002A01018,10
tcs ,Tata Consultancy Services Limited,EQ,25-AUG-2004,1,1,INE467B01029,1
,Nameless Row,EQ,01-JAN-2000,1,1,INE000000000,1
INFY,Infosys Limited,EQ,08-FEB-1995,5,1,INE009A01021,5
RELIANCE,Duplicate Row,EQ,01-JAN-2000,1,1,INE000000001,1
`

func TestReadCSV(t *testing.T) {
	reg, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("expected 3 companies, got %d", reg.Len())
	}

	rec, ok := reg.Lookup("tcs.ns")
	if !ok {
		t.Fatal("expected TCS lookup to succeed")
	}
	if rec.Symbol != "TCS" || rec.Name != "Tata Consultancy Services Limited" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Series != "EQ" || rec.ISIN != "INE467B01029" || rec.FaceValue != "1" {
		t.Errorf("metadata not parsed with trimmed headers: %+v", rec)
	}

	rel, _ := reg.Lookup("RELIANCE")
	if rel.Name != "Reliance Industries Limited" {
		t.Errorf("first row should win on duplicate symbol, got %q", rel.Name)
	}

	if _, ok := reg.Lookup("UNKNOWN"); ok {
		t.Error("unexpected lookup hit")
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty file", "", ErrEmptyRegistry},
		{"header only", "SYMBOL,NAME OF COMPANY\n", ErrEmptyRegistry},
		{"no symbols", "SYMBOL,NAME OF COMPANY\n,Foo Ltd\n", ErrEmptyRegistry},
		{"missing column", "TICKER,NAME\nA,B\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "EQUITY_L.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if reg.Len() != 3 {
		t.Errorf("expected 3 companies, got %d", reg.Len())
	}

	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRegistryTop(t *testing.T) {
	reg := NewRegistry([]models.CompanyRecord{
		{Symbol: "A", Name: "Alpha Ltd"},
		{Symbol: "B"},
		{Symbol: "C", Name: "Gamma Ltd"},
		{Symbol: "D", Name: "Delta Ltd"},
	})
	top := reg.Top(2)
	if len(top) != 2 || top[0].Symbol != "A" || top[1].Symbol != "C" {
		t.Errorf("Top(2) = %+v", top)
	}
	if got := reg.Top(0); got != nil {
		t.Errorf("Top(0) = %+v, want nil", got)
	}
	if got := len(reg.Top(10)); got != 3 {
		t.Errorf("Top(10) returned %d, want 3", got)
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Tata Consultancy Services Limited", "tata consultancy services"},
		{"Reliance Industries Ltd.", "reliance industries"},
		{"Larsen & Toubro Limited", "larsen toubro"},
		{"Bajaj Finance Pvt. Ltd.", "bajaj finance"},
		{"Acme Consultancy", "acme consultancy"},
		{"Limited", "limited"},
		{"  Bharti   Airtel  ", "bharti airtel"},
	}
	for _, tt := range tests {
		if got := CleanName(tt.in); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestVariants(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{
			"Tata Consultancy Services Limited",
			[]string{"Tata Consultancy Services Limited", "tata consultancy services", "TCS"},
		},
		{
			"Housing Development Finance Corporation Limited",
			[]string{
				"Housing Development Finance Corporation Limited",
				"housing development finance",
				"HDF",
			},
		},
		{"Reliance Industries", []string{"Reliance Industries", "RI"}},
		{"Wipro Ltd", []string{"Wipro Ltd", "wipro"}},
		{"wipro", []string{"wipro"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Variants(tt.name); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Variants(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestConfidenceFullName(t *testing.T) {
	text := "Tata Consultancy Services Limited reports results"
	got := Confidence(text, "Tata Consultancy Services", "Tata Consultancy Services")
	if got < 0.7 {
		t.Errorf("confidence = %.2f, want >= 0.7", got)
	}
	// base + full name + "limited" + "reports"
	if math.Abs(got-0.9) > 1e-9 {
		t.Errorf("confidence = %.2f, want 0.9", got)
	}
}

func TestConfidenceMonotoneInContextWords(t *testing.T) {
	texts := []string{
		"Infosys shares moved today",
		"Infosys company shares moved today",
		"Infosys company announces shares moved today",
		"Infosys company announces and reports results with ltd inc corporation limited peers",
	}
	prev := math.Inf(-1)
	for _, text := range texts {
		got := Confidence(text, "Infosys", "Infosys Limited")
		if got < prev {
			t.Errorf("confidence decreased to %.2f for %q", got, text)
		}
		if got > 1 {
			t.Errorf("confidence %.2f exceeds 1", got)
		}
		prev = got
	}
	if prev != 1 {
		t.Errorf("all context words should saturate at 1, got %.2f", prev)
	}
}

func TestConfidenceContextWindow(t *testing.T) {
	far := "Infosys " + strings.Repeat("filler ", 12) + "announces"
	near := "Infosys " + strings.Repeat("filler ", 8) + "announces"
	if got := Confidence(far, "Infosys", "Infosys Limited"); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("context word outside window counted: %.2f", got)
	}
	if got := Confidence(near, "Infosys", "Infosys Limited"); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("context word inside window missed: %.2f", got)
	}
}

func TestConfidenceStopWordPenalty(t *testing.T) {
	// Penalized but not vetoed: full-name and context bonuses still apply.
	text := "The Company announces results for the year"
	got := Confidence(text, "the", "The Company")
	want := 0.4 + 0.3 + 0.1 + 0.1 - 0.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("confidence = %.2f, want %.2f", got, want)
	}

	if got := Confidence("for the record", "for", "Unrelated Name"); got >= MinConfidence {
		t.Errorf("bare stop-word hit should fall under threshold, got %.2f", got)
	}
}

func TestMatch(t *testing.T) {
	records := []models.CompanyRecord{
		{Symbol: "TCS", Name: "Tata Consultancy Services"},
		{Symbol: "RIL", Name: "Reliance Industries"},
		{Symbol: "INFY", Name: "Infosys Limited"},
	}
	text := "Tata Consultancy Services Limited reports results. Infosys shares were flat."

	sig := Match(text, records)
	if sig.Count != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", sig.Count, sig.Matched)
	}
	if sig.Matched[0].Symbol != "TCS" || sig.Matched[0].Confidence < 0.7 {
		t.Errorf("expected TCS first with confidence >= 0.7, got %+v", sig.Matched[0])
	}
	if sig.Matched[0].MatchedVariant != "Tata Consultancy Services" {
		t.Errorf("first variant should short-circuit, got %q", sig.Matched[0].MatchedVariant)
	}
	if sig.Matched[1].Symbol != "INFY" || sig.Matched[1].MatchedVariant != "infosys" {
		t.Errorf("expected INFY via cleaned variant, got %+v", sig.Matched[1])
	}
	for i := 1; i < len(sig.Matched); i++ {
		if sig.Matched[i].Confidence > sig.Matched[i-1].Confidence {
			t.Errorf("matches not sorted by confidence: %+v", sig.Matched)
		}
	}
}

func TestMatchSymbolVariant(t *testing.T) {
	sig := Match("RIL shares rallied on Monday", []models.CompanyRecord{
		{Symbol: "RIL", Name: "Reliance Industries"},
	})
	if sig.Count != 1 || sig.Matched[0].MatchedVariant != "RIL" {
		t.Errorf("expected symbol match, got %+v", sig)
	}
}

func TestMatchTruncatesToFive(t *testing.T) {
	var records []models.CompanyRecord
	var parts []string
	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf"} {
		records = append(records, models.CompanyRecord{Symbol: strings.ToUpper(name[:3]) + "X", Name: name + " Systems"})
		parts = append(parts, name+" Systems")
	}
	// Context words at the end reach only the last five companies' windows.
	text := strings.Join(parts, ", ") + " company announces"

	sig := Match(text, records)
	if sig.Count != 7 {
		t.Errorf("Count = %d, want 7", sig.Count)
	}
	if len(sig.Matched) != MaxMatches {
		t.Fatalf("len(Matched) = %d, want %d", len(sig.Matched), MaxMatches)
	}
	var got []string
	for _, m := range sig.Matched {
		got = append(got, m.Symbol)
	}
	// Equal confidences keep registry order.
	want := []string{"CHAX", "DELX", "ECHX", "FOXX", "GOLX"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("kept %v, want %v", got, want)
	}
}

func TestMatchEmpty(t *testing.T) {
	var m *Matcher
	if sig := m.Match("anything"); sig.Count != 0 || sig.Matched == nil {
		t.Errorf("nil matcher should return empty non-nil matches, got %+v", sig)
	}
	m = NewMatcher(NewRegistry(nil))
	if sig := m.Match(""); sig.Count != 0 {
		t.Errorf("empty text should not match, got %+v", sig)
	}
}
