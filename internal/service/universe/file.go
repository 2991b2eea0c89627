package universe

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"VolScan/internal/domain/repository"
)

// FileProvider reads tickers from a delimited file with a Symbol or Ticker column.
type FileProvider struct {
	path string
}

var _ repository.UniverseProvider = (*FileProvider)(nil)

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) Provide(ctx context.Context) ([]string, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("open ticker file: %w", err)
	}
	defer f.Close()
	return parseTickerCSV(f)
}

func parseTickerCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("ticker file is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name == "symbol" || name == "ticker" {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("no Symbol or Ticker column in header %v", header)
	}

	seen := make(map[string]struct{})
	var out []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		out = appendUnique(out, seen, rec[col])
	}
	if len(out) == 0 {
		return nil, errors.New("ticker file has no symbols")
	}
	return out, nil
}

// appendUnique normalises s and appends it when it is new.
func appendUnique(out []string, seen map[string]struct{}, s string) []string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return out
	}
	if _, dup := seen[s]; dup {
		return out
	}
	seen[s] = struct{}{}
	return append(out, s)
}
