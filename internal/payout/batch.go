package payout

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// BatchFormat is the encoding of a recipient list file.
type BatchFormat string

// Supported batch encodings.
const (
	BatchCSV  BatchFormat = "csv"
	BatchJSON BatchFormat = "json"
	BatchYAML BatchFormat = "yaml"
)

// BatchFormatFor picks the encoding from a file extension.
func BatchFormatFor(path string) (BatchFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return BatchCSV, nil
	case ".json":
		return BatchJSON, nil
	case ".yaml", ".yml":
		return BatchYAML, nil
	}
	return "", wiserr.WithDetails(wiserr.ErrInvalidFormat, map[string]string{"file": path, "expected": "csv, json, yaml"})
}

// LoadBatch reads a recipient list from path.
func LoadBatch(path string) ([]Target, error) {
	format, err := BatchFormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied batch file
	if err != nil {
		return nil, wiserr.Wrap(err, "reading batch file")
	}
	return DecodeBatch(bytes.NewReader(data), format)
}

// DecodeBatch decodes a recipient list. CSV input needs an
// "address,amount" header row. Surrounding whitespace is trimmed and
// blank rows are dropped; everything else is left to ValidateTargets.
func DecodeBatch(r io.Reader, format BatchFormat) ([]Target, error) {
	var targets []Target
	var err error
	switch format {
	case BatchCSV:
		err = gocsv.Unmarshal(r, &targets)
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			err = nil
		}
	case BatchJSON:
		err = json.NewDecoder(r).Decode(&targets)
	case BatchYAML:
		err = yaml.NewDecoder(r).Decode(&targets)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, wiserr.WithDetails(wiserr.ErrInvalidFormat, map[string]string{"format": string(format)})
	}
	if err != nil {
		return nil, wiserr.WithCause(wiserr.ErrInvalidFormat, err)
	}

	out := make([]Target, 0, len(targets))
	for _, t := range targets {
		t.Address = strings.TrimSpace(t.Address)
		t.Amount = strings.TrimSpace(t.Amount)
		if t.Address == "" && t.Amount == "" {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
