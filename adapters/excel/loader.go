package excel

import (
	"context"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"geoverify/domain/claim"
	"geoverify/internal"
	"geoverify/internal/errors"
	"geoverify/ports"
)

// Config names the columns and metadata keys the loader reads
type Config struct {
	ValueColumn  string `json:"value_column"`
	NoiseColumn  string `json:"noise_column"`
	NameKey      string `json:"name_key"`
	AuthenticKey string `json:"authentic_key"`
	MarkersKey   string `json:"markers_key"`
}

// DefaultConfig returns the standard column and metadata names
func DefaultConfig() Config {
	return Config{
		ValueColumn:  "value",
		NoiseColumn:  "noise",
		NameKey:      "name",
		AuthenticKey: "authentic",
		MarkersKey:   "institution",
	}
}

// Loader implements ports.DatasetLoader for xlsx and csv files
type Loader struct {
	config Config
	logger *internal.Logger
}

var _ ports.DatasetLoader = (*Loader)(nil)

// NewLoader creates a dataset loader
func NewLoader(config Config, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.NopLogger()
	}
	defaults := DefaultConfig()
	if config.ValueColumn == "" {
		config.ValueColumn = defaults.ValueColumn
	}
	if config.NoiseColumn == "" {
		config.NoiseColumn = defaults.NoiseColumn
	}
	if config.NameKey == "" {
		config.NameKey = defaults.NameKey
	}
	if config.AuthenticKey == "" {
		config.AuthenticKey = defaults.AuthenticKey
	}
	if config.MarkersKey == "" {
		config.MarkersKey = defaults.MarkersKey
	}
	return &Loader{config: config, logger: logger.With("dataset_loader")}
}

// Load reads the dataset at path source. Blank cells are skipped; any other
// non-numeric or non-finite cell is an invalid input error. A dataset is
// authentic only when its metadata says so explicitly.
func (l *Loader) Load(ctx context.Context, source string) (*claim.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := NewDataReader(source).ReadData()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	if !hasHeader(data.Headers, l.config.ValueColumn) {
		return nil, errors.InvalidInput("dataset " + source + " has no " + l.config.ValueColumn + " column")
	}

	values, err := column(data.Rows, l.config.ValueColumn)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, errors.InvalidInput("dataset " + source + " has no values")
	}

	var noise []float64
	if hasHeader(data.Headers, l.config.NoiseColumn) {
		if noise, err = column(data.Rows, l.config.NoiseColumn); err != nil {
			return nil, err
		}
	}

	ds := &claim.Dataset{
		Name:                 first(data.Metadata[l.config.NameKey]),
		Values:               values,
		Noise:                noise,
		InstitutionalMarkers: data.Metadata[l.config.MarkersKey],
		Authentic:            parseBool(first(data.Metadata[l.config.AuthenticKey])),
	}
	if ds.Name == "" {
		ds.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	l.logger.Info("loaded dataset %s: %d values, %d noise samples, authentic=%t",
		ds.Name, len(ds.Values), len(ds.Noise), ds.Authentic)
	return ds, nil
}

func hasHeader(headers []string, name string) bool {
	name = strings.ToLower(name)
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}

func column(rows []RawRowData, name string) ([]float64, error) {
	name = strings.ToLower(name)
	out := make([]float64, 0, len(rows))
	for i, row := range rows {
		cell := row[name]
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.InvalidInput("row " + strconv.Itoa(i+2) + " column " + name + ": " + strconv.Quote(cell) + " is not a finite number")
		}
		out = append(out, v)
	}
	return out, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y":
		return true
	default:
		return false
	}
}
