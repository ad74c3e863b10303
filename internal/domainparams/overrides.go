package domainparams

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"geoverify/internal/errors"
)

// rangeFile is the on-disk override format:
//
//	climate:
//	  - fragment: temperature
//	    min: -8
//	    max: 8
type rangeFile map[string][]RangeEntry

// LoadOverrides decodes range-table overrides from YAML
func LoadOverrides(r io.Reader) (map[string][]RangeEntry, error) {
	var file rangeFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return map[string][]RangeEntry{}, nil
		}
		return nil, errors.WithCode(errors.CodeConfiguration, errors.Wrap(err, "failed to parse range tables"))
	}
	return file, nil
}

// LoadOverridesFile reads overrides from path. An empty path yields no overrides.
func LoadOverridesFile(path string) (map[string][]RangeEntry, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfiguration, errors.Wrapf(err, "failed to open range tables %s", path))
	}
	defer f.Close()
	return LoadOverrides(f)
}
