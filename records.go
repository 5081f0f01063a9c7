package addressscanner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlRecordsFile is the top level of a record file.
type yamlRecordsFile struct {
	Records []yamlRecord `yaml:"records"`
}

type yamlRecord struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Offset  int64  `yaml:"offset"`
	Policy  string `yaml:"policy"`
}

// LoadRecords parses address records from YAML:
//
//	records:
//	  - name: render_loop
//	    pattern: "48 8B 05 ?? ?? ?? ?? 48 8B D9"
//	    offset: 3
//	    policy: unique
//
// Offset defaults to 0 and policy to "first". Every signature is compiled
// so a bad file is rejected as a whole.
func LoadRecords(data []byte) ([]AddressRecord, error) {
	var file yamlRecordsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(file.Records) == 0 {
		return nil, fmt.Errorf("no records found in YAML")
	}

	seen := make(map[string]bool, len(file.Records))
	records := make([]AddressRecord, 0, len(file.Records))
	for i, yr := range file.Records {
		rec, err := convertYAMLRecord(yr)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if seen[rec.Name] {
			return nil, fmt.Errorf("record %d: %w: %s", i, ErrDuplicateRecord, rec.Name)
		}
		seen[rec.Name] = true
		records = append(records, rec)
	}

	return records, nil
}

// LoadRecordsFile loads address records from a YAML file path.
func LoadRecordsFile(path string) ([]AddressRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return LoadRecords(data)
}

func convertYAMLRecord(yr yamlRecord) (AddressRecord, error) {
	if yr.Name == "" {
		return AddressRecord{}, fmt.Errorf("missing name")
	}
	if yr.Pattern == "" {
		return AddressRecord{}, fmt.Errorf("%s: missing pattern", yr.Name)
	}

	policy, err := ParsePolicy(yr.Policy)
	if err != nil {
		return AddressRecord{}, fmt.Errorf("%s: %w", yr.Name, err)
	}

	if _, err := Compile(yr.Pattern); err != nil {
		return AddressRecord{}, fmt.Errorf("%s: %w", yr.Name, err)
	}

	return AddressRecord{
		Name:    yr.Name,
		Pattern: yr.Pattern,
		Offset:  yr.Offset,
		Policy:  policy,
	}, nil
}

// RegisterAll registers every record, stopping at the first failure.
func (r *Registry) RegisterAll(records []AddressRecord) error {
	for _, rec := range records {
		if _, err := r.Register(rec); err != nil {
			return err
		}
	}
	return nil
}
