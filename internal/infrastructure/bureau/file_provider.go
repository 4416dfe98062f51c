package bureau

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	domain "github.com/creditx/creditx-server/internal/domain/bureau"
)

// Dataset maps bureau name to applicant id to the raw bureau record.
type Dataset map[string]map[string]map[string]any

// FileProvider serves bureau records from a YAML dataset loaded at startup.
type FileProvider struct {
	name    string
	records map[string]map[string]any
}

// LoadFile reads path and selects the records of bureau name.
func LoadFile(path, name string) (*FileProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bureau dataset: %w", err)
	}
	return Parse(raw, name)
}

// Parse decodes a YAML dataset and selects the records of bureau name.
func Parse(raw []byte, name string) (*FileProvider, error) {
	var dataset Dataset
	if err := yaml.Unmarshal(raw, &dataset); err != nil {
		return nil, fmt.Errorf("decode bureau dataset: %w", err)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	var selected map[string]map[string]any
	for bureauName, records := range dataset {
		if strings.ToLower(strings.TrimSpace(bureauName)) == name {
			selected = records
			break
		}
	}
	if selected == nil {
		return nil, fmt.Errorf("bureau %q not present in dataset", name)
	}

	// Lookups upper-case the applicant id, so the keys are stored the same way.
	records := make(map[string]map[string]any, len(selected))
	for id, record := range selected {
		key := normaliseID(id)
		if _, dup := records[key]; dup {
			return nil, fmt.Errorf("bureau %q lists applicant %s more than once", name, key)
		}
		records[key] = record
	}
	return &FileProvider{name: name, records: records}, nil
}

func normaliseID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Lookup returns {bureau: record} for applicantID.
func (p *FileProvider) Lookup(ctx context.Context, applicantID string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	record, ok := p.records[normaliseID(applicantID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return domain.Record{p.name: record}, nil
}

// Len reports how many applicants the dataset holds.
func (p *FileProvider) Len() int {
	return len(p.records)
}

var _ domain.Provider = (*FileProvider)(nil)
