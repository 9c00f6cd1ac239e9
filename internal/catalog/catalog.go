package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Model is one catalog entry as produced by the GGUF catalog export.
// Numeric engagement fields may be absent in the export; they decode to zero.
type Model struct {
	ID           string   `json:"id"` // e.g. "TheBloke/Llama-2-7B-GGUF"
	ModelName    string   `json:"modelName,omitempty"`
	QuantFormat  string   `json:"quantFormat,omitempty"` // "Q4_K_M", "Q5_K_S", "F16"
	ModelType    string   `json:"modelType,omitempty"`   // "LLM", "LoRA", "Embedding"
	License      string   `json:"license,omitempty"`
	FileSize     int64    `json:"fileSize,omitempty"` // bytes
	Downloads    int64    `json:"downloads"`
	Likes        int64    `json:"likes"`
	Tags         []string `json:"tags,omitempty"`
	LastModified string   `json:"lastModified,omitempty"` // ISO-8601
}

// Uploader returns the namespace part of the model ID ("TheBloke" for
// "TheBloke/Llama-2-7B-GGUF"), or the whole ID when there is no slash.
func (m Model) Uploader() string {
	if i := strings.IndexByte(m.ID, '/'); i > 0 {
		return m.ID[:i]
	}
	return m.ID
}

// Name returns the display name, falling back to the repo part of the ID.
func (m Model) Name() string {
	if m.ModelName != "" {
		return m.ModelName
	}
	if i := strings.IndexByte(m.ID, '/'); i >= 0 && i+1 < len(m.ID) {
		return m.ID[i+1:]
	}
	return m.ID
}

// Export mirrors the JSON layout written by the catalog fetcher.
type Export struct {
	Models      []Model `json:"models"`
	LastUpdated string  `json:"lastUpdated,omitempty"`
	TotalCount  int     `json:"totalCount,omitempty"`
}

// LoadFile reads and decodes a catalog export from disk.
func LoadFile(path string) (*Export, error) {
	if path == "" {
		return nil, errors.New("catalog path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Decode parses a catalog export. It accepts either the wrapped form
// {"models": [...], "lastUpdated": ...} or a bare JSON array of models.
func Decode(b []byte) (*Export, error) {
	var ex Export
	if err := json.Unmarshal(b, &ex); err == nil && ex.Models != nil {
		return &ex, nil
	}
	var bare []Model
	if err := json.Unmarshal(b, &bare); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &Export{Models: bare}, nil
}
