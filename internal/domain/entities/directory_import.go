package entities

// DirectorySeed is the export format read by the bulk importer:
// {"results":[{"document":{...}}]}
type DirectorySeed struct {
	Results []struct {
		Document map[string]any `json:"document"`
	} `json:"results"`
}

// BatchError describes one upsert batch that failed
type BatchError struct {
	Offset  int    `json:"offset"`
	Size    int    `json:"size"`
	Message string `json:"message"`
}

// ImportResult summarizes a bulk directory import
type ImportResult struct {
	TotalProcessed int          `json:"total_processed"`
	Inserted       int          `json:"inserted"`
	Errors         []BatchError `json:"errors"`
}

// Success reports whether every batch was written
func (r ImportResult) Success() bool {
	return len(r.Errors) == 0
}
