package job

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/quantaleap/qcloud/target"
)

// ResultPayload is the decoded raw output of a succeeded job. Histogram
// maps measurement outcome bitstrings to probabilities; Raw always holds
// the untouched service bytes.
type ResultPayload struct {
	Format    string
	Histogram map[string]float64 `json:"histogram" msgpack:"histogram"`
	Shots     int                `json:"shots" msgpack:"shots"`
	Raw       []byte             `json:"-" msgpack:"-"`
}

func decodeResults(format string, raw []byte) (*ResultPayload, error) {
	payload := &ResultPayload{Format: format, Raw: raw}

	switch format {
	case target.FormatResultsJSON:
		if err := json.Unmarshal(raw, payload); err != nil {
			return nil, fmt.Errorf("failed to decode %s results: %w", format, err)
		}
	case target.FormatResultsMsgpack:
		if err := msgpack.Unmarshal(raw, payload); err != nil {
			return nil, fmt.Errorf("failed to decode %s results: %w", format, err)
		}
	default:
		// Unknown formats (e.g. resource estimates) are handed back raw
	}

	return payload, nil
}
