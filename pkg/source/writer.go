package source

import (
	"encoding/json"
	"io"
)

// Writer produces recordings readable by Reader.
type Writer struct {
	enc *json.Encoder
}

// NewWriter writes the header for meta. An empty meta version is set to FormatVersion.
func NewWriter(w io.Writer, meta Meta) (*Writer, error) {
	if meta.Version == "" {
		meta.Version = FormatVersion
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(struct {
		Meta Meta `json:"meta"`
	}{Meta: meta}); err != nil {
		return nil, err
	}
	return &Writer{enc: enc}, nil
}

func (w *Writer) Write(rec *Record) error {
	return w.enc.Encode(rec)
}
