// Package source reads recorded telemetry sessions.
//
// A recording is a JSON lines file. The first line is a header
//
//	{"meta":{"version":"1.0.0","car":"..","track":"..","worldRecordMs":0}}
//
// followed by one record per tick
//
//	{"ts":<ms>,"physics":{..},"graphics":{..}}
package source

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/mpapenbr/race-engineer-go/pkg/model"
)

const maxLineSize = 1024 * 1024

var (
	ErrUnsupportedVersion = errors.New("unsupported recording version")
	ErrMissingHeader      = errors.New("missing recording header")
)

var metaPath = jp.MustParseString("$.meta")

type (
	Meta struct {
		Version       string `json:"version"`
		Car           string `json:"car"`
		Track         string `json:"track"`
		WorldRecordMs int32  `json:"worldRecordMs"`
	}
	Record struct {
		TS       int64               `json:"ts"` // ms since start of recording
		Physics  model.PhysicsFrame  `json:"physics"`
		Graphics model.GraphicsFrame `json:"graphics"`
	}
	Reader struct {
		scanner *bufio.Scanner
		closer  io.Closer
		meta    Meta
		line    int
	}
)

// Open opens the recording at path. The caller must Close the reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

// NewReader reads and checks the header from r.
func NewReader(r io.Reader) (*Reader, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	ret := &Reader{scanner: scanner}
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, ErrMissingHeader
	}
	ret.line++
	meta, err := parseMeta(scanner.Text())
	if err != nil {
		return nil, err
	}
	if err := checkVersion(meta.Version); err != nil {
		return nil, err
	}
	ret.meta = meta
	return ret, nil
}

func parseMeta(line string) (Meta, error) {
	obj, err := oj.ParseString(line)
	if err != nil {
		return Meta{}, fmt.Errorf("header: %w", err)
	}
	res := metaPath.Get(obj)
	if len(res) == 0 {
		return Meta{}, ErrMissingHeader
	}
	meta := Meta{}
	if err := oj.Unmarshal([]byte(oj.JSON(res[0])), &meta); err != nil {
		return Meta{}, fmt.Errorf("header: %w", err)
	}
	return meta, nil
}

func (r *Reader) Meta() Meta {
	return r.meta
}

// Next returns the next record or io.EOF at the end of the recording.
// Empty lines are skipped.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		data := r.scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		rec := Record{}
		if err := json.Unmarshal(data, &rec); err != nil {
			return Record{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
