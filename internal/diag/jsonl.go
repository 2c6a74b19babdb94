package diag

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// JSONLSink writes one JSON line per diagnostic into a zstd-compressed file.
// Write errors are kept and returned from Close.
type JSONLSink struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	err error
}

func NewJSONLSink(path string) (*JSONLSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &JSONLSink{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

func (s *JSONLSink) Report(d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil || s.w == nil {
		return
	}
	b, err := json.Marshal(d)
	if err != nil {
		s.err = err
		return
	}
	if _, err := s.w.Write(b); err != nil {
		s.err = err
		return
	}
	s.err = s.w.WriteByte('\n')
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return s.err
	}
	err := s.err
	if ferr := s.w.Flush(); err == nil {
		err = ferr
	}
	if cerr := s.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	s.w, s.enc, s.f = nil, nil, nil
	return err
}

// ReadJSONL decodes a file written by JSONLSink.
func ReadJSONL(path string) ([]Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Diagnostic
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var d Diagnostic
		if err := json.Unmarshal(sc.Bytes(), &d); err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, sc.Err()
}
