package results

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/promptlab/promptlab/internal/models"
)

// RunFile is the content of one result file: the run resource and its
// outcomes.
type RunFile struct {
	Run     models.TestRun             `json:"run"`
	Results []models.EvaluationOutcome `json:"results"`
}

// IsResultFile reports whether name has an extension LoadFile accepts.
func IsResultFile(name string) bool {
	base := strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".zst")
	return strings.HasSuffix(base, ".json") || strings.HasSuffix(base, ".jsonl")
}

// LoadFile reads a result file. Accepted layouts are a {"run", "results"}
// object, a bare JSON array of outcomes, or JSON lines (.jsonl), each
// optionally compressed with gzip (.gz) or zstd (.zst).
//
// Missing run fields are filled from the outcomes: the run id falls back
// to the file name and the counters are recomputed when absent.
func LoadFile(path string) (*RunFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("results: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	rf, err := Decode(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("results: %s: %w", path, err)
	}
	return rf, nil
}

// Decompress wraps r according to a .gz or .zst suffix on name and
// returns the name with that suffix removed. Other names pass through
// with a no-op closer.
func Decompress(r io.Reader, name string) (io.ReadCloser, string, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, "", fmt.Errorf("gzip: %w", err)
		}
		return zr, strings.TrimSuffix(name, ".gz"), nil
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, "", fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), strings.TrimSuffix(name, ".zst"), nil
	default:
		return io.NopCloser(r), name, nil
	}
}

// Decode reads a result file body from r. name selects compression and
// layout the same way as LoadFile.
func Decode(r io.Reader, name string) (*RunFile, error) {
	rc, name, err := Decompress(r, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	var rf RunFile
	if strings.HasSuffix(name, ".jsonl") {
		rf.Results, err = decodeLines(rc)
	} else {
		err = decodeJSON(rc, &rf)
	}
	if err != nil {
		return nil, err
	}
	rf.normalize(strings.TrimSuffix(strings.TrimSuffix(name, ".jsonl"), ".json"))
	return &rf, nil
}

func decodeJSON(r io.Reader, rf *RunFile) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &rf.Results); err != nil {
			return fmt.Errorf("parsing outcome array: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, rf); err != nil {
		return fmt.Errorf("parsing run file: %w", err)
	}
	return nil
}

func decodeLines(r io.Reader) ([]models.EvaluationOutcome, error) {
	var out []models.EvaluationOutcome
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var o models.EvaluationOutcome
		if err := json.Unmarshal(b, &o); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, o)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return out, nil
}
