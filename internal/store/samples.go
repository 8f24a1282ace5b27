package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const samplesFile = "samples.jsonl.zst"

// SampleEntry is one timed adder call. Entries are stored as zstd
// compressed JSON lines.
type SampleEntry struct {
	Repetition  int       `json:"repetition"`
	Strategy    string    `json:"strategy"`
	Accelerator string    `json:"accelerator,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Error       string    `json:"error,omitempty"`
}

// Elapsed returns the duration of the call.
func (e SampleEntry) Elapsed() time.Duration {
	return e.End.Sub(e.Start)
}

// SampleWriter appends sample entries to a run's trace. It is safe for
// concurrent use.
type SampleWriter struct {
	mu   sync.Mutex
	file *os.File
	enc  *zstd.Encoder
	buf  *bufio.Writer
	path string
}

// NewSampleWriter creates <baseDir>/runs/<runID>/samples.jsonl.zst,
// truncating any existing trace.
func NewSampleWriter(baseDir, runID string) (*SampleWriter, error) {
	dir := runDir(baseDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	path := filepath.Join(dir, samplesFile)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create samples file: %w", err)
	}

	enc, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	return &SampleWriter{
		file: file,
		enc:  enc,
		buf:  bufio.NewWriterSize(enc, 64*1024),
		path: path,
	}, nil
}

// Write appends one entry.
func (sw *SampleWriter) Write(entry SampleEntry) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}
	if _, err := sw.buf.Write(data); err != nil {
		return fmt.Errorf("failed to write sample: %w", err)
	}
	if err := sw.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Close flushes the buffered entries, finishes the zstd frame and closes
// the file.
func (sw *SampleWriter) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if err := sw.buf.Flush(); err != nil {
		sw.enc.Close()
		sw.file.Close()
		return fmt.Errorf("failed to flush samples: %w", err)
	}
	if err := sw.enc.Close(); err != nil {
		sw.file.Close()
		return fmt.Errorf("failed to finish zstd frame: %w", err)
	}
	if err := sw.file.Close(); err != nil {
		return fmt.Errorf("failed to close samples file: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the trace.
func (sw *SampleWriter) Path() string {
	return sw.path
}

// SampleReader reads the sample trace of a run.
type SampleReader struct {
	file    *os.File
	dec     *zstd.Decoder
	scanner *bufio.Scanner
}

// NewSampleReader opens the trace of runID.
func NewSampleReader(baseDir, runID string) (*SampleReader, error) {
	path := filepath.Join(runDir(baseDir, runID), samplesFile)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{RunID: runID}
		}
		return nil, fmt.Errorf("failed to open samples file: %w", err)
	}

	dec, err := zstd.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	scanner := bufio.NewScanner(dec)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &SampleReader{file: file, dec: dec, scanner: scanner}, nil
}

// Read returns the next entry, or io.EOF at the end of the trace.
func (sr *SampleReader) Read() (*SampleEntry, error) {
	if !sr.scanner.Scan() {
		if err := sr.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to scan sample line: %w", err)
		}
		return nil, io.EOF
	}

	var entry SampleEntry
	if err := json.Unmarshal(sr.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sample: %w", err)
	}
	return &entry, nil
}

// ReadAll reads every remaining entry.
func (sr *SampleReader) ReadAll() ([]SampleEntry, error) {
	var entries []SampleEntry
	for {
		entry, err := sr.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
}

// Close releases the decoder and the file.
func (sr *SampleReader) Close() error {
	sr.dec.Close()
	if err := sr.file.Close(); err != nil {
		return fmt.Errorf("failed to close samples file: %w", err)
	}
	return nil
}
