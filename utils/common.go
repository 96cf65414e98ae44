// Common package contains commonly used functions that benefit multiple tools
// Exporting these functions from the Common package reduces redundant code
package common

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReverseComplement takes a DNA sequence string and returns its reverse complement.
// The function is case-insensitive and warns if the sequence appears to contain a header line (starting with '>').
// Non-standard DNA characters are replaced with the ambiguous base 'N'.
func ReverseComplement(seq string) string {
	var rc strings.Builder
	// Header protection
	if strings.HasPrefix(seq, ">") {
		fmt.Fprintln(os.Stderr, "Warning: Sequence appears to be a FASTA header. Skipping reverse complement.")
		return seq
	}
	seq = strings.ToUpper(seq)
	rc.Grow(len(seq))
	for i := len(seq) - 1; i >= 0; i-- {
		switch seq[i] {
		case 'A':
			rc.WriteByte('T')
		case 'T':
			rc.WriteByte('A')
		case 'C':
			rc.WriteByte('G')
		case 'G':
			rc.WriteByte('C')
		default:
			rc.WriteByte('N') // Ambiguous or invalid character
		}
	}
	return rc.String()
}

// ErrStopStream can be returned by a FastaHandler to end streaming early
// without reporting an error.
var ErrStopStream = errors.New("stop streaming")

type FastaHandler func(id string, seq string, opts map[string]interface{}) error

// FastaRecord is a single parsed FASTA entry.
type FastaRecord struct {
	ID  string
	Seq string
}

// gzipReadCloser closes both the gzip stream and the file underneath it.
type gzipReadCloser struct {
	*gzip.Reader
	file *os.File
}

func (g gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if ferr := g.file.Close(); err == nil {
		err = ferr
	}
	return err
}

// OpenInput opens a plain or gzip-compressed file. Compression is detected
// from the gzip magic bytes, not the file name.
func OpenInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	buf := make([]byte, 2)
	n, _ := io.ReadFull(f, buf)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rewind %s: %w", path, err)
	}
	if n == 2 && buf[0] == 0x1F && buf[1] == 0x8B {
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to open gzip reader: %w", err)
		}
		return gzipReadCloser{Reader: gr, file: f}, nil
	}
	return f, nil
}

// StreamFastaWithOpts is a fast, memory-efficient function for streaming FASTA files of any size.
// It automatically detects and decompresses Gzipped files, treats sequences case-insensitively,
// and calls a user-defined handler function for each record.
//
// Recognised options:
//
//	"max_records" (int): stop after this many records (0 or absent means no limit)
//
// The same map is handed to the handler so callers can pass their own state.
func StreamFastaWithOpts(file string, handler FastaHandler, opts map[string]interface{}) error {
	reader, err := OpenInput(file)
	if err != nil {
		return err
	}
	defer reader.Close()

	err = StreamFasta(reader, handler, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return nil
}

// StreamFasta is StreamFastaWithOpts over an already opened reader.
func StreamFasta(reader io.Reader, handler FastaHandler, opts map[string]interface{}) error {
	maxRecords := 0
	if val, ok := opts["max_records"].(int); ok {
		if val < 0 {
			return fmt.Errorf("max_records must not be negative")
		}
		maxRecords = val
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

	var currentID string
	var buffer []byte
	seen := 0
	started := false

	emit := func() error {
		if maxRecords > 0 && seen >= maxRecords {
			return ErrStopStream
		}
		seen++
		if err := handler(currentID, string(buffer), opts); err != nil {
			if errors.Is(err, ErrStopStream) {
				return err
			}
			return fmt.Errorf("handler error (%s): %w", currentID, err)
		}
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, ">") {
			if started {
				if err := emit(); err != nil {
					if errors.Is(err, ErrStopStream) {
						return nil
					}
					return err
				}
			}
			started = true
			currentID = strings.TrimPrefix(line, ">")
			buffer = buffer[:0] // reset buffer
		} else if line != "" {
			if !started {
				return fmt.Errorf("sequence data before first header")
			}
			buffer = append(buffer, []byte(strings.ToUpper(line))...)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	if started {
		if err := emit(); err != nil && !errors.Is(err, ErrStopStream) {
			return err
		}
	}
	return nil
}

// ReadFasta collects up to limit records (0 means all) from a FASTA file.
func ReadFasta(file string, limit int) ([]FastaRecord, error) {
	var records []FastaRecord
	handler := func(id string, seq string, _ map[string]interface{}) error {
		records = append(records, FastaRecord{ID: id, Seq: seq})
		return nil
	}
	if err := StreamFastaWithOpts(file, handler, map[string]interface{}{"max_records": limit}); err != nil {
		return nil, err
	}
	return records, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type gzipWriteCloser struct {
	*gzip.Writer
	file *os.File
}

func (g gzipWriteCloser) Close() error {
	err := g.Writer.Close()
	if ferr := g.file.Close(); err == nil {
		err = ferr
	}
	return err
}

// CreateOutput opens path for writing, gzip-compressed when the name ends in
// ".gz". An empty path writes to stdout, which is never closed.
func CreateOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	if strings.HasSuffix(path, ".gz") {
		return gzipWriteCloser{Writer: gzip.NewWriter(f), file: f}, nil
	}
	return f, nil
}
