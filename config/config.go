package config // Tool parameter files

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Params holds "key=value" settings read from a parameter file. Keys match
// the long flag names of the tool the file is handed to, e.g.
//
//	iterations=200
//	backend=parallel
//	output-file=refined.pwm.gz
type Params map[string]string

// LoadParams reads a parameter file from disk.
func LoadParams(path string) (Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parameter file: %w", err)
	}
	defer f.Close()
	return ReadParams(f)
}

// ReadParams parses one setting per line. Blank lines and lines starting
// with '#' are skipped; a bare key is stored with an empty value so that
// boolean flags can be switched on.
func ReadParams(r io.Reader) (Params, error) {
	params := make(Params)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kv := splitOption(line)
		key := strings.TrimLeft(strings.TrimSpace(kv[0]), "-")
		if key == "" {
			return nil, fmt.Errorf("line %d: missing key", lineNo)
		}
		params[key] = strings.TrimSpace(kv[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return params, nil
}

// ParseArgs turns "key=value" arguments into Params, same rules as a file.
func ParseArgs(args []string) Params {
	params := make(Params)
	for _, arg := range args {
		kv := splitOption(arg)
		params[strings.TrimLeft(kv[0], "-")] = kv[1]
	}
	return params
}

// splitOption splits on the first '='
func splitOption(arg string) [2]string {
	var kv [2]string
	for i, ch := range arg {
		if ch == '=' {
			kv[0] = arg[:i]
			kv[1] = arg[i+1:]
			return kv
		}
	}
	kv[0] = arg
	kv[1] = ""
	return kv
}
