// Package logtail reads the end of the database log for the debug console.
package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultLines is the number of lines shown by the console.
const DefaultLines = 400

// Read returns at most maxLines from the end of the file at path.
// A missing file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Text is Read joined with newlines, with a placeholder for an empty log.
func Text(path string, maxLines int) (string, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "(no database output yet)", nil
	}
	return strings.Join(lines, "\n"), nil
}
