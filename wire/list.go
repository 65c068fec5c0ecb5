package wire

import (
	"bufio"
	"os"
)

// ReadLines reads a UTF-8 text file, one path or key per line, as used by
// the -F/-K/-T batch-insert inputs. Blank lines are dropped wherever they
// occur; nothing else is trimmed or validated here, since the caller is
// responsible for what each line means.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
