package envfile

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// lineRegex matches a KEY=VALUE line. Comments, blanks, and anything else
// are ignored.
var lineRegex = regexp.MustCompile(`^[ \t]*([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

// Parse reads KEY=VALUE pairs from r. Values are kept raw, quotes and
// all; use Normalize before comparing them.
func Parse(r io.Reader) (map[string]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read env file")
	}

	vars := make(map[string]string)
	for _, line := range strings.Split(string(content), "\n") {
		if m := lineRegex.FindStringSubmatch(line); m != nil {
			vars[m[1]] = m[2]
		}
	}

	return vars, nil
}

// ParseFile parses the env file at path. A missing file yields an empty
// map; whether that's acceptable is the caller's policy decision.
func ParseFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrapf(err, "failed to open env file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Normalize prepares a raw value for comparison: surrounding whitespace
// and one level of matching quotes are stripped.
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}

	return value
}

// UpdateKey sets key to value in the env file at path, creating the file
// if needed. An existing entry keeps its quoting style; a new entry is
// appended unquoted. The file is replaced atomically.
//
// Returns false when the normalized value is already in place and nothing
// was written.
func UpdateKey(path, key, value string) (bool, error) {
	var lines []string
	if content, err := os.ReadFile(path); err == nil {
		lines = strings.Split(string(content), "\n")
		// Drop the trailing empty element from a final newline so we can
		// rejoin without doubling it.
		if n := len(lines); n > 0 && lines[n-1] == "" {
			lines = lines[:n-1]
		}
	} else if !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "failed to read env file: %s", path)
	}

	found := false
	changed := false

	for i, line := range lines {
		m := lineRegex.FindStringSubmatch(line)
		if m == nil || m[1] != key {
			continue
		}

		found = true
		if Normalize(m[2]) == Normalize(value) {
			break
		}

		lines[i] = line[:strings.Index(line, key)] + key + "=" + requote(m[2], value)
		changed = true
		break
	}

	if !found {
		lines = append(lines, key+"="+value)
		changed = true
	}

	if !changed {
		return false, nil
	}

	if err := writeAtomic(path, strings.Join(lines, "\n")+"\n"); err != nil {
		return false, err
	}

	return true, nil
}

// requote wraps value in the quote character the previous raw value used,
// if any and if value isn't already quoted that way.
func requote(prev, value string) string {
	prev = strings.TrimSpace(prev)

	var quote string
	switch {
	case len(prev) >= 2 && prev[0] == '"' && prev[len(prev)-1] == '"':
		quote = `"`
	case len(prev) >= 2 && prev[0] == '\'' && prev[len(prev)-1] == '\'':
		quote = `'`
	default:
		return value
	}

	if strings.HasPrefix(value, quote) && strings.HasSuffix(value, quote) {
		return value
	}

	return quote + value + quote
}

func writeAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".env-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "failed to close temp file")
	}

	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode())
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "failed to replace env file: %s", path)
	}

	return nil
}
