package internal

import (
	"strings"
	"unicode"

	"gopkg.in/ini.v1"
)

// credentialsFile is a parsed credentials file together with its text.
// Writes splice only the lines of the section being changed, so sections
// nobody touched keep their exact bytes.
type credentialsFile struct {
	ini   *ini.File
	lines []string
	cr    string // "\r" when the file uses CRLF line endings
}

// sectionSpan locates one section in the file's lines.
type sectionSpan struct {
	name   string
	start  int // first line, including the comment lines directly above the header
	header int
	end    int // exclusive
}

func newCredentialsFile(f *ini.File, data []byte) *credentialsFile {
	c := &credentialsFile{ini: f}
	text := string(data)
	if text == "" {
		return c
	}
	c.lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if strings.HasSuffix(c.lines[0], "\r") {
		c.cr = "\r"
	}
	return c
}

func (c *credentialsFile) bytes() []byte {
	if len(c.lines) == 0 {
		return nil
	}
	return []byte(strings.Join(c.lines, "\n") + "\n")
}

// spans splits the lines into sections. ok is false when the split does not
// agree with the parser, e.g. for repeated section headers.
func (c *credentialsFile) spans() ([]sectionSpan, bool) {
	var spans []sectionSpan
	for i, l := range c.lines {
		name, isHeader := sectionHeader(l)
		if !isHeader {
			continue
		}
		start := i
		for start > 0 && isCommentLine(c.lines[start-1]) {
			start--
		}
		if n := len(spans); n > 0 {
			if start <= spans[n-1].header {
				start = spans[n-1].header + 1
			}
			spans[n-1].end = start
		}
		spans = append(spans, sectionSpan{name: name, start: start, header: i, end: len(c.lines)})
	}

	var split []string
	for _, sp := range spans {
		if sp.name != ini.DefaultSection {
			split = append(split, sp.name)
		}
	}
	parsed := profileNames(c.ini)
	if len(split) != len(parsed) {
		return nil, false
	}
	for i := range split {
		if split[i] != parsed[i] {
			return nil, false
		}
	}
	return spans, true
}

func (c *credentialsFile) span(name string) (sectionSpan, bool, bool) {
	spans, ok := c.spans()
	if !ok {
		return sectionSpan{}, false, false
	}
	for _, sp := range spans {
		if sp.name == name {
			return sp, true, true
		}
	}
	return sectionSpan{}, false, true
}

// spliceUpsert returns the file text with p written into its section. Lines
// of other keys are kept as they are; a new section is appended at the end.
func (c *credentialsFile) spliceUpsert(p Profile) ([]byte, bool) {
	values := map[string]string{
		keyAccessKeyID:     p.AccessKeyID,
		keySecretAccessKey: p.SecretAccessKey.Reveal(),
		keySessionToken:    p.SessionToken.Reveal(),
	}
	order := []string{keyAccessKeyID, keySecretAccessKey, keySessionToken}

	sp, found, ok := c.span(p.Name)
	if !ok {
		return nil, false
	}

	if !found {
		lines := append([]string{}, c.lines...)
		if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) != "" {
			lines = append(lines, c.cr)
		}
		lines = append(lines, "["+p.Name+"]"+c.cr)
		for _, k := range order {
			if values[k] != "" {
				lines = append(lines, c.keyLine(k, values[k]))
			}
		}
		return (&credentialsFile{lines: lines}).bytes(), true
	}

	seen := map[string]bool{}
	body := []string{}
	lastKey := -1
	for _, l := range c.lines[sp.header+1 : sp.end] {
		k, isKey := keyLineName(l)
		v, managed := values[k]
		switch {
		case !isKey || !managed:
			body = append(body, l)
		case seen[k] || v == "":
			// repeated or cleared key
			continue
		default:
			seen[k] = true
			body = append(body, c.keyLine(k, v))
		}
		if isKey && (!managed || seen[k]) {
			lastKey = len(body) - 1
		}
	}

	var missing []string
	for _, k := range order {
		if !seen[k] && values[k] != "" {
			missing = append(missing, c.keyLine(k, values[k]))
		}
	}
	at := lastKey + 1
	body = append(body[:at], append(missing, body[at:]...)...)

	lines := make([]string, 0, len(c.lines)+len(missing))
	lines = append(lines, c.lines[:sp.header+1]...)
	lines = append(lines, body...)
	lines = append(lines, c.lines[sp.end:]...)
	return (&credentialsFile{lines: lines}).bytes(), true
}

// spliceDelete returns the file text without the named section and the
// comment lines directly above its header.
func (c *credentialsFile) spliceDelete(name string) ([]byte, bool) {
	sp, found, ok := c.span(name)
	if !ok || !found {
		return nil, false
	}

	lines := append([]string{}, c.lines[:sp.start]...)
	lines = append(lines, c.lines[sp.end:]...)
	if sp.end == len(c.lines) {
		for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
			lines = lines[:len(lines)-1]
		}
	}
	return (&credentialsFile{lines: lines}).bytes(), true
}

func (c *credentialsFile) keyLine(key, value string) string {
	return key + " = " + value + c.cr
}

// sectionHeader mirrors how ini.v1 reads a header: leading space is
// skipped and the name runs up to the last ']'.
func sectionHeader(line string) (string, bool) {
	t := strings.TrimLeftFunc(line, unicode.IsSpace)
	if !strings.HasPrefix(t, "[") {
		return "", false
	}
	end := strings.LastIndex(t, "]")
	if end < 0 {
		return "", false
	}
	return t[1:end], true
}

func isCommentLine(line string) bool {
	t := strings.TrimSpace(line)
	return t != "" && (t[0] == '#' || t[0] == ';')
}

func keyLineName(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if t == "" || t[0] == '#' || t[0] == ';' || t[0] == '[' {
		return "", false
	}
	i := strings.IndexByte(t, '=')
	if i < 0 {
		return "", false
	}
	return strings.TrimSpace(t[:i]), true
}

func profileNames(f *ini.File) []string {
	names := []string{}
	for _, sec := range f.Sections() {
		if sec.Name() != ini.DefaultSection {
			names = append(names, sec.Name())
		}
	}
	return names
}
