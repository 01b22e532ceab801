package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ParseFrontMatter splits a content file into its front matter, body and
// format ("yaml" for ---, "toml" for +++, "json" for a leading object).
func ParseFrontMatter(content []byte) (map[string]interface{}, string, string, error) {
	str := normalizeLineEndings(string(content))

	for _, d := range []struct{ delim, format string }{{"---", "yaml"}, {"+++", "toml"}} {
		if !strings.HasPrefix(str, d.delim+"\n") {
			continue
		}
		// Keep the newline so an empty block still finds its closing delimiter.
		rest := str[len(d.delim):]
		end := strings.Index(rest, "\n"+d.delim)
		if end < 0 {
			return nil, "", "", fmt.Errorf("unterminated %s front matter", d.format)
		}
		raw := rest[:end]
		body := strings.TrimPrefix(rest[end+len(d.delim)+1:], "\n")

		fm := map[string]interface{}{}
		var err error
		if d.format == "yaml" {
			err = yaml.Unmarshal([]byte(raw), &fm)
		} else {
			err = toml.Unmarshal([]byte(raw), &fm)
		}
		if err != nil {
			return nil, "", "", fmt.Errorf("parse %s front matter: %w", d.format, err)
		}
		return fm, strings.TrimSpace(body), d.format, nil
	}

	// JSON front matter is a leading object; the rest is body.
	if strings.HasPrefix(strings.TrimSpace(str), "{") {
		dec := json.NewDecoder(strings.NewReader(str))
		var fm map[string]interface{}
		if err := dec.Decode(&fm); err == nil {
			rest := str[dec.InputOffset():]
			return fm, strings.TrimSpace(rest), "json", nil
		}
	}

	return nil, "", "", fmt.Errorf("unknown format")
}

// ConstructFileContent renders front matter and body back into a file.
func ConstructFileContent(fm map[string]interface{}, body string, format string) ([]byte, error) {
	normalizedFM := sanitizeFrontMatter(fm)
	if normalizedFM == nil {
		normalizedFM = map[string]interface{}{}
	}

	var buf bytes.Buffer
	switch format {
	case "yaml":
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
		buf.WriteString("---\n")
	case "toml":
		buf.WriteString("+++\n")
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
		buf.WriteString("+++\n")
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func sanitizeFrontMatter(fm map[string]interface{}) map[string]interface{} {
	if fm == nil {
		return nil
	}
	sanitized := make(map[string]interface{}, len(fm))
	for k, v := range fm {
		sanitized[k] = sanitizeFrontMatterValue(v)
	}
	return sanitized
}

func sanitizeFrontMatterValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return sanitizeFrontMatter(v)
	case map[interface{}]interface{}:
		normalized := make(map[string]interface{}, len(v))
		for key, inner := range v {
			normalized[fmt.Sprint(key)] = sanitizeFrontMatterValue(inner)
		}
		return normalized
	case []interface{}:
		slice := make([]interface{}, len(v))
		for i := range v {
			slice[i] = sanitizeFrontMatterValue(v[i])
		}
		return slice
	default:
		return v
	}
}

// canonicalizeValueForJSON turns TOML local dates and times into values
// that encoding/json writes as RFC 3339.
func canonicalizeValueForJSON(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		canonical := make(map[string]interface{}, len(v))
		for key, inner := range v {
			canonical[key] = canonicalizeValueForJSON(inner)
		}
		return canonical
	case []interface{}:
		slice := make([]interface{}, len(v))
		for i := range v {
			slice[i] = canonicalizeValueForJSON(v[i])
		}
		return slice
	case toml.LocalDate:
		return v.AsTime(time.UTC)
	case toml.LocalDateTime:
		return v.AsTime(time.UTC)
	case time.Time:
		return v.UTC()
	default:
		return v
	}
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// parseDate accepts the date spellings authors put in front matter.
func parseDate(v interface{}) (time.Time, error) {
	switch d := canonicalizeValueForJSON(v).(type) {
	case time.Time:
		return d, nil
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", d)
	default:
		return time.Time{}, fmt.Errorf("unrecognised date %v", v)
	}
}

func normalizeLineEndings(input string) string {
	return strings.ReplaceAll(input, "\r\n", "\n")
}
