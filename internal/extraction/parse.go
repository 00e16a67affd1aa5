package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"HeadlineScreener/internal/ports"
)

// stripCodeFence removes an optional Markdown fence around a JSON payload.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if newline := strings.IndexByte(text, '\n'); newline >= 0 {
		// drop the info string, e.g. "json"
		if info := strings.TrimSpace(text[:newline]); !strings.HasPrefix(info, "{") {
			text = text[newline+1:]
		}
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// parseFields decodes the oracle's JSON object into normalized keys with
// string values. Keys are lower-cased and spaces/hyphens become underscores.
func parseFields(raw string) (map[string]string, error) {
	payload := stripCodeFence(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ports.ErrMalformedResponse)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrMalformedResponse, err)
	}

	fields := make(map[string]string, len(decoded))
	for k, v := range decoded {
		fields[normalizeKey(k)] = stringify(v)
	}
	return fields, nil
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(key)
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// truthy interprets the oracle's irrelevant flag, which may come back as a
// JSON bool or as a string.
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}
