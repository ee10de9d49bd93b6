package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error; the diagnostics view simply shows an
// empty tail until the first write.
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
	defer file.Close()

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
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// reserved slog record keys, rendered in fixed positions.
const (
	keyTime  = "time"
	keyLevel = "level"
	keyMsg   = "msg"
)

// FormatLine converts one JSON log record into a display line with tview
// color tags. Lines that are not JSON records pass through uncolored.
func FormatLine(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !strings.HasPrefix(trimmed, "{") {
		return raw
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return raw
	}

	var b strings.Builder

	if ts, ok := record[keyTime].(string); ok {
		b.WriteString("[#808080]")
		b.WriteString(formatTimestamp(ts))
		b.WriteString("[-] ")
	}
	level, _ := record[keyLevel].(string)
	b.WriteString(levelTag(level))
	b.WriteString(strings.ToUpper(level))
	b.WriteString("[-:-:-] ")
	if msg, ok := record[keyMsg].(string); ok {
		b.WriteString(msg)
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		if k == keyTime || k == keyLevel || k == keyMsg {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(" [#87AFFF]%s[-]=%v", k, record[k]))
	}
	return b.String()
}

// FormatLines applies FormatLine to every line.
func FormatLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = FormatLine(line)
	}
	return out
}

func levelTag(level string) string {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return "[#666666::b]"
	case "WARN":
		return "[#FFD75F::b]"
	case "ERROR":
		return "[#FF5F5F::b]"
	default:
		return "[#5FD75F::b]"
	}
}

func formatTimestamp(ts string) string {
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return parsed.Format("15:04:05")
}
