package obs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestEmitWritesOneJSONLine(t *testing.T) {
	logger := Logger()
	orig := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(orig)

	Emit(map[string]any{"level": "info", "msg": "unit", "count": 3})

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "\n") {
		t.Fatalf("expected a single line, got %q", line)
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if fields["msg"] != "unit" || fields["count"] != float64(3) {
		t.Fatalf("unexpected fields: %v", fields)
	}
}
