package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the process-wide line logger. Both request completion lines
// and audit event lines go through it so the service emits a single JSON
// stream on stdout.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// Emit writes one JSON log line. Fields are caller-defined; the access layer
// uses it for request completions and audit events.
func Emit(fields map[string]any) {
	data, err := json.Marshal(fields)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"emit: marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}
