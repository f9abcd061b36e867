package logger

import (
	"fmt"
	"strings"
)

// StdAdapter exposes a Logger through the Printf/Fatalf pair that libraries
// such as goose expect. Fatalf logs at critical level and does not exit.
type StdAdapter struct {
	log       Logger
	component string
}

func NewStdAdapter(log Logger, component string) StdAdapter {
	return StdAdapter{log: log, component: component}
}

func (a StdAdapter) Printf(format string, v ...any) {
	a.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", a.component)
}

func (a StdAdapter) Fatalf(format string, v ...any) {
	a.log.Critical(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", a.component)
}
