package results

import "github.com/charmbracelet/log"

// LogReporter reports fetch failures to a logger at error level.
type LogReporter struct {
	Logger *log.Logger
}

// Report logs err. A nil logger falls back to the charmbracelet default logger.
func (r LogReporter) Report(err error) {
	if r.Logger == nil {
		log.Error("fetch failed", "err", err)
		return
	}
	r.Logger.Error("fetch failed", "err", err)
}
