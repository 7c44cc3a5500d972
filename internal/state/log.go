package state

// LogCap bounds the in-state message log. Oldest entries fall off first.
const LogCap = 200

type LogTone string

const (
	ToneInfo    LogTone = "info"
	ToneSuccess LogTone = "success"
	ToneWarning LogTone = "warning"
	ToneDanger  LogTone = "danger"
)

// LogEntry is one player-facing message. This is game narration, not
// process logging; operational logs go to the server's log.Logger.
type LogEntry struct {
	Day     int     `json:"day"`
	Tone    LogTone `json:"tone"`
	Message string  `json:"message"`
}

// AppendLog pushes a message onto the bounded log.
func (s *State) AppendLog(tone LogTone, message string) {
	s.Log = append(s.Log, LogEntry{Day: s.Day, Tone: tone, Message: message})
	if len(s.Log) > LogCap {
		s.Log = append(s.Log[:0], s.Log[len(s.Log)-LogCap:]...)
	}
}

// RecentLog returns up to n newest entries, newest last.
func (s *State) RecentLog(n int) []LogEntry {
	if n <= 0 || n >= len(s.Log) {
		return s.Log
	}
	return s.Log[len(s.Log)-n:]
}
