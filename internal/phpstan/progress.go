package phpstan

import (
	"bytes"
	"regexp"
	"strconv"
	"sync"
)

// progressLine matches PHPStan's console progress bar, e.g. "12/40 [=>  ] 30%".
var progressLine = regexp.MustCompile(`(\d+)/(\d+)\s+\[.*?\]\s+(\d+)%`)

// ProgressFunc receives progress updates: files done, files total, and the
// completion percentage in [0, 100].
type ProgressFunc func(done, total int, percentage float64)

// progressWriter is an io.Writer that scans process stderr for progress bar
// lines and forwards them to registered callbacks. Partial lines are buffered
// across writes.
type progressWriter struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	notify  func(done, total int, percentage float64)
	lastPct float64
}

func newProgressWriter(notify func(done, total int, percentage float64)) *progressWriter {
	return &progressWriter{notify: notify, lastPct: -1}
}

// Write consumes a chunk of process output. It never fails; unparseable
// content is discarded once a line completes.
func (w *progressWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Progress bars repaint in place with carriage returns; treat them as
	// line terminators so every repaint is scanned.
	w.buf.Write(bytes.ReplaceAll(p, []byte{'\r'}, []byte{'\n'}))

	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line: keep it buffered for the next write.
			w.buf.WriteString(line)

			break
		}

		w.scanLine(line)
	}

	return len(p), nil
}

func (w *progressWriter) scanLine(line string) {
	match := progressLine.FindStringSubmatch(line)
	if match == nil {
		return
	}

	done, _ := strconv.Atoi(match[1])
	total, _ := strconv.Atoi(match[2])
	pct, _ := strconv.ParseFloat(match[3], 64)

	// Progress bars repaint; only forward forward movement.
	if pct <= w.lastPct {
		return
	}

	w.lastPct = pct

	if w.notify != nil {
		w.notify(done, total, pct)
	}
}
