package completion

import (
	"strings"

	"github.com/jackzampolin/tamer/internal/providers"
)

// Accumulated is what AccumulateUntil collected from a stream.
type Accumulated struct {
	Text      string
	Stopped   bool // marker observed; Text is truncated before it
	Fragments int  // fragments pulled from the stream, empty ones included
}

// AccumulateUntil appends stream fragments until the accumulated text
// contains marker, then stops pulling and returns the text before the
// first occurrence of marker. The marker may span fragment boundaries.
// An empty marker never matches, so the whole stream is consumed.
// Empty fragments (chunks without a content delta) are counted but add
// nothing.
//
// The error is the stream's terminal error; Text still holds whatever was
// accumulated before it.
func AccumulateUntil(s providers.Stream, marker string) (Accumulated, error) {
	var (
		b   strings.Builder
		acc Accumulated
	)

	for s.Next() {
		acc.Fragments++
		frag := s.Current()
		if frag == "" {
			continue
		}

		// Everything before from was already searched.
		from := b.Len() - len(marker) + 1
		if from < 0 {
			from = 0
		}
		b.WriteString(frag)

		if marker == "" {
			continue
		}
		if i := strings.Index(b.String()[from:], marker); i != -1 {
			acc.Text = b.String()[:from+i]
			acc.Stopped = true
			return acc, nil
		}
	}

	acc.Text = b.String()
	return acc, s.Err()
}
