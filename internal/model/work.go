package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRuntimeFormat is returned when a runtime text does not match the
// strict HH:mm pattern or parses to an out-of-range time.
var ErrInvalidRuntimeFormat = errors.New("invalid runtime, want HH:mm")

// ScreenableWork is a title that can be scheduled: a movie, a recorded opera,
// anything with a fixed runtime. Works are created through catalog intake and
// never mutated afterwards; screenings reference them, they do not own them.
type ScreenableWork struct {
	Title    string
	Genre    string
	Synopsis string
	Runtime  time.Duration
}

// NewScreenableWork validates the runtime text and builds an immutable work.
func NewScreenableWork(title, genre, synopsis, runtimeText string) (*ScreenableWork, error) {
	runtime, err := ParseRuntime(runtimeText)
	if err != nil {
		return nil, err
	}
	return &ScreenableWork{
		Title:    title,
		Genre:    genre,
		Synopsis: synopsis,
		Runtime:  runtime,
	}, nil
}

// ParseRuntime parses a strict `HH:mm` runtime text: exactly two digits, a
// colon, two digits. The result is a non-negative duration strictly below 24h.
func ParseRuntime(s string) (time.Duration, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRuntimeFormat, s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidRuntimeFormat, s)
		}
	}
	hours := int(s[0]-'0')*10 + int(s[1]-'0')
	minutes := int(s[3]-'0')*10 + int(s[4]-'0')
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRuntimeFormat, s)
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}

// RuntimeText renders the runtime back into the canonical HH:mm form used by
// the catalog collaborator.
func (w *ScreenableWork) RuntimeText() string {
	total := int(w.Runtime / time.Minute)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func (w *ScreenableWork) String() string {
	return fmt.Sprintf("%s (%s)", w.Title, w.RuntimeText())
}
