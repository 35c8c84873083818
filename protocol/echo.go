package protocol

import (
	"errors"
	"fmt"
)

// ErrEchoMismatch is returned when the board echoes something other than
// what was sent
var ErrEchoMismatch = errors.New("protocol: echo mismatch")

// EchoMatcher checks received bytes against an expected echo. Bytes that
// arrive before the first expected byte are treated as line noise (a stale
// prompt, the tail of the banner) and skipped; once matching has started any
// difference is an error.
type EchoMatcher struct {
	expected []byte
	matched  int
	skipped  int
}

// NewEchoMatcher creates a matcher for the given sent bytes
func NewEchoMatcher(sent []byte) *EchoMatcher {
	expected := make([]byte, len(sent))
	copy(expected, sent)
	return &EchoMatcher{expected: expected}
}

// Feed consumes received data and returns how many bytes of it were used.
// Bytes after a completed match are left for the caller.
func (m *EchoMatcher) Feed(data []byte) (int, error) {
	used := 0
	for _, b := range data {
		if m.Done() {
			break
		}
		used++
		want := m.expected[m.matched]
		if b == want {
			m.matched++
			continue
		}
		if m.matched == 0 {
			m.skipped++
			continue
		}
		return used, fmt.Errorf("%w: byte %d got 0x%02X want 0x%02X",
			ErrEchoMismatch, m.matched, b, want)
	}
	return used, nil
}

// Done reports whether the whole expected echo has been seen
func (m *EchoMatcher) Done() bool {
	return m.matched == len(m.expected)
}

// Matched returns how many expected bytes have been seen so far
func (m *EchoMatcher) Matched() int {
	return m.matched
}

// Skipped returns how many leading noise bytes were discarded
func (m *EchoMatcher) Skipped() int {
	return m.skipped
}
