package command

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Sequence is an ordered list of commands. Order is execution order.
type Sequence []Command

// Strings returns the identifier of every command in order.
func (s Sequence) Strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.String()
	}
	return out
}

// Clone returns a copy that shares no storage with s.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// LineResult describes how one stored line was decoded.
type LineResult struct {
	Line    int // 1-based
	Text    string
	Command Command
	Parsed  bool
}

// Encode writes one identifier per line, each terminated by a newline.
func Encode(s Sequence) []byte {
	var buf bytes.Buffer
	for _, c := range s {
		buf.WriteString(c.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Decode reads one command per line. Lines that do not parse become Done
// and are reported with Parsed set to false.
func Decode(r io.Reader) (Sequence, []LineResult, error) {
	var (
		seq     Sequence
		results []LineResult
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		text := strings.TrimSuffix(sc.Text(), "\r")
		c, ok := Parse(text)
		seq = append(seq, c)
		results = append(results, LineResult{
			Line:    len(seq),
			Text:    text,
			Command: c,
			Parsed:  ok,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "read commands")
	}
	return seq, results, nil
}
