// Package store persists a command sequence as plain text, one command
// identifier per line.
package store

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/gwillem/finch/pkg/command"
)

// DefaultPath is where the menu saves and loads sequences.
var DefaultPath = filepath.Join("Data", "FinchCommands.txt")

var (
	ErrNotFound     = errors.New("store not found")
	ErrDirNotFound  = notFound("Directory Not Found")
	ErrFileNotFound = notFound("File Not Found")
)

type notFoundError string

func notFound(msg string) error { return notFoundError(msg) }

func (e notFoundError) Error() string { return string(e) }

func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

// Result is a loaded sequence with the per-line parse outcome.
type Result struct {
	Sequence command.Sequence
	Lines    []command.LineResult
}

// Unparsed returns the lines that did not hold a command identifier.
func (r *Result) Unparsed() []command.LineResult {
	var out []command.LineResult
	for _, l := range r.Lines {
		if !l.Parsed {
			out = append(out, l)
		}
	}
	return out
}

// Store is a flat text file holding one sequence.
type Store struct {
	path string
}

// New returns a store at path, or at DefaultPath when path is empty.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Save overwrites the file with seq, creating its directory if needed.
func (s *Store) Save(seq command.Sequence) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create store directory")
		}
	}
	if err := os.WriteFile(s.path, command.Encode(seq), 0o644); err != nil {
		return errors.Wrap(err, "write store")
	}
	return nil
}

// Load reads the stored sequence. A missing directory or file yields an
// error matching ErrNotFound.
func (s *Store) Load() (*Result, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if _, dirErr := os.Stat(filepath.Dir(s.path)); errors.Is(dirErr, os.ErrNotExist) {
				return nil, ErrDirNotFound
			}
			return nil, ErrFileNotFound
		}
		return nil, errors.Wrap(err, "read store")
	}

	seq, lines, err := command.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Result{Sequence: seq, Lines: lines}, nil
}
