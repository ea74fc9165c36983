package pixcc

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// PlainTextFileInput implements interface Inputer and provides image locations (URL or
// file path, one per line) from plain text file. Empty lines and lines starting
// with # are skipped.
type PlainTextFileInput struct {
	line   chan string
	log    zerolog.Logger
	passed int
}

// NewPlainTextFileInput returns new instance of PlainTextFileInput.
func NewPlainTextFileInput(l zerolog.Logger) *PlainTextFileInput {
	return &PlainTextFileInput{log: l.With().Str("component", "inputer").Logger(), line: make(chan string)}
}

// Start opens an input file in read only mode and starts runner (separate goroutine) of line by
// line reading to chan string. Returns error if could not open a file. Channel
// returned by Next is closed when EOF is reached or ctx is cancelled.
func (inp *PlainTextFileInput) Start(ctx context.Context, fname string) error {

	file, err := os.Open(fname)
	if err != nil {
		return err
	}

	go func() {
		inp.runner(ctx, bufio.NewScanner(file))
		close(inp.line)
		_ = file.Close() // we can ignore file.Close() error because of readonly mode.
		inp.log.Debug().Str("input", fname).Int("passed", inp.passed).Msg("input is closed")
	}()
	return nil
}

func (inp *PlainTextFileInput) runner(ctx context.Context, scanner *bufio.Scanner) {

	for scanner.Scan() {
		loc := location(scanner.Text())
		if loc == "" {
			continue
		}

		// catching ctx.Done() while line chan is full.
		select {
		case <-ctx.Done():
			return
		case inp.line <- loc:
			inp.passed++
		}
	}

	if err := scanner.Err(); err != nil {
		inp.log.Error().Str("errmsg", err.Error()).Msg("scanner failed")
	}
}

// location returns trimmed line or empty string if line must be skipped.
func location(line string) string {
	s := strings.TrimSpace(line)
	if strings.HasPrefix(s, "#") {
		return ""
	}
	return s
}

// Passed returns amount of locations passed to Next channel.
// Valid after Next channel is closed.
func (inp *PlainTextFileInput) Passed() int {
	return inp.passed
}

// Next returns chan with image locations read from file.
func (inp *PlainTextFileInput) Next() <-chan string {
	return inp.line
}
