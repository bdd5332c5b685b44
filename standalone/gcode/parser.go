package gcode

import (
	"errors"
	"fmt"
)

// ErrBadNumber indicates a parameter letter without a valid value
var ErrBadNumber = errors.New("gcode: bad number")

// Command is a parsed G-code line
type Command struct {
	Type       byte             // 'G', 'M', 'T', or 0 for a comment-only line
	Number     int              // command number (e.g., 1 for G1, 92 for G92)
	Parameters map[byte]float64 // parameters (X, Y, U, F, ...)
	Comment    string           // comment text
}

// HasParameter checks if a parameter exists in the command
func (cmd *Command) HasParameter(param byte) bool {
	_, ok := cmd.Parameters[param]
	return ok
}

// GetParameter gets a parameter value, or returns the default if not present
func (cmd *Command) GetParameter(param byte, defaultValue float64) float64 {
	if val, ok := cmd.Parameters[param]; ok {
		return val
	}
	return defaultValue
}

func (cmd *Command) String() string {
	if cmd.Type == 0 {
		return cmd.Comment
	}
	return fmt.Sprintf("%c%d", cmd.Type, cmd.Number)
}

// Parser handles G-code parsing
type Parser struct{}

// NewParser creates a new G-code parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseLine parses a single line of G-code. Blank lines yield a nil command.
func (p *Parser) ParseLine(line string) (*Command, error) {
	if len(line) == 0 {
		return nil, nil
	}

	cmd := &Command{
		Parameters: make(map[byte]float64),
	}

	i := skipSpace(line, 0)
	if i >= len(line) {
		return nil, nil
	}

	if isComment(line[i]) {
		cmd.Comment = line[i:]
		return cmd, nil
	}

	// Command type (G, M, T)
	if c := toUpper(line[i]); c == 'G' || c == 'M' || c == 'T' {
		cmd.Type = c
		i++

		num, newPos := parseInt(line, i)
		if newPos <= i {
			return nil, fmt.Errorf("%c: %w", c, ErrBadNumber)
		}
		cmd.Number = num
		i = newPos
	}

	// Parameters
	for i < len(line) {
		i = skipSpace(line, i)
		if i >= len(line) {
			break
		}

		if isComment(line[i]) {
			cmd.Comment = line[i:]
			break
		}

		if !isLetter(line[i]) {
			i++
			continue
		}
		letter := toUpper(line[i])
		i++

		value, newPos := parseFloat(line, i)
		if newPos <= i {
			return nil, fmt.Errorf("parameter %c: %w", letter, ErrBadNumber)
		}
		cmd.Parameters[letter] = value
		i = newPos
	}

	return cmd, nil
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\r') {
		pos++
	}
	return pos
}

func isComment(c byte) bool {
	return c == ';' || c == '('
}

// parseInt parses an integer from the string starting at pos
func parseInt(s string, pos int) (int, int) {
	if pos >= len(s) {
		return 0, pos
	}

	negative := false
	if s[pos] == '-' {
		negative = true
		pos++
	} else if s[pos] == '+' {
		pos++
	}

	start := pos
	value := 0

	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		value = value*10 + int(s[pos]-'0')
		pos++
	}

	if pos == start {
		return 0, start - 1 // no digits
	}

	if negative {
		value = -value
	}

	return value, pos
}

// parseFloat parses a decimal number from the string starting at pos
func parseFloat(s string, pos int) (float64, int) {
	if pos >= len(s) {
		return 0, pos
	}

	negative := false
	if s[pos] == '-' {
		negative = true
		pos++
	} else if s[pos] == '+' {
		pos++
	}

	start := pos
	intPart := 0.0
	fracPart := 0.0
	fracDigits := 0

	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		intPart = intPart*10 + float64(s[pos]-'0')
		pos++
	}

	if pos < len(s) && s[pos] == '.' {
		pos++
		fracStart := pos
		for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
			fracPart = fracPart*10.0 + float64(s[pos]-'0')
			pos++
		}
		fracDigits = pos - fracStart
	}

	if pos == start || (pos == start+1 && s[start] == '.') {
		return 0, start - 1 // no valid number
	}

	value := intPart
	if fracDigits > 0 {
		divisor := 1.0
		for i := 0; i < fracDigits; i++ {
			divisor *= 10.0
		}
		value += fracPart / divisor
	}

	if negative {
		value = -value
	}

	return value, pos
}

// isLetter checks if a byte is a letter
func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// toUpper converts a byte to uppercase
func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
