// Package config parses the simulation's line-oriented scenario files:
// seed/time/scale directives plus node/sniffer/noise placement and
// pairwise extra-loss overrides.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const maxLineLength = 1024

// ParseError reports a line/column-anchored syntax problem, matching the
// reference parser's "name:line:col: message" diagnostics.
type ParseError struct {
	Name string
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Name, e.Line, e.Col, e.Msg)
}

// Node is a `node` directive: a simulated device placed at (X,Y) running
// the firmware image at Path.
type Node struct {
	Name string
	X, Y float64
	ID   int64
	Path string
}

// Sniffer is a `sniffer` directive: a passive capture point.
type Sniffer struct {
	Name        string
	X, Y        float64
	FreqLow     float64
	FreqHigh    float64
	Sensitivity float64
	Path        string
}

// Noise is a `noise` directive: an interfering source toggling on/off.
type Noise struct {
	Name     string
	X, Y     float64
	FreqLow  float64
	FreqHigh float64
	Power    float64
	On, Off  int64
}

// Loss is a `loss` directive: an extra, symmetric path-loss override
// between two named participants. The simulation applies it only when both
// names are nodes; other pairs are parsed and then ignored.
type Loss struct {
	From, To string
	LossDB   float64
}

// Scenario is everything a config file describes.
type Scenario struct {
	Seed  uint32
	Time  uint64
	Scale float64

	Nodes    []Node
	Sniffers []Sniffer
	Noises   []Noise
	Losses   []Loss
}

const mhz = 1000000.0

// Parse reads a scenario description named name (used only in error
// messages) from r.
func Parse(name string, r io.Reader) (*Scenario, error) {
	s := &Scenario{Scale: 1.0}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineLength), maxLineLength)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if len(text) >= maxLineLength {
			return nil, &ParseError{name, line, 0, "line too long"}
		}
		if err := processLine(s, name, line, text); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", name, err)
	}
	return s, nil
}

// ParseFile opens and parses the scenario file at path.
func ParseFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open configuration file %s", path)
	}
	defer f.Close()
	return Parse(path, f)
}

type lineParser struct {
	name string
	line int
	text string
	col  int

	tabCols int // display columns tabs add beyond their own byte, for diagnostics
}

func processLine(s *Scenario, name string, line int, text string) error {
	p := &lineParser{name: name, line: line, text: text}
	p.skipSpaces()

	if p.col >= len(p.text) || p.text[p.col] == '#' {
		return nil
	}

	cmd := p.getWord()

	var err error
	switch cmd {
	case "seed":
		var v int64
		v, err = p.getLong()
		s.Seed = uint32(v)
	case "time":
		var v int64
		v, err = p.getLong()
		s.Time = uint64(v)
	case "scale":
		s.Scale, err = p.getFloat()
	case "node":
		err = parseNode(p, s)
	case "sniffer":
		err = parseSniffer(p, s)
	case "noise":
		err = parseNoise(p, s)
	case "loss":
		err = parseLoss(p, s)
	default:
		return p.errorf("invalid command")
	}
	if err != nil {
		return err
	}

	p.skipSpaces()
	if p.col < len(p.text) {
		return p.errorf("extra junk at the end of the line: '%s'", p.text[p.col:])
	}
	return nil
}

func parseNode(p *lineParser, s *Scenario) error {
	name, err := p.getName()
	if err != nil {
		return err
	}
	for _, n := range s.Nodes {
		if n.Name == name {
			return p.errorf("node '%s' already exists", name)
		}
	}
	x, err := p.getFloat()
	if err != nil {
		return err
	}
	y, err := p.getFloat()
	if err != nil {
		return err
	}
	id, err := p.getLong()
	if err != nil {
		return err
	}
	path, err := p.getStr()
	if err != nil {
		return err
	}
	s.Nodes = append(s.Nodes, Node{Name: name, X: x * s.Scale, Y: y * s.Scale, ID: id, Path: path})
	return nil
}

func parseSniffer(p *lineParser, s *Scenario) error {
	name, err := p.getName()
	if err != nil {
		return err
	}
	for _, sn := range s.Sniffers {
		if sn.Name == name {
			return p.errorf("sniffer '%s' already exists", name)
		}
	}
	x, err := p.getFloat()
	if err != nil {
		return err
	}
	y, err := p.getFloat()
	if err != nil {
		return err
	}
	lo, hi, err := p.getRange()
	if err != nil {
		return err
	}
	sens, err := p.getFloat()
	if err != nil {
		return err
	}
	path, err := p.getStr()
	if err != nil {
		return err
	}
	s.Sniffers = append(s.Sniffers, Sniffer{
		Name: name, X: x * s.Scale, Y: y * s.Scale,
		FreqLow: lo * mhz, FreqHigh: hi * mhz, Sensitivity: sens, Path: path,
	})
	return nil
}

func parseNoise(p *lineParser, s *Scenario) error {
	name, err := p.getName()
	if err != nil {
		return err
	}
	for _, n := range s.Noises {
		if n.Name == name {
			return p.errorf("noise '%s' already exists", name)
		}
	}
	x, err := p.getFloat()
	if err != nil {
		return err
	}
	y, err := p.getFloat()
	if err != nil {
		return err
	}
	lo, hi, err := p.getRange()
	if err != nil {
		return err
	}
	power, err := p.getFloat()
	if err != nil {
		return err
	}
	on, err := p.getLong()
	if err != nil {
		return err
	}
	off, err := p.getLong()
	if err != nil {
		return err
	}
	s.Noises = append(s.Noises, Noise{
		Name: name, X: x * s.Scale, Y: y * s.Scale,
		FreqLow: lo * mhz, FreqHigh: hi * mhz, Power: power, On: on, Off: off,
	})
	return nil
}

func parseLoss(p *lineParser, s *Scenario) error {
	from, err := p.getName()
	if err != nil {
		return err
	}
	to, err := p.getName()
	if err != nil {
		return err
	}
	db, err := p.getFloat()
	if err != nil {
		return err
	}
	s.Losses = append(s.Losses, Loss{From: from, To: to, LossDB: db})
	return nil
}

func (p *lineParser) errorf(format string, args ...interface{}) error {
	return &ParseError{p.name, p.line, p.col + p.tabCols + 1, fmt.Sprintf(format, args...)}
}

// skipSpaces advances over spaces and tabs, expanding tabs to the next
// multiple-of-8 column the way the reference's config_col accounting does.
func (p *lineParser) skipSpaces() {
	for p.col < len(p.text) {
		switch p.text[p.col] {
		case ' ':
			p.col++
		case '\t':
			p.tabCols += 7 - (p.col+p.tabCols)%8
			p.col++
		default:
			return
		}
	}
}

func (p *lineParser) getWord() string {
	p.skipSpaces()
	start := p.col
	for p.col < len(p.text) && p.text[p.col] != ' ' && p.text[p.col] != '\t' {
		p.col++
	}
	return p.text[start:p.col]
}

func (p *lineParser) getStr() (string, error) {
	p.skipSpaces()
	word := p.getWord()
	if word == "" {
		return "", p.errorf("string expected")
	}
	return word, nil
}

func (p *lineParser) getName() (string, error) {
	s, err := p.getStr()
	if err != nil {
		return "", err
	}
	c := s[0]
	if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		return "", p.errorf("name must start with alphabetic character or '_', got '%s'", s)
	}
	return s, nil
}

func (p *lineParser) getLong() (int64, error) {
	s, err := p.getStr()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, p.errorf("integer expected")
	}
	return v, nil
}

func (p *lineParser) getFloat() (float64, error) {
	s, err := p.getStr()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, p.errorf("floating point expected")
	}
	return v, nil
}

// getRange parses "a" or "a-b"; when b is absent it equals a.
func (p *lineParser) getRange() (a, b float64, err error) {
	s, err := p.getStr()
	if err != nil {
		return 0, 0, err
	}
	if idx := strings.IndexByte(s[1:], '-'); idx >= 0 {
		idx++
		lo, err1 := strconv.ParseFloat(s[:idx], 64)
		hi, err2 := strconv.ParseFloat(s[idx+1:], 64)
		if err1 != nil || err2 != nil {
			return 0, 0, p.errorf("floating point expected")
		}
		return lo, hi, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, 0, p.errorf("floating point expected")
	}
	return v, v, nil
}
