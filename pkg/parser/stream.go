// Package parser turns a JSON byte stream into a flat sequence of
// path-tagged events. It never materializes a container larger than the
// decoder's token buffer, which is what lets the pipeline walk multi-gigabyte
// archives in constant memory.
package parser

import (
	"encoding/json"
	"fmt"
	"io"

	cferrors "github.com/cardflow/cardflow/pkg/errors"
)

// EventKind classifies a stream event.
type EventKind int

const (
	// EventStartMap marks the opening brace of an object.
	EventStartMap EventKind = iota
	// EventEndMap marks the closing brace of an object.
	EventEndMap
	// EventStartArray marks the opening bracket of an array.
	EventStartArray
	// EventEndArray marks the closing bracket of an array.
	EventEndArray
	// EventKey is an object key; Value holds the key string.
	EventKey
	// EventValue is a scalar; Value holds string, float64, bool or nil.
	EventValue
)

func (k EventKind) String() string {
	switch k {
	case EventStartMap:
		return "start_map"
	case EventEndMap:
		return "end_map"
	case EventStartArray:
		return "start_array"
	case EventEndArray:
		return "end_array"
	case EventKey:
		return "map_key"
	case EventValue:
		return "value"
	default:
		return "unknown"
	}
}

// Event is one parse event. Path is the dotted location of the value:
// object members extend the path with their key, array elements with the
// literal segment "item". The root value has the empty path.
type Event struct {
	Path  string
	Kind  EventKind
	Value interface{}
}

// frame is one open container on the parse stack.
type frame struct {
	isMap     bool
	path      string
	key       string
	expectKey bool
}

// StreamParser yields events one at a time from an io.Reader.
type StreamParser struct {
	dec   *json.Decoder
	stack []frame
}

// NewStreamParser creates a parser reading from r. Numbers decode as
// float64.
func NewStreamParser(r io.Reader) *StreamParser {
	return &StreamParser{dec: json.NewDecoder(r)}
}

// Next returns the next event. It returns io.EOF after the last event and a
// typed stream error on malformed input.
func (p *StreamParser) Next() (Event, error) {
	tok, err := p.dec.Token()
	if err == io.EOF {
		return Event{}, io.EOF
	}
	if err != nil {
		return Event{}, cferrors.StreamError(p.currentPath(), err)
	}

	if top := p.top(); top != nil && top.isMap && top.expectKey {
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return p.closeContainer()
		}
		key, ok := tok.(string)
		if !ok {
			return Event{}, cferrors.StreamError(top.path,
				fmt.Errorf("expected object key, got %T", tok))
		}
		top.key = key
		top.expectKey = false
		return Event{Path: top.path, Kind: EventKey, Value: key}, nil
	}

	path := p.childPath()

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			p.stack = append(p.stack, frame{isMap: true, path: path, expectKey: true})
			return Event{Path: path, Kind: EventStartMap}, nil
		case '[':
			p.stack = append(p.stack, frame{path: path})
			return Event{Path: path, Kind: EventStartArray}, nil
		default: // '}' or ']'
			return p.closeContainer()
		}
	default:
		p.valueDone()
		return Event{Path: path, Kind: EventValue, Value: tok}, nil
	}
}

// InputOffset returns the byte offset consumed so far, for progress
// reporting.
func (p *StreamParser) InputOffset() int64 {
	return p.dec.InputOffset()
}

// Depth returns the number of open containers.
func (p *StreamParser) Depth() int {
	return len(p.stack)
}

func (p *StreamParser) top() *frame {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

// childPath is the path a value read right now would have.
func (p *StreamParser) childPath() string {
	top := p.top()
	if top == nil {
		return ""
	}
	segment := "item"
	if top.isMap {
		segment = top.key
	}
	if top.path == "" {
		return segment
	}
	return top.path + "." + segment
}

func (p *StreamParser) currentPath() string {
	if top := p.top(); top != nil {
		return top.path
	}
	return ""
}

func (p *StreamParser) closeContainer() (Event, error) {
	top := p.top()
	if top == nil {
		return Event{}, cferrors.StreamError("",
			fmt.Errorf("unbalanced container close"))
	}
	kind := EventEndArray
	if top.isMap {
		kind = EventEndMap
	}
	path := top.path
	p.stack = p.stack[:len(p.stack)-1]
	p.valueDone()
	return Event{Path: path, Kind: kind}, nil
}

// valueDone records that the enclosing container just consumed one value.
func (p *StreamParser) valueDone() {
	if top := p.top(); top != nil && top.isMap {
		top.expectKey = true
	}
}
