package pipe

import (
	"github.com/cardflow/cardflow/internal/model"
	"github.com/cardflow/cardflow/pkg/parser"
)

// node is one open container during card assembly.
type node struct {
	m   map[string]interface{}
	s   []interface{}
	key string
}

// assembler rebuilds one card value from its parse events. Nested objects
// and arrays come back whole; a card's foreignData survives assembly with
// its full per-language entries.
type assembler struct {
	stack  []*node
	result model.Card
}

// feed consumes one event and reports whether the card is complete. The
// first event fed must be the card's own start_map.
func (a *assembler) feed(ev parser.Event) bool {
	switch ev.Kind {
	case parser.EventKey:
		a.stack[len(a.stack)-1].key = ev.Value.(string)
	case parser.EventStartMap:
		a.stack = append(a.stack, &node{m: map[string]interface{}{}})
	case parser.EventStartArray:
		a.stack = append(a.stack, &node{s: []interface{}{}})
	case parser.EventValue:
		a.attach(ev.Value)
	case parser.EventEndMap, parser.EventEndArray:
		n := a.stack[len(a.stack)-1]
		a.stack = a.stack[:len(a.stack)-1]
		var v interface{}
		if n.m != nil {
			v = n.m
		} else {
			v = n.s
		}
		if len(a.stack) == 0 {
			a.result = model.Card(n.m)
			return true
		}
		a.attach(v)
	}
	return false
}

func (a *assembler) attach(v interface{}) {
	top := a.stack[len(a.stack)-1]
	if top.m != nil {
		top.m[top.key] = v
	} else {
		top.s = append(top.s, v)
	}
}
