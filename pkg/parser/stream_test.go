package parser

import (
	"io"
	"strings"
	"testing"
)

func collect(t *testing.T, input string) []Event {
	t.Helper()
	p := NewStreamParser(strings.NewReader(input))
	var events []Event
	for {
		ev, err := p.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		events = append(events, ev)
	}
}

func TestStreamParser_Scalar(t *testing.T) {
	events := collect(t, `42`)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Kind != EventValue || events[0].Path != "" || events[0].Value != 42.0 {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestStreamParser_ObjectPaths(t *testing.T) {
	events := collect(t, `{"meta":{"version":"5.2.0"},"count":2}`)

	want := []Event{
		{Path: "", Kind: EventStartMap},
		{Path: "", Kind: EventKey, Value: "meta"},
		{Path: "meta", Kind: EventStartMap},
		{Path: "meta", Kind: EventKey, Value: "version"},
		{Path: "meta.version", Kind: EventValue, Value: "5.2.0"},
		{Path: "meta", Kind: EventEndMap},
		{Path: "", Kind: EventKey, Value: "count"},
		{Path: "count", Kind: EventValue, Value: 2.0},
		{Path: "", Kind: EventEndMap},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i, w := range want {
		if events[i] != w {
			t.Errorf("event %d = %+v, want %+v", i, events[i], w)
		}
	}
}

func TestStreamParser_ArrayItemPaths(t *testing.T) {
	events := collect(t, `{"cards":[{"name":"A"},{"name":"B"}]}`)

	var cardStarts, values []string
	for _, ev := range events {
		switch ev.Kind {
		case EventStartMap:
			if ev.Path != "" {
				cardStarts = append(cardStarts, ev.Path)
			}
		case EventValue:
			values = append(values, ev.Path)
		}
	}

	if len(cardStarts) != 2 || cardStarts[0] != "cards.item" || cardStarts[1] != "cards.item" {
		t.Errorf("card starts = %v, want two cards.item", cardStarts)
	}
	for _, p := range values {
		if p != "cards.item.name" {
			t.Errorf("value path = %q, want cards.item.name", p)
		}
	}
}

func TestStreamParser_NestedContainers(t *testing.T) {
	events := collect(t, `{"a":{"b":[1,{"c":true}]}}`)

	var kinds []EventKind
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	want := []EventKind{
		EventStartMap, EventKey, EventStartMap, EventKey, EventStartArray,
		EventValue, EventStartMap, EventKey, EventValue, EventEndMap,
		EventEndArray, EventEndMap, EventEndMap,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(kinds))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d kind = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestStreamParser_EmptyContainers(t *testing.T) {
	events := collect(t, `{"a":{},"b":[]}`)
	var kinds []EventKind
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	want := []EventKind{
		EventStartMap, EventKey, EventStartMap, EventEndMap,
		EventKey, EventStartArray, EventEndArray, EventEndMap,
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d kind = %v, want %v (%+v)", i, kinds[i], want[i], events)
		}
	}
}

func TestStreamParser_Malformed(t *testing.T) {
	p := NewStreamParser(strings.NewReader(`{"a": }`))
	for {
		_, err := p.Next()
		if err == io.EOF {
			t.Fatal("malformed input reached EOF without error")
		}
		if err != nil {
			return
		}
	}
}

func TestStreamParser_InputOffsetAdvances(t *testing.T) {
	p := NewStreamParser(strings.NewReader(`{"key":"value"}`))
	var last int64
	for {
		_, err := p.Next()
		if err != nil {
			break
		}
		if p.InputOffset() < last {
			t.Fatal("InputOffset went backwards")
		}
		last = p.InputOffset()
	}
	if last == 0 {
		t.Error("InputOffset never advanced")
	}
}
