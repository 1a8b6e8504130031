package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeInvalidOperator, "invalid operator").WithContext("operator", "matches")
	msg := err.Error()
	if !strings.Contains(msg, "E202") || !strings.Contains(msg, "operator=matches") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CodeWriteFailed, "sink write failed")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("cause missing from message: %s", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CodeUnknown, "x") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestIsCodeAndGetCode(t *testing.T) {
	err := StreamError("data.LEA.cards.item", fmt.Errorf("bad token"))
	if !IsCode(err, CodeStreamParse) {
		t.Error("IsCode failed on direct error")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !IsCode(wrapped, CodeStreamParse) {
		t.Error("IsCode failed through fmt wrapping")
	}
	if GetCode(wrapped) != CodeStreamParse {
		t.Errorf("GetCode = %v", GetCode(wrapped))
	}

	if GetCode(fmt.Errorf("plain")) != CodeUnknown {
		t.Error("plain errors should map to unknown")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := InvalidOperator("matches")
	b := New(CodeInvalidOperator, "other message")
	if !errors.Is(a, b) {
		t.Error("errors with the same code should match")
	}
	c := New(CodeInvalidValueType, "different code")
	if errors.Is(a, c) {
		t.Error("errors with different codes must not match")
	}
}

func TestStackCaptured(t *testing.T) {
	err := New(CodeUnknown, "x")
	if len(err.StackTrace) == 0 {
		t.Fatal("no stack captured")
	}
	if err.FormatStack() == "" {
		t.Error("FormatStack empty")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	if GetCode(FileNotFound("/tmp/x")) != CodeFileNotFound {
		t.Error("FileNotFound code")
	}
	if GetCode(MissingFields("Bolt", []string{"type"})) != CodeMissingField {
		t.Error("MissingFields code")
	}
	if GetCode(InvalidValueType("gt", []int{})) != CodeInvalidValueType {
		t.Error("InvalidValueType code")
	}
	if GetCode(WriterStateError("SET_OPEN", "INITIAL")) != CodeWriterState {
		t.Error("WriterStateError code")
	}
}
