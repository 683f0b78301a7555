package adapter

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/swiftls-project/swiftls/internal/core"
)

func TestFromCorePosition(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		pos      core.Position
		wantLine uint32
		wantChar uint32
	}{
		{
			name:     "ASCII",
			content:  "hello world",
			pos:      core.Position{Line: 0, Character: 5},
			wantLine: 0,
			wantChar: 5,
		},
		{
			name:     "emoji after surrogate pair",
			content:  "hello 😀 world",
			pos:      core.Position{Line: 0, Character: 10}, // byte offset of the space after the emoji
			wantLine: 0,
			wantChar: 8, // h e l l o sp emoji(2 units) sp
		},
		{
			name:     "Chinese characters",
			content:  "你好世界",
			pos:      core.Position{Line: 0, Character: 6}, // 2 runes * 3 bytes
			wantLine: 0,
			wantChar: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lt := core.NewLineTable(tt.content)
			got, err := FromCorePosition(lt, tt.pos)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Line != protocol.UInteger(tt.wantLine) {
				t.Errorf("Line: got %v, want %v", got.Line, tt.wantLine)
			}
			if got.Character != protocol.UInteger(tt.wantChar) {
				t.Errorf("Character: got %v, want %v", got.Character, tt.wantChar)
			}
		})
	}
}

func TestToCorePosition(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		pos      protocol.Position
		wantLine int
		wantChar int
	}{
		{
			name:     "ASCII",
			content:  "hello world",
			pos:      protocol.Position{Line: 0, Character: 5},
			wantLine: 0,
			wantChar: 5,
		},
		{
			name:     "emoji after surrogate pair",
			content:  "hello 😀 world",
			pos:      protocol.Position{Line: 0, Character: 8},
			wantLine: 0,
			wantChar: 10,
		},
		{
			name:     "Chinese characters",
			content:  "你好世界",
			pos:      protocol.Position{Line: 0, Character: 2},
			wantLine: 0,
			wantChar: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lt := core.NewLineTable(tt.content)
			got, err := ToCorePosition(lt, tt.pos)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Line != tt.wantLine {
				t.Errorf("Line: got %v, want %v", got.Line, tt.wantLine)
			}
			if got.Character != tt.wantChar {
				t.Errorf("Character: got %v, want %v", got.Character, tt.wantChar)
			}
		})
	}
}

func TestPositionRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content string
		pos     core.Position
	}{
		{"ASCII", "hello world", core.Position{Line: 0, Character: 5}},
		{"emoji", "hello 😀 world", core.Position{Line: 0, Character: 6}},
		{"Chinese", "你好世界", core.Position{Line: 0, Character: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lt := core.NewLineTable(tt.content)
			protoPos, err := FromCorePosition(lt, tt.pos)
			if err != nil {
				t.Fatalf("FromCorePosition: %v", err)
			}
			roundTrip, err := ToCorePosition(lt, protoPos)
			if err != nil {
				t.Fatalf("ToCorePosition: %v", err)
			}
			if roundTrip != tt.pos {
				t.Errorf("round trip failed: %v -> %v -> %v", tt.pos, protoPos, roundTrip)
			}
		})
	}
}

func TestToCorePositionOutOfRange(t *testing.T) {
	lt := core.NewLineTable("hi")
	if _, err := ToCorePosition(lt, protocol.Position{Line: 5, Character: 0}); err == nil {
		t.Fatal("expected error for out-of-range line")
	}
}

func TestFromCoreRange(t *testing.T) {
	content := "hello 😀 world"
	lt := core.NewLineTable(content)
	r := core.Range{
		Start: core.Position{Line: 0, Character: 0},
		End:   core.Position{Line: 0, Character: 6},
	}

	got, err := FromCoreRange(lt, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Start.Character != 0 {
		t.Errorf("Start character: got %v, want 0", got.Start.Character)
	}
	if got.End.Character != 6 {
		t.Errorf("End character: got %v, want 6", got.End.Character)
	}
}
