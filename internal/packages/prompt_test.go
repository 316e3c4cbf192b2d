package packages

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLinePrompter_Choose(t *testing.T) {
	valid := []string{ChoiceOfficial, ChoiceCommunity}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
		asks    int
	}{
		{"official", "1\n", "1", nil, 1},
		{"community with spaces", "  2 \n", "2", nil, 1},
		{"answer without newline", "2", "2", nil, 1},
		{"retry then valid", "x\n1\n", "1", nil, 2},
		{"eof", "", "", ErrNoChoice, 1},
		{"invalid then eof", "3\n", "", ErrNoChoice, 2},
		{"too many invalid", "a\nb\nc\n1\n", "", ErrInvalidChoice, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out)

			got, err := p.Choose("Install from [1/2]: ", valid)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Choose() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Choose() = %q, want %q", got, tt.want)
			}
			if n := strings.Count(out.String(), "Install from"); n != tt.asks {
				t.Errorf("asked %d times, want %d", n, tt.asks)
			}
		})
	}
}
