package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nicholasgasior/htmd/internal/yamlutil"
)

type ruleFile struct {
	Name  string   `yaml:"name"`
	On    string   `yaml:"on"`
	Tags  []string `yaml:"tags"`
	Limit int      `yaml:"limit"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "valid YAML",
			data: []byte("name: drop-nav\non: element_start\ntags: [nav, aside]\nlimit: 3"),
			dest: &ruleFile{},
			check: func(t *testing.T, v any) {
				r := v.(*ruleFile)
				if r.Name != "drop-nav" || r.On != "element_start" {
					t.Errorf("got %+v", r)
				}
				if len(r.Tags) != 2 || r.Tags[1] != "aside" {
					t.Errorf("Tags = %v", r.Tags)
				}
				if r.Limit != 3 {
					t.Errorf("Limit = %d, want 3", r.Limit)
				}
			},
		},
		{
			name: "unknown fields ignored",
			data: []byte("name: x\nextra: 1"),
			dest: &ruleFile{},
			check: func(t *testing.T, v any) {
				if r := v.(*ruleFile); r.Name != "x" {
					t.Errorf("Name = %q", r.Name)
				}
			},
		},
		{name: "nil data", data: nil, dest: &ruleFile{}, wantErr: yamlutil.ErrNilData},
		{name: "empty data", data: []byte{}, dest: &ruleFile{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("name: x"), dest: nil, wantErr: yamlutil.ErrNilDestination},
		{
			name:    "invalid syntax",
			data:    []byte("name: [unclosed"),
			dest:    &ruleFile{},
			wantErr: errors.New("yamlutil:"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !errors.Is(err, tt.wantErr) && !strings.Contains(err.Error(), tt.wantErr.Error()) {
					t.Fatalf("error = %q, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	var r ruleFile
	if err := yamlutil.UnmarshalStrict([]byte("name: ok\non: text"), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.On != "text" {
		t.Errorf("On = %q, want text", r.On)
	}

	err := yamlutil.UnmarshalStrict([]byte("name: ok\nactoin: skip"), &ruleFile{})
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("error = %q, want yamlutil prefix", err)
	}
}

func TestInputTooLarge(t *testing.T) {
	// not parallel: mutates MaxInputSize
	old := yamlutil.MaxInputSize
	yamlutil.MaxInputSize = 16
	defer func() { yamlutil.MaxInputSize = old }()

	err := yamlutil.Unmarshal([]byte("name: "+strings.Repeat("x", 32)), &ruleFile{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("error = %v, want ErrInputTooLarge", err)
	}
}
