package validation

import (
	"errors"
	"strings"
	"testing"
)

type uploadLinkInput struct {
	ID       string `validate:"omitempty,assetid" json:"id"`
	Filename string `validate:"required,max=255,filename" json:"filename"`
	Bitrate  int    `validate:"required,gt=0" json:"bitrate"`
}

func TestValidateStruct_UploadLinkInput(t *testing.T) {
	tests := []struct {
		name string
		in   uploadLinkInput
		want map[string]string
	}{
		{
			name: "all good",
			in:   uploadLinkInput{ID: "song_42-b", Filename: "track.mp3", Bitrate: 192},
		},
		{
			name: "id is optional",
			in:   uploadLinkInput{Filename: "Live at Home.flac", Bitrate: 128},
		},
		{
			name: "id with path separator and no bitrate",
			in:   uploadLinkInput{ID: "../etc", Filename: "track.mp3"},
			want: map[string]string{"id": "assetid", "bitrate": "required"},
		},
		{
			name: "filename with directory",
			in:   uploadLinkInput{Filename: "dir/track.mp3", Bitrate: 128},
			want: map[string]string{"filename": "filename"},
		},
		{
			name: "filename without extension",
			in:   uploadLinkInput{Filename: "track", Bitrate: 128},
			want: map[string]string{"filename": "filename"},
		},
		{
			name: "negative bitrate, missing filename",
			in:   uploadLinkInput{Bitrate: -1},
			want: map[string]string{"filename": "required", "bitrate": "gt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.in)
			if (err != nil) != (tt.want != nil) {
				t.Fatalf("ValidateStruct() err = %v, want failure %v", err, tt.want != nil)
			}
			got := FieldErrors(err)
			if len(got) != len(tt.want) {
				t.Fatalf("FieldErrors() = %v; want %v", got, tt.want)
			}
			for field, tag := range tt.want {
				if got[field] != tag {
					t.Errorf("field %q: got %q, want %q", field, got[field], tag)
				}
			}
		})
	}
}

func TestFieldNamesFallBackToGoName(t *testing.T) {
	type inner struct {
		Foo string `validate:"required" json:"foo"`
	}
	type outer struct {
		In    *inner `validate:"required" json:"inner"`
		Bar   int    `validate:"required"`
		Skip  string `validate:"required" json:"-"`
		Empty string `validate:"required" json:",omitempty"`
	}

	got := FieldErrors(ValidateStruct(outer{}))
	for _, f := range []string{"inner", "Bar", "Skip", "Empty"} {
		if got[f] != "required" {
			t.Errorf("%s: got %q, want required (all: %v)", f, got[f], got)
		}
	}

	got = FieldErrors(ValidateStruct(outer{In: &inner{}}))
	if got["foo"] != "required" {
		t.Errorf("nested foo: got %q, want required", got["foo"])
	}
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	if FieldErrors(nil) != nil {
		t.Error("FieldErrors(nil) should be nil")
	}
	if FieldErrors(errors.New("boom")) != nil {
		t.Error("FieldErrors of a plain error should be nil")
	}
}

func TestIsValidAssetID(t *testing.T) {
	tests := map[string]bool{
		"abc":                    true,
		"Song_01-final":          true,
		strings.Repeat("a", 128): true,
		strings.Repeat("a", 129): false,
		"":                       false,
		"a/b":                    false,
		"a.b":                    false,
		"a b":                    false,
	}
	for id, want := range tests {
		if got := IsValidAssetID(id); got != want {
			t.Errorf("IsValidAssetID(%q) = %v; want %v", id, got, want)
		}
	}
}
