package assets

import (
	"errors"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		// Valid names
		{name: "simple name", input: "light"},
		{name: "name with hyphen", input: "solarized-dark"},
		{name: "name with underscore", input: "my_theme"},
		{name: "mixed case with numbers", input: "Theme2"},

		// Invalid names
		{name: "empty name", input: "", wantErr: ErrInvalidAssetName},
		{name: "forward slash", input: "themes/minimal", wantErr: ErrInvalidAssetName},
		{name: "backslash", input: "themes\\minimal", wantErr: ErrInvalidAssetName},
		{name: "parent traversal", input: "..", wantErr: ErrInvalidAssetName},
		{name: "extension", input: "minimal.css", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssetName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestKind_Valid(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{KindPalette, KindTheme, KindBase, KindMath} {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
	}
	for _, k := range []Kind{"", "templates", "../palettes"} {
		if k.Valid() {
			t.Errorf("%q should be invalid", k)
		}
	}
}

func TestValidate_RejectsUnknownKind(t *testing.T) {
	t.Parallel()

	if err := validate("fonts", "x"); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("validate() error = %v, want ErrInvalidKind", err)
	}
}
