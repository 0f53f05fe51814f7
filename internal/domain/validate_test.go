package domain

import (
	"errors"
	"slices"
	"testing"
)

func TestValidateRequiredProfileComplete(t *testing.T) {
	p := Profile{FirstName: "Ada", LastName: "Lovelace", DOB: "1990-01-01", Address: "1 rue de Rivoli", Phone: "0102030405"}
	if err := ValidateRequired(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRequiredReportsEveryMissingField(t *testing.T) {
	u := ProfileUpdate{
		Profile: Profile{FirstName: "Ada", DOB: "1990-01-01", Address: "1 rue de Rivoli"},
	}

	err := ValidateRequired(u)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}

	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %T, want *MissingFieldError", err)
	}

	for _, f := range []string{"lastName", "phone", "email"} {
		if !slices.Contains(missing.Fields, f) {
			t.Fatalf("missing fields %v do not contain %q", missing.Fields, f)
		}
	}
	if len(missing.Fields) != 3 {
		t.Fatalf("missing fields = %v, want 3 entries", missing.Fields)
	}
}

func TestIdentitySplitName(t *testing.T) {
	tests := []struct {
		name        string
		first, last string
	}{
		{name: "", first: "", last: ""},
		{name: "Iheb", first: "Iheb", last: ""},
		{name: "Iheb Zaidi", first: "Iheb", last: "Zaidi"},
		{name: "  Jean  de la Fontaine ", first: "Jean", last: "de la Fontaine"},
	}

	for _, tt := range tests {
		first, last := Identity{Name: tt.name}.SplitName()
		if first != tt.first || last != tt.last {
			t.Fatalf("SplitName(%q) = %q, %q; want %q, %q", tt.name, first, last, tt.first, tt.last)
		}
	}
}
