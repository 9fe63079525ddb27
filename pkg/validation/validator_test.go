package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateStruct_Lattice(t *testing.T) {
	tests := []struct {
		name    string
		req     LatticeRequest
		wantErr string
	}{
		{"valid", LatticeRequest{Kind: "diamond", Size: 2, Out: "ice.icd"}, ""},
		{"unknown kind", LatticeRequest{Kind: "hexagonal", Size: 2, Out: "ice.icd"}, "Kind: must be one of"},
		{"zero size", LatticeRequest{Kind: "ring", Out: "ice.icd"}, "Size: field is required"},
		{"huge size", LatticeRequest{Kind: "ring", Size: 5000, Out: "ice.icd"}, "Size: must not exceed 4096"},
		{"no output", LatticeRequest{Kind: "ring", Size: 8}, "Out: field is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateStruct() = %v, want %q", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Error("Expected ErrInvalid in chain")
			}
		})
	}
}

func TestValidateStruct_Dope(t *testing.T) {
	if err := ValidateStruct(&DopeRequest{In: "a.icd", Out: "b.icd", Percent: 0.5}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateStruct(&DopeRequest{In: "a.icd", Out: "b.icd", Percent: -1}); err == nil {
		t.Error("Expected error for negative percent")
	}
	err := ValidateStruct(&DopeRequest{In: "a.icd", Out: "a.icd", Percent: 1})
	if err == nil || !strings.Contains(err.Error(), "must differ from In") {
		t.Errorf("ValidateStruct() = %v, want in-place rejection", err)
	}
}

func TestValidateStruct_ReportsAllFields(t *testing.T) {
	err := ValidateStruct(&EnsembleRequest{Percent: 80, Moves: -2, Workers: -1})
	if err == nil {
		t.Fatal("Expected errors")
	}
	for _, field := range []string{"In:", "OutDir:", "Percent:", "Moves:", "Replicas:", "Workers:"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error missing %s: %v", field, err)
		}
	}
}

func TestValidateStruct_Export(t *testing.T) {
	if err := ValidateStruct(&ExportRequest{In: "a.icd", Format: "xyz"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateStruct(&ExportRequest{In: "a.icd", Format: "pov"}); err == nil {
		t.Error("Expected error for unknown format")
	}
	if err := ValidateStruct(&DiffuseRequest{In: "a", Out: "b", Moves: -1}); err == nil {
		t.Error("Expected error for negative moves")
	}
}

func TestValidateStruct_Nil(t *testing.T) {
	if err := ValidateStruct(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("ValidateStruct(nil) = %v", err)
	}
}
