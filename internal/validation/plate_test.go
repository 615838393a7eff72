package validation

import "testing"

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		name  string
		plate string
		want  string
	}{
		{
			name:  "lowercase with spaces",
			plate: "а 123 ве 777",
			want:  "А123ВЕ777",
		},
		{
			name:  "lowercase",
			plate: "а123ве777",
			want:  "А123ВЕ777",
		},
		{
			name:  "already normalized",
			plate: "А123ВЕ777",
			want:  "А123ВЕ777",
		},
		{
			name:  "empty",
			plate: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePlate(tt.plate)
			if got != tt.want {
				t.Fatalf("NormalizePlate(%q) = %q, want %q", tt.plate, got, tt.want)
			}

			again := NormalizePlate(got)
			if again != got {
				t.Fatalf("NormalizePlate is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestIsValidPlate(t *testing.T) {
	tests := []struct {
		name  string
		plate string
		valid bool
	}{
		{
			name:  "valid two-digit region",
			plate: "А123ВЕ77",
			valid: true,
		},
		{
			name:  "valid three-digit region",
			plate: "А123ВЕ777",
			valid: true,
		},
		{
			name:  "valid lowercase with spaces",
			plate: "а 123 ве 777",
			valid: true,
		},
		{
			name:  "letter not allowed on plates",
			plate: "Я123ВЕ777",
			valid: false,
		},
		{
			name:  "latin letters",
			plate: "A123BC777",
			valid: false,
		},
		{
			name:  "too short",
			plate: "А123В77",
			valid: false,
		},
		{
			name:  "empty string",
			plate: "",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidPlate(tt.plate)
			if got != tt.valid {
				t.Fatalf("IsValidPlate(%q) = %v, want %v", tt.plate, got, tt.valid)
			}
		})
	}
}
