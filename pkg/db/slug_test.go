package db

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Kycklinggryta", want: "kycklinggryta"},
		{name: "swedish diacritics", in: "Räksmörgås med ägg", want: "raksmorgas-med-agg"},
		{name: "punctuation dropped", in: "Pasta, snabb & god!", want: "pasta-snabb-god"},
		{name: "multiple spaces", in: "En   riktigt  god soppa", want: "en-riktigt-god-soppa"},
		{name: "underscores", in: "fisk_och_skaldjur", want: "fisk-och-skaldjur"},
		{name: "leading and trailing junk", in: "  -Gryta-  ", want: "gryta"},
		{name: "digits kept", in: "5-minuters frukost", want: "5-minuters-frukost"},
		{name: "only junk falls back", in: "!!!", want: "recept"},
		{name: "empty falls back", in: "", want: "recept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
