package geo

import "testing"

func TestCountryName(t *testing.T) {
	tests := []struct {
		code   string
		want   string
		wantOK bool
	}{
		{"us", "United States", true},
		{"US", "United States", true},
		{"usa", "United States", true},
		{"gb", "United Kingdom", true},
		{"uk", "", false},
		{"united states", "", false},
		{"zz", "", false},
		{"", "", false},
		{"  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := CountryName(tt.code)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CountryName(%q) = (%q, %v), want (%q, %v)", tt.code, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCountryName_KnownCodesResolve(t *testing.T) {
	for _, code := range []string{"de", "fr", "cn", "ru", "br", "nl"} {
		if name, ok := CountryName(code); !ok || name == "" {
			t.Errorf("CountryName(%q) = (%q, %v), want a name", code, name, ok)
		}
	}
}
