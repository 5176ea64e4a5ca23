package geo

import (
	"strings"
	"sync"

	"github.com/biter777/countries"
)

var (
	codesOnce sync.Once
	byCode    map[string]countries.CountryCode
)

// loadCodes indexes the dataset by ISO alpha-2 and alpha-3 code only. Names, aliases and
// informal codes such as "UK" are deliberately not matched.
func loadCodes() {
	byCode = make(map[string]countries.CountryCode)
	for _, c := range countries.All() {
		if !c.IsValid() {
			continue
		}
		if a2 := c.Alpha2(); a2 != "" {
			byCode[a2] = c
		}
		if a3 := c.Alpha3(); a3 != "" {
			byCode[a3] = c
		}
	}
}

// CountryName resolves an ISO 3166-1 alpha-2 or alpha-3 code (any case) to the
// country's English short name.
func CountryName(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}

	codesOnce.Do(loadCodes)

	c, ok := byCode[code]
	if !ok {
		return "", false
	}
	return c.String(), true
}
