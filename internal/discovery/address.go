package discovery

import (
	"regexp"
	"strings"
)

// postalCodeRE matches a leading Austrian/German postal code (PLZ).
var postalCodeRE = regexp.MustCompile(`^\d{4,5}\s*`)

// ExtractCity pulls the city name out of a formatted address string.
//
// It assumes the "Street Nr, PLZ City, Country" convention used by
// Google-formatted Austrian addresses and takes the second-to-last
// comma-separated segment, stripping a leading postal code. Addresses in
// other conventions yield a best-effort or empty result.
func ExtractCity(address string) string {
	if address == "" {
		return ""
	}

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 {
		return ""
	}

	cityPart := parts[len(parts)-2]
	return strings.TrimSpace(postalCodeRE.ReplaceAllString(cityPart, ""))
}
