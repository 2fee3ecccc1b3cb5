package matching

import "strings"

// channelPrefixes are listing prefixes that sales channels prepend to the
// manufacturer's identifier. At most one is removed, first hit wins.
var channelPrefixes = []string{
	"EMG-", "SHU-", "BOSS-", "MCK-", "GGACC-", "1SV-",
	"AA-",
	"360H-", "8SI-",
}

// channelSuffixes are folio suffixes used on Amazon listings.
var channelSuffixes = []string{"-FOL", "-FOLIOS", "-FOLIO"}

// ExtractCore strips one known channel prefix and one known suffix from a
// normalized SKU.
func ExtractCore(sku string) string {
	if sku == "" {
		return ""
	}
	core := sku
	for _, p := range channelPrefixes {
		if strings.HasPrefix(core, p) {
			core = core[len(p):]
			break
		}
	}
	for _, s := range channelSuffixes {
		if strings.HasSuffix(core, s) {
			core = core[:len(core)-len(s)]
			break
		}
	}
	return trimOuterHyphen(core)
}
