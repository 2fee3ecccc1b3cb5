package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"sku-reconciliation-service/internal/matching"
)

// ColumnAliases lists the accepted header names for each field of a platform
// export, tried in order.
type ColumnAliases struct {
	SKU       []string `toml:"sku"`
	Price     []string `toml:"price"`
	Cost      []string `toml:"cost"`
	Condition []string `toml:"condition"`
}

// MatchingProfile tunes imports and runs
type MatchingProfile struct {
	Workers int                                 `toml:"workers"`
	Columns map[matching.Platform]ColumnAliases `toml:"-"`
}

type profileFile struct {
	Matching struct {
		Workers int `toml:"workers"`
	} `toml:"matching"`
	Columns map[string]ColumnAliases `toml:"columns"`
}

// DefaultColumnAliases returns the header names of each channel's own export
func DefaultColumnAliases() map[matching.Platform]ColumnAliases {
	return map[matching.Platform]ColumnAliases{
		matching.PlatformAmazon: {
			SKU:   []string{"seller-sku"},
			Price: []string{"price"},
		},
		matching.PlatformEbay: {
			SKU:   []string{"custom label (sku)", "custom label"},
			Price: []string{"start price"},
		},
		matching.PlatformInflow: {
			SKU:   []string{"name", "product name"},
			Price: []string{"unitprice", "unit price"},
			Cost:  []string{"cost"},
		},
		matching.PlatformReverb: {
			SKU:       []string{"sku"},
			Price:     []string{"price"},
			Condition: []string{"condition"},
		},
		matching.PlatformShopify: {
			SKU:   []string{"variant sku"},
			Price: []string{"variant price"},
			Cost:  []string{"variant cost"},
		},
		matching.PlatformSellerCloud: {
			SKU:   []string{"productid", "product id"},
			Price: []string{"siteprice", "site price"},
			Cost:  []string{"sitecost", "site cost"},
		},
	}
}

// DefaultMatchingProfile returns the built-in profile
func DefaultMatchingProfile() *MatchingProfile {
	return &MatchingProfile{Columns: DefaultColumnAliases()}
}

// LoadMatchingProfile reads a TOML profile. An empty path or a missing file
// yields the defaults. Column lists in the file replace the default list for
// that field only.
func LoadMatchingProfile(path string) (*MatchingProfile, error) {
	profile := DefaultMatchingProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return profile, nil
		}
		return nil, fmt.Errorf("failed to read matching profile: %w", err)
	}

	var file profileFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse matching profile: %w", err)
	}

	profile.Workers = file.Matching.Workers
	for name, override := range file.Columns {
		platform, err := matching.ParsePlatform(name)
		if err != nil {
			return nil, fmt.Errorf("matching profile columns: %w", err)
		}
		profile.Columns[platform] = mergeAliases(profile.Columns[platform], override)
	}

	return profile, nil
}

func mergeAliases(base, override ColumnAliases) ColumnAliases {
	pick := func(def, over []string) []string {
		if len(over) == 0 {
			return def
		}
		out := make([]string, len(over))
		for i, h := range over {
			out[i] = strings.ToLower(strings.TrimSpace(h))
		}
		return out
	}
	return ColumnAliases{
		SKU:       pick(base.SKU, override.SKU),
		Price:     pick(base.Price, override.Price),
		Cost:      pick(base.Cost, override.Cost),
		Condition: pick(base.Condition, override.Condition),
	}
}
