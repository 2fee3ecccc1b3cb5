package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sku-reconciliation-service/internal/matching"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matching.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMatchingProfileDefaults(t *testing.T) {
	profile, err := LoadMatchingProfile("")
	require.NoError(t, err)
	assert.Zero(t, profile.Workers)
	assert.Equal(t, []string{"seller-sku"}, profile.Columns[matching.PlatformAmazon].SKU)

	profile, err = LoadMatchingProfile(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Len(t, profile.Columns, len(matching.AllPlatforms))
}

func TestLoadMatchingProfileOverrides(t *testing.T) {
	path := writeProfile(t, `
[matching]
workers = 6

[columns.ebay]
sku = ["Item SKU", "custom label"]

[columns.SellerCloud]
cost = ["Our Cost"]
`)

	profile, err := LoadMatchingProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 6, profile.Workers)

	ebay := profile.Columns[matching.PlatformEbay]
	assert.Equal(t, []string{"item sku", "custom label"}, ebay.SKU)
	assert.Equal(t, []string{"start price"}, ebay.Price)

	sc := profile.Columns[matching.PlatformSellerCloud]
	assert.Equal(t, []string{"our cost"}, sc.Cost)
	assert.Equal(t, []string{"productid", "product id"}, sc.SKU)
}

func TestLoadMatchingProfileRejectsUnknownPlatform(t *testing.T) {
	path := writeProfile(t, "[columns.walmart]\nsku = [\"item\"]\n")
	_, err := LoadMatchingProfile(path)
	assert.ErrorIs(t, err, matching.ErrUnknownPlatform)
}

func TestLoadMatchingProfileInvalidToml(t *testing.T) {
	path := writeProfile(t, "[matching\nworkers = ")
	_, err := LoadMatchingProfile(path)
	assert.Error(t, err)
}
