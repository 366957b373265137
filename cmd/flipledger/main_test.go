package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"flipledger/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buildFile = `{
	"components": {
		"cpu": {"name": "Ryzen 5 3600", "brand": "AMD", "price": 55},
		"gpu": {"name": "RX 6600", "brand": "Sapphire", "price": 175},
		"ram": {"name": "Vengeance 16GB", "brand": "Corsair", "price": 48},
		"motherboard": {"name": "B450", "brand": "MSI", "price": 0},
		"psu": {"name": "CV550", "brand": "Corsair", "price": 0},
		"case": {"name": "H510", "brand": "NZXT", "price": 0}
	},
	"extra_costs": 180,
	"target_sell_price": 600,
	"extra_profit": 60,
	"list_date": "2024-10-01",
	"specs": {"cpu": {"cores": "6"}}
}`

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLI(t, dataDir, args...)
	return out, err
}

func runCLI(t *testing.T, dataDir string, args ...string) (string, *cli, error) {
	t.Helper()
	root, c := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-dir", dataDir, "--log-level", "error"}, args...))
	err := execute(root, c)
	return out.String(), c, err
}

func TestCLI_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "build.json")
	require.NoError(t, os.WriteFile(file, []byte(buildFile), 0o644))

	out, err := run(t, dir, "create", "--file", file, "--json")
	require.NoError(t, err)
	var created domain.BuildView
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "458.00", created.TotalPrice)
	sku := strconv.Itoa(created.SKU)

	out, err = run(t, dir, "show", sku)
	require.NoError(t, err)
	assert.Contains(t, out, "Ryzen 5 3600 (AMD)")
	assert.Contains(t, out, "cores: 6")
	assert.Contains(t, out, "£202.00")

	_, err = run(t, dir, "costs", sku, "200")
	require.NoError(t, err)

	out, err = run(t, dir, "sell", sku, "600", "--date", "2024-11-02", "--json")
	require.NoError(t, err)
	var sold domain.BuildView
	require.NoError(t, json.Unmarshal([]byte(out), &sold))
	require.NotNil(t, sold.TotalProfit)
	assert.Equal(t, "182.00", *sold.TotalProfit)

	out, err = run(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, sku)
	assert.Contains(t, out, "2024-11-02")

	_, err = run(t, dir, "delete", sku)
	require.NoError(t, err)
	_, err = run(t, dir, "show", sku)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCLI_Rejects(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "show", "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, dir, "sell", "1234", "lots")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, dir, "create")
	assert.Error(t, err)
}

func TestCLI_ImageRequiresBuild(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "front.png")
	require.NoError(t, os.WriteFile(img, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, 0o644))
	_, err := run(t, dir, "image", "1234", img)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCLI_ClosesServicesWhenCommandFails(t *testing.T) {
	dir := t.TempDir()
	_, c, err := runCLI(t, dir, "--store", "sqlite", "show", "4242")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NotNil(t, c.svc)
	require.NotNil(t, c.svc.DB)

	sqlDB, err := c.svc.DB.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "pool should be closed after a failed command")
}
