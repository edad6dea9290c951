package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Lookup(t *testing.T) {
	code, out, _ := runCLI(t, "", "70:B3:D5:E7:4F:81", "12:34:56:78:9A:BC", "00:0C:29:01:02:03")

	assert.Equal(t, 0, code)
	assert.Equal(t, "Ieee Registration Authority\n\nVMware, Inc.\n", out)
}

func TestRun_Stdin(t *testing.T) {
	code, out, errOut := runCLI(t, "b8:27:eb:00:00:01\n\nnot-a-mac\n")

	assert.Equal(t, 0, code)
	assert.Equal(t, "Raspberry Pi Foundation\n\n", out)
	assert.Contains(t, errOut, "not-a-mac")
}

func TestRun_Verbose(t *testing.T) {
	code, out, _ := runCLI(t, "", "-v", "00:1C:B4:00:00:01")

	assert.Equal(t, 0, code)
	assert.Equal(t, "00:1C:B4\tMA-L\tPrivate\tprivate\n", out)
}

func TestRun_Manufacturer(t *testing.T) {
	code, out, _ := runCLI(t, "", "-manufacturer", "apple, inc")

	assert.Equal(t, 0, code)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5)

	code, _, _ = runCLI(t, "", "-manufacturer", "Nobody")
	assert.Equal(t, 1, code)
}

func TestRun_Search(t *testing.T) {
	code, out, _ := runCLI(t, "", "-search", "vmware")

	assert.Equal(t, 0, code)
	assert.Equal(t, "VMware, Inc.\t2\n", out)
}

func TestRun_Stats(t *testing.T) {
	code, out, _ := runCLI(t, "", "-stats")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "records: 29\n")
	assert.Contains(t, out, "warnings: 0\n")
}

func TestRun_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.csv")
	require.NoError(t, os.WriteFile(path, []byte("oui,companyName\nAA:BB:CC,Custom Vendor\n"), 0o644))

	code, out, _ := runCLI(t, "", "-file", path, "aa-bb-cc-00-00-00")

	assert.Equal(t, 0, code)
	assert.Equal(t, "Custom Vendor\n", out)

	code, _, errOut := runCLI(t, "", "-dir", t.TempDir(), "aa-bb-cc-00-00-00")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "open db")
}
