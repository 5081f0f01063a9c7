package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhuweiyou/addressscanner"
)

// moduleBytes holds "48 8B 05" at +2 and "90 90" at +0 and +14.
var moduleBytes = []byte{
	0x90, 0x90, 0x48, 0x8B, 0x05, 0x10, 0x20, 0x30,
	0x40, 0x48, 0x8B, 0xD9, 0xC3, 0xE8, 0x90, 0x90,
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	noColor = true
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return cmd, &out
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRootCommand_Subcommands(t *testing.T) {
	for _, name := range []string{"compile", "scan", "resolve", "ps"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	flag := rootCmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, flag)
	assert.Equal(t, "warn", flag.DefValue)
}

func TestRunCompile(t *testing.T) {
	cmd, out := newTestCommand()

	require.NoError(t, runCompile(cmd, []string{"48", "8b", "05", "**", "?"}))
	assert.Equal(t, "48 8B 05 ? ?\nlength: 5\n", out.String())

	err := runCompile(cmd, []string{"48 8G"})
	assert.ErrorIs(t, err, addressscanner.ErrInvalidToken)
}

func TestRunCompile_Text(t *testing.T) {
	compileText = true
	t.Cleanup(func() { compileText = false })

	cmd, out := newTestCommand()
	require.NoError(t, runCompile(cmd, []string{"We?Chat"}))
	assert.Equal(t, "57 65 ? 43 68 61 74\nlength: 7\n", out.String())
}

func TestSignatureFromArgs(t *testing.T) {
	assert.Equal(t, "48 8B ??", signatureFromArgs([]string{"48", "8B", "??"}, false, 0))
	assert.Equal(t, "61 20 62", signatureFromArgs([]string{"a", "b"}, true, 0))
	assert.Equal(t, "61 ?? ??", signatureFromArgs([]string{"a"}, true, 3))
}

func TestParseAddress(t *testing.T) {
	addr, err := parseAddress("0x140000000")
	require.NoError(t, err)
	assert.Equal(t, addressscanner.Address(0x140000000), addr)

	addr, err = parseAddress("4096")
	require.NoError(t, err)
	assert.Equal(t, addressscanner.Address(4096), addr)

	_, err = parseAddress("0xZZ")
	assert.Error(t, err)
}

func TestTargetFlags_ExactlyOne(t *testing.T) {
	_, _, err := (&targetFlags{}).locator(context.Background())
	assert.Error(t, err)

	_, _, err = (&targetFlags{file: "a.exe", self: true}).locator(context.Background())
	assert.Error(t, err)

	_, name, err := (&targetFlags{file: "a.exe"}).locator(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a.exe", name)

	_, _, err = (&targetFlags{file: "a.exe", base: "nope"}).locator(context.Background())
	assert.Error(t, err)
}

func TestRunScan_File(t *testing.T) {
	path := writeFile(t, "module.bin", moduleBytes)
	scanTarget = targetFlags{file: path, base: "0x140000000"}
	t.Cleanup(func() {
		scanTarget = targetFlags{}
		scanAll = false
	})

	cmd, out := newTestCommand()
	require.NoError(t, runScan(cmd, []string{"48 8B 05 ? ? ? ? 48 8B D9"}))
	assert.Equal(t, "0x140000002\n", out.String())

	scanAll = true
	cmd, out = newTestCommand()
	require.NoError(t, runScan(cmd, []string{"90", "90"}))
	assert.Equal(t, "0x140000000 (+0x0)\n0x14000000E (+0xE)\n", out.String())

	cmd, _ = newTestCommand()
	err := runScan(cmd, []string{"CC CC"})
	assert.ErrorIs(t, err, addressscanner.ErrNotFound)
}

func writeRecords(t *testing.T) string {
	return writeFile(t, "records.yaml", []byte(`records:
  - name: global_ptr
    pattern: "48 8B 05 ?? ?? ?? ?? 48 8B D9"
    offset: 3
  - name: nops
    pattern: "90 90"
    offset: -1
  - name: missing
    pattern: "CC CC"
`))
}

func setupResolve(t *testing.T, format string) {
	resolveTarget = targetFlags{file: writeFile(t, "module.bin", moduleBytes), base: "0x140000000"}
	resolveRecords = writeRecords(t)
	resolveFormat = format
	t.Cleanup(func() {
		resolveTarget = targetFlags{}
		resolveRecords = ""
		resolveFormat = "table"
		resolveUnique = false
		resolveStrict = false
	})
}

func TestRunResolve_JSON(t *testing.T) {
	setupResolve(t, "json")

	cmd, out := newTestCommand()
	require.NoError(t, runResolve(cmd, nil))

	var outputs []resolutionOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &outputs))
	require.Len(t, outputs, 3)

	assert.Equal(t, resolutionOutput{
		Name:    "global_ptr",
		Pattern: "48 8B 05 ?? ?? ?? ?? 48 8B D9",
		Offset:  3,
		Policy:  "first",
		Address: "0x140000005",
	}, outputs[0])
	assert.Equal(t, "0x13FFFFFFF", outputs[1].Address)
	assert.Equal(t, "pattern not found", outputs[2].Error)
	assert.Empty(t, outputs[2].Address)
}

func TestRunResolve_UniqueAndStrict(t *testing.T) {
	setupResolve(t, "json")
	resolveUnique = true

	cmd, out := newTestCommand()
	require.NoError(t, runResolve(cmd, nil))

	var outputs []resolutionOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &outputs))
	assert.Equal(t, "unique", outputs[0].Policy)
	assert.Equal(t, "0x140000005", outputs[0].Address)
	assert.Contains(t, outputs[1].Error, "more than one pattern found")

	resolveStrict = true
	cmd, _ = newTestCommand()
	err := runResolve(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 records did not resolve")
}

func TestRunResolve_Table(t *testing.T) {
	setupResolve(t, "table")

	cmd, out := newTestCommand()
	require.NoError(t, runResolve(cmd, nil))

	output := out.String()
	assert.Contains(t, output, "Name")
	assert.Contains(t, output, "global_ptr")
	assert.Contains(t, output, "0x140000005")
	assert.Contains(t, output, "pattern not found")
}

func TestRunResolve_Errors(t *testing.T) {
	setupResolve(t, "xml")

	cmd, _ := newTestCommand()
	err := runResolve(cmd, nil)
	assert.ErrorContains(t, err, "unknown output format")

	resolveRecords = filepath.Join(t.TempDir(), "missing.yaml")
	err = runResolve(cmd, nil)
	assert.ErrorContains(t, err, "loading records")
}

func TestFormatForConsole(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "WeChat", 50, "WeChat"},
		{"escaped", "a\nb\tc\r", 50, `a\nb\tc\r`},
		{"truncated", "abcdefghij", 8, "abcde..."},
		{"tiny limit", "abcdefghij", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatForConsole(tt.input, tt.maxLen))
		})
	}
}

func TestRunScan_RegionsSelf(t *testing.T) {
	scanTarget = targetFlags{self: true}
	scanRegions = true
	scanText = true
	scanLimit = 1
	t.Cleanup(func() {
		scanTarget = targetFlags{}
		scanRegions = false
		scanText = false
		scanLimit = 0
	})

	cmd, out := newTestCommand()
	err := runScan(cmd, []string{"sigscan-region-marker"})
	if err != nil {
		t.Skipf("process memory is not readable here: %v", err)
	}
	assert.Contains(t, out.String(), "sigscan-region-marker")
}

func TestTargetFlags_RegionPIDs(t *testing.T) {
	pids, err := (&targetFlags{pid: 42}).regionPIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint32{42}, pids)

	pids, err = (&targetFlags{self: true}).regionPIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint32{uint32(os.Getpid())}, pids)

	_, err = (&targetFlags{file: "a.exe"}).regionPIDs(context.Background())
	assert.Error(t, err)

	_, err = (&targetFlags{}).regionPIDs(context.Background())
	assert.Error(t, err)
}
