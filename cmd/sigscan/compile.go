package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhuweiyou/addressscanner"
)

var compileText bool

var compileCmd = &cobra.Command{
	Use:   "compile <signature>",
	Short: "Validate a signature and print its canonical form",
	Long: `Compile parses a signature and prints it in canonical form (upper case
hex bytes, "?" for wildcards) followed by its length in bytes.

With --text the argument is treated as plain text and converted to a
signature first; "?" in the text becomes a wildcard.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().BoolVar(&compileText, "text", false, "Treat the argument as text instead of hex")
}

func runCompile(cmd *cobra.Command, args []string) error {
	signature := signatureFromArgs(args, compileText, 0)

	pattern, err := addressscanner.Compile(signature)
	if err != nil {
		return fmt.Errorf("compiling %q: %w", signature, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", pattern)
	fmt.Fprintf(cmd.OutOrStdout(), "length: %d\n", pattern.Len())
	return nil
}

// signatureFromArgs joins the arguments so signatures may be passed
// unquoted. In text mode they are joined with spaces and converted, padded
// with wildcards to minLength.
func signatureFromArgs(args []string, text bool, minLength int) string {
	joined := strings.Join(args, " ")
	if text {
		return addressscanner.StringToPattern(joined, minLength)
	}
	return joined
}
