package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zhuweiyou/addressscanner"
)

var (
	scanTarget  targetFlags
	scanAll     bool
	scanText    bool
	scanRegions bool
	scanLimit   int
	scanMin     string
	scanMax     string
	scanLength  int
)

var scanCmd = &cobra.Command{
	Use:   "scan <signature>",
	Short: "Find a signature in a module or process",
	Long: `Scan searches the selected target for a signature and prints the
address of the first match, or of every match with --all.

With --regions every readable region of the process is walked instead of
only its primary module, and each match is printed with its bytes. When
--process names several running processes, all of them are walked.`,
	Example: `  sigscan scan --file game.exe "48 8B 05 ?? ?? ?? ?? 48 8B D9"
  sigscan scan --process game.exe --all "E8 ? ? ? ? 90"
  sigscan scan --process WeChatAppEx.exe --regions --text --length 64 "we?ha?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanTarget.register(scanCmd.Flags())
	scanCmd.Flags().BoolVar(&scanAll, "all", false, "Print every match instead of the first")
	scanCmd.Flags().BoolVar(&scanText, "text", false, "Treat the argument as text instead of hex")
	scanCmd.Flags().BoolVar(&scanRegions, "regions", false, "Walk every readable region of the process")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "Stop after this many matches with --regions (0 = no limit)")
	scanCmd.Flags().IntVar(&scanLength, "length", 0, "Pad --text signatures with wildcards to this many bytes")
	scanCmd.Flags().StringVar(&scanMin, "min-address", "0x0", "Lowest address walked with --regions")
	scanCmd.Flags().StringVar(&scanMax, "max-address", "0x7FFFFFFFFFFF", "Highest address walked with --regions")
}

func runScan(cmd *cobra.Command, args []string) error {
	signature := signatureFromArgs(args, scanText, scanLength)
	pattern, err := addressscanner.Compile(signature)
	if err != nil {
		return fmt.Errorf("compiling %q: %w", signature, err)
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if scanRegions {
		return runRegionScan(ctx, cmd, pattern)
	}

	locator, name, err := scanTarget.locator(ctx)
	if err != nil {
		return err
	}

	region, err := locator.LocatePrimaryModule()
	if err != nil {
		return &addressscanner.LocatorError{Err: err}
	}
	logger.Info().
		Str("target", name).
		Str("base", region.Base.String()).
		Int("size", region.Size()).
		Str("pattern", pattern.String()).
		Msg("scanning module")

	st := newStyles(!noColor)
	out := cmd.OutOrStdout()

	if !scanAll {
		addr, err := addressscanner.ScanFirst(region, pattern)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, st.address.Sprint(addr))
		return nil
	}

	addrs, err := addressscanner.ScanAll(region, pattern)
	if err != nil {
		return err
	}
	for _, addr := range addrs {
		fmt.Fprintf(out, "%s %s\n", st.address.Sprint(addr),
			st.muted.Sprintf("(+0x%X)", uint64(addr-region.Base)))
	}
	return nil
}

func runRegionScan(ctx context.Context, cmd *cobra.Command, pattern *addressscanner.Pattern) error {
	pids, err := scanTarget.regionPIDs(ctx)
	if err != nil {
		return err
	}
	minAddr, err := parseAddress(scanMin)
	if err != nil {
		return err
	}
	maxAddr, err := parseAddress(scanMax)
	if err != nil {
		return err
	}

	st := newStyles(!noColor)
	out := cmd.OutOrStdout()
	totalMatches := 0

	for _, pid := range pids {
		if ctx.Err() != nil {
			break
		}
		if scanLimit > 0 && totalMatches >= scanLimit {
			break
		}

		matches, err := scanProcess(ctx, pid, addressscanner.ScanOptions{
			Signature:  pattern.String(),
			MinAddress: minAddr,
			MaxAddress: maxAddr,
		}, scanLimit-totalMatches)
		if err != nil {
			logger.Warn().Err(err).Uint32("pid", pid).Msg("failed to scan process")
			continue
		}

		if len(pids) > 1 {
			fmt.Fprintf(out, "%s\n", st.name.Sprintf("pid %d: %d matches", pid, len(matches)))
		}
		for _, match := range matches {
			fmt.Fprintf(out, "%s %s %s\n", st.address.Sprint(match.Address),
				match.Hex(), st.muted.Sprintf("'%s'", formatForConsole(match.Content(), 50)))
		}
		totalMatches += len(matches)
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		logger.Warn().Msg("scan interrupted")
	}
	logger.Info().Int("processes", len(pids)).Int("matches", totalMatches).Msg("scan finished")

	if totalMatches == 0 {
		return addressscanner.ErrNotFound
	}
	return nil
}

// scanProcess walks every readable region of one process. A positive
// limit stops the walk after that many matches.
func scanProcess(ctx context.Context, pid uint32, opts addressscanner.ScanOptions, limit int) ([]addressscanner.Match, error) {
	scanner, err := addressscanner.NewScanner(pid)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}
	defer scanner.Close()

	var matches []addressscanner.Match
	opts.Handler = func(match addressscanner.Match) bool {
		matches = append(matches, match)
		return limit <= 0 || len(matches) < limit
	}

	err = scanner.Scan(ctx, opts)
	if errors.Is(err, context.Canceled) {
		return matches, nil
	}
	return matches, err
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
