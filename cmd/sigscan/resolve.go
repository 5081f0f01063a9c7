package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zhuweiyou/addressscanner"
)

var (
	resolveTarget  targetFlags
	resolveRecords string
	resolveFormat  string
	resolveUnique  bool
	resolveStrict  bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve address records from a YAML file",
	Long: `Resolve loads named address records (signature plus offset) from a YAML
file and resolves each of them against the selected target:

  records:
    - name: render_loop
      pattern: "48 8B 05 ?? ?? ?? ?? 48 8B D9"
      offset: 3
      policy: unique   # first (default) or unique`,
	RunE: runResolve,
}

func init() {
	resolveTarget.register(resolveCmd.Flags())
	resolveCmd.Flags().StringVar(&resolveRecords, "records", "", "Path to the address record file")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "table", "Output format: table, json")
	resolveCmd.Flags().BoolVar(&resolveUnique, "unique", false, "Require a unique match for every record")
	resolveCmd.Flags().BoolVar(&resolveStrict, "strict", false, "Fail if any record does not resolve")
	_ = resolveCmd.MarkFlagRequired("records")
}

// resolutionOutput is the JSON form of one resolved record.
type resolutionOutput struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Offset  int64  `json:"offset"`
	Policy  string `json:"policy"`
	Address string `json:"address,omitempty"`
	Error   string `json:"error,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	records, err := addressscanner.LoadRecordsFile(resolveRecords)
	if err != nil {
		return fmt.Errorf("loading records from %s: %w", resolveRecords, err)
	}
	if resolveUnique {
		for i := range records {
			records[i].Policy = addressscanner.PolicyUnique
		}
	}

	ctx := cmdContext(cmd)
	locator, name, err := resolveTarget.locator(ctx)
	if err != nil {
		return err
	}

	registry := addressscanner.NewRegistry(addressscanner.NewResolver(locator),
		addressscanner.WithLogger(logger.With().Str("target", name).Logger()))
	if err := registry.RegisterAll(records); err != nil {
		return err
	}

	results := registry.ResolveAll(ctx)

	outputs := make([]resolutionOutput, len(results))
	failed := 0
	for i, res := range results {
		rec := records[i]
		outputs[i] = resolutionOutput{
			Name:    res.Name,
			Pattern: rec.Pattern,
			Offset:  rec.Offset,
			Policy:  rec.Policy.String(),
		}
		if res.Err != nil {
			outputs[i].Error = res.Err.Error()
			failed++
		} else {
			outputs[i].Address = res.Address.String()
		}
	}

	switch resolveFormat {
	case "json":
		err = outputResolutionsJSON(cmd, outputs)
	case "table":
		err = outputResolutionsTable(cmd, outputs)
	default:
		return fmt.Errorf("unknown output format: %s", resolveFormat)
	}
	if err != nil {
		return err
	}

	if resolveStrict && failed > 0 {
		return fmt.Errorf("%d of %d records did not resolve", failed, len(outputs))
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func outputResolutionsJSON(cmd *cobra.Command, outputs []resolutionOutput) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(outputs)
}

func outputResolutionsTable(cmd *cobra.Command, outputs []resolutionOutput) error {
	st := newStyles(!noColor)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Name\tPolicy\tOffset\tAddress\n")
	fmt.Fprintf(w, "----\t------\t------\t-------\n")

	for _, o := range outputs {
		result := st.address.Sprint(o.Address)
		if o.Error != "" {
			result = st.failure.Sprint(o.Error)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", st.name.Sprint(o.Name), o.Policy, o.Offset, result)
	}

	return nil
}
