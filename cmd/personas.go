package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/josephgoksu/muse/internal/persona"
	"github.com/josephgoksu/muse/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var personasJSON bool

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the available personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := persona.Load(appFs, viper.GetString("personas.dir"))
		if err != nil {
			return fmt.Errorf("load personas: %w", err)
		}

		summaries := make([]persona.Summary, 0, reg.Len())
		for _, p := range reg.List() {
			summaries = append(summaries, p.Summary())
		}

		out := cmd.OutOrStdout()
		if personasJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		}

		fmt.Fprintln(out, ui.StyleHeader.Render(fmt.Sprintf("%d personas", len(summaries))))
		fmt.Fprint(out, ui.PersonaTable(summaries).Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)
	personasCmd.Flags().BoolVar(&personasJSON, "json", false, "output as JSON")
}
