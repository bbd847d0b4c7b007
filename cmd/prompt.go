package cmd

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/muse/internal/fewshot"
	"github.com/josephgoksu/muse/internal/persona"
	"github.com/josephgoksu/muse/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var promptPlain bool

var promptCmd = &cobra.Command{
	Use:   "prompt <persona> <query...>",
	Short: "Print the assembled prompt without calling a provider",
	Long: `Print exactly what would be sent to the chat model for a persona and query.
No API key is needed and no request leaves the machine.

Examples:
  muse prompt kanye write a verse about hustling
  muse prompt taylor --plain autumn > prompt.txt`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := persona.Load(appFs, viper.GetString("personas.dir"))
		if err != nil {
			return fmt.Errorf("load personas: %w", err)
		}
		p, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		text, err := fewshot.Assemble(cmd.Context(), p, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if promptPlain || !isTerminal(out) {
			fmt.Fprintln(out, text)
			return nil
		}
		fmt.Fprintln(out, ui.Prompt(p.Identity, text))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().BoolVar(&promptPlain, "plain", false, "print the prompt without styling")
}
