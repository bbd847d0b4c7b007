/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/josephgoksu/muse/internal/agent"
	"github.com/josephgoksu/muse/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var askPlain bool

var askCmd = &cobra.Command{
	Use:   "ask <persona> <query...>",
	Short: "Ask a persona a single question",
	Long: `Run one persona pipeline and print the answer.

Examples:
  muse ask kanye write a verse about hustling
  muse ask taylor "what should I write about autumn?"
  muse ask taylor --plain autumn | tee answer.txt`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "print the answer without styling")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	pl, err := a.agents.Get(args[0])
	if err != nil {
		return err
	}

	cred, err := a.credential(cmd.Context())
	if err != nil {
		return err
	}

	res, err := pl.Run(cmd.Context(), agent.PromptRequest{
		Credential: cred,
		Query:      strings.Join(args[1:], " "),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askPlain || !isTerminal(out) {
		fmt.Fprintln(out, res.Content)
		return nil
	}
	fmt.Fprintln(out, ui.Answer(pl.Persona().Identity, res.Content))
	fmt.Fprintln(out, ui.StyleSubtle.Render(fmt.Sprintf("%s · %s", a.llm.Model, res.Duration.Round(time.Millisecond))))
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
