package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/josephgoksu/muse/internal/llm"
	"github.com/josephgoksu/muse/internal/persona"
	"github.com/spf13/viper"
)

var errBadConfig = errors.New("invalid configuration")

// PrintError prints an error message without exiting, allowing for recovery.
// With --verbose the underlying technical error is printed instead.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", technicalErr)
	} else {
		fmt.Fprintln(os.Stderr, userMsg)
	}
}

// userMessage maps known failures to a short message for the terminal.
func userMessage(err error) string {
	switch {
	case errors.Is(err, persona.ErrUnknownPersona):
		return "Unknown persona. Run 'muse personas' to list the available ones."
	case errors.Is(err, llm.ErrMissingCredential):
		return "No API key configured. Set llm.apiKeys.<provider> or the provider's API key env var."
	case errors.Is(err, llm.ErrProvider), errors.Is(err, llm.ErrEmptyResponse):
		return "The language model provider failed to answer. Use --verbose for details."
	case errors.Is(err, errBadConfig):
		return "Configuration is invalid. Use --verbose for details."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
