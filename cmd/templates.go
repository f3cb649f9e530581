package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"debt-coach/service"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the fallback nudge templates",
}

var templatesVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every fallback template is number-free",
	RunE:  runTemplatesVerify,
}

func init() {
	templatesCmd.AddCommand(templatesVerifyCmd)
	rootCmd.AddCommand(templatesCmd)
}

// runTemplatesVerify scans every fallback template with the same token
// scanner the validator applies to generated nudges. Templates are the
// safety net for rejected generations, so any numeric token here is a bug.
func runTemplatesVerify(cmd *cobra.Command, args []string) error {
	validator := service.NewValidator()

	var failures int
	for category, candidates := range service.FallbackTemplates() {
		for i, c := range candidates {
			text := c.Title + " " + c.Message
			if tokens := validator.ScanNumericTokens(text); len(tokens) > 0 {
				failures++
				fmt.Fprintf(os.Stderr, "FAIL %s[%d]: numeric tokens %v in %q\n", category, i, tokens, c.Message)
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d template(s) contain numeric tokens", failures)
	}

	fmt.Println("all fallback templates are number-free")
	return nil
}
