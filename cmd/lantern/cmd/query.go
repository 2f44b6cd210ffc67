package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keystroke-labs/lantern/internal/complete"
)

// queryOutput is the JSON shape of a one-shot completion.
type queryOutput struct {
	Input         string        `json:"input"`
	HasCompletion bool          `json:"has_completion"`
	Completion    optionOutput  `json:"completion"`
	Alternates    []optionOutput `json:"alternates"`
}

type optionOutput struct {
	Text        string  `json:"text"`
	Description string  `json:"description,omitempty"`
	Source      string  `json:"source,omitempty"`
	Score       float64 `json:"score"`
}

// newQueryCmd creates the query command: one-shot autocomplete against
// the committed index.
func newQueryCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "query <input>",
		Short: "Complete partial input against the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			input := strings.Join(args, " ")
			res, err := a.engine.Query(cmd.Context(), input)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(toOutput(res))
			}

			printResult(cmd, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	return cmd
}

func toOutput(res complete.Result) queryOutput {
	out := queryOutput{
		Input:         res.Input,
		HasCompletion: res.HasCompletion,
		Completion:    toOption(res.Completion),
		Alternates:    make([]optionOutput, 0, len(res.Alternates)),
	}
	for _, alt := range res.Alternates {
		out.Alternates = append(out.Alternates, toOption(alt))
	}
	return out
}

func toOption(r complete.CommandResult) optionOutput {
	return optionOutput{
		Text:        r.Item.Text(),
		Description: r.Item.Description(),
		Source:      r.SourceID,
		Score:       r.Score,
	}
}

func printResult(cmd *cobra.Command, res complete.Result) {
	out := cmd.OutOrStdout()
	if !res.HasCompletion {
		fmt.Fprintf(out, "no completion; literal: %s\n", res.Completion.Item.Text())
		return
	}
	for i, opt := range res.Options() {
		desc := opt.Item.Description()
		if desc != "" {
			desc = "  " + desc
		}
		fmt.Fprintf(out, "%2d. %s%s\n", i+1, opt.Item.Text(), desc)
	}
}
