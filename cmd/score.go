package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/homesignal/leadscore/internal/model"
	"github.com/homesignal/leadscore/internal/scoring"
)

var scoreFile string

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single lead from a JSON file or stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initScoring(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var in io.Reader = os.Stdin
		if scoreFile != "" {
			f, err := os.Open(scoreFile)
			if err != nil {
				return eris.Wrap(err, "open lead file")
			}
			defer f.Close()
			in = f
		}

		var lead model.LeadInput
		if err := json.NewDecoder(in).Decode(&lead); err != nil {
			return eris.Wrap(err, "decode lead")
		}

		result, err := env.Pipeline.Score(ctx, lead)
		if err != nil {
			var perr *scoring.PersistenceError
			if !errors.As(err, &perr) {
				return err
			}
			// Score computed but not stored; still print it.
			zap.L().Warn("result not persisted", zap.Error(err))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreFile, "file", "", "lead JSON file (default stdin)")
	rootCmd.AddCommand(scoreCmd)
}
