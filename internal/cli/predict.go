package cli

import (
	"github.com/spf13/cobra"
)

func newSymptomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symptoms",
		Short: "List the symptoms the model knows",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SymptomList

			if err := client.Get(cmd.Context(), "/api/v1/symptoms", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPredictCmd() *cobra.Command {
	var symptoms []string

	cmd := &cobra.Command{
		Use:     "predict",
		Short:   "Predict a disease from symptoms",
		Example: `  symcheck predict --symptom fever --symptom cough`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string][]string{"symptoms": symptoms}
			if symptoms == nil {
				req["symptoms"] = []string{}
			}
			var result Prediction

			if err := client.Post(cmd.Context(), "/api/v1/predictions", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&symptoms, "symptom", "s", nil, "Symptom to include (repeatable)")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show past predictions, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result History

			if err := client.Get(cmd.Context(), "/api/v1/history", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newNavCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "nav <view>",
		Short:     "Move the session to another view",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"login", "register", "home", "predict", "history"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Post(cmd.Context(), "/api/v1/session/view", map[string]string{"view": args[0]}, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
