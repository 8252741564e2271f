package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/o1-assessor/internal/criteria"
)

const (
	PromptExit        = "exit"
	PromptSuperAwards = "super criteria: major internationally recognized awards"
)

var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "Show the criteria catalog used for assessment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info, err := loadCatalog(viper.GetString("criteria-file"))
		if err != nil {
			return err
		}

		interactive, _ := cmd.Flags().GetBool("interactive")
		if interactive {
			return browseCriteria(cmd.OutOrStdout(), info)
		}

		printCatalog(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(criteriaCmd)

	criteriaCmd.Flags().BoolP("interactive", "i", false, "browse criteria one by one")
}

func printCatalog(w io.Writer, info *criteria.VisaInfo) {
	if info.VisaType != "" {
		fmt.Fprintf(w, "Visa type: %s\n", info.VisaType)
	}
	fmt.Fprintf(w, "Super criteria check: %t\n\n", info.HasSuperCriteria())

	for i, c := range info.Criteria {
		fmt.Fprintf(w, "%d. %s\n", i+1, c.Name)
		printCriterion(w, c)
	}
}

func printCriterion(w io.Writer, c criteria.Criterion) {
	fmt.Fprintf(w, "   %s\n", strings.TrimSpace(c.FullText))
	if d := strings.TrimSpace(c.Description); d != "" {
		fmt.Fprintf(w, "   %s\n", d)
	}
	fmt.Fprintln(w)
}

func browseCriteria(w io.Writer, info *criteria.VisaInfo) error {
	items := info.Names()
	if info.HasSuperCriteria() {
		items = append(items, PromptSuperAwards)
	}

	for {
		criterionPrompt := promptui.Select{
			Label: "Choose a criterion and press ENTER",
			Items: append(items, PromptExit),
			Size:  10,
		}

		_, selected, err := criterionPrompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		switch selected {
		case PromptExit:
			return nil
		case PromptSuperAwards:
			fmt.Fprintf(w, "\n%v\n\n", info.SuperCriteria)
		default:
			for _, c := range info.Criteria {
				if c.Name == selected {
					fmt.Fprintf(w, "\n%s\n", c.Name)
					printCriterion(w, c)
				}
			}
		}
	}
}
