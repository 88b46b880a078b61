package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spendlens/cmd/spendlens/config"
	"spendlens/internal/models"
	"spendlens/internal/rules"
	apperrors "spendlens/pkg/errors"
)

var rulesDBPath string

// rulesCmd groups management of learned categorization rules
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage learned categorization rules",
	Long: `Rules lists, teaches, deletes, exports and imports learned
categorization rules stored in the rules database.

A rule maps a normalized merchant pattern to a category and always wins over
cached and AI-assigned categories during analysis.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all learned rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuleManager(func(manager *rules.Manager) error {
			ruleList := manager.Rules()
			if len(ruleList) == 0 {
				fmt.Println("No rules stored")
				return nil
			}
			fmt.Printf("%d rule(s):\n\n", len(ruleList))
			for _, rule := range ruleList {
				fmt.Printf("  %-30s -> %-20s (applied %d times, id %s)\n",
					rule.MerchantPattern, rule.Category, rule.AppliedCount, rule.ID)
			}
			return nil
		})
	},
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <description> <category>",
	Short: "Teach a rule from a transaction description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, ok := models.ParseCategory(args[1])
		if !ok {
			return apperrors.ValidationError(apperrors.CodeInvalidCategory,
				"category", args[1], nil).
				WithSuggestion("Use 'spendlens rules categories' to list valid categories")
		}
		return withRuleManager(func(manager *rules.Manager) error {
			result, err := manager.CreateOrUpdateRule(args[0], category)
			if err != nil {
				return err
			}
			if result.IsNewRule {
				fmt.Printf("Created rule %q -> %s\n", result.Rule.MerchantPattern, result.Rule.Category)
			} else {
				fmt.Printf("Updated rule %q -> %s\n", result.Rule.MerchantPattern, result.Rule.Category)
			}
			return nil
		})
	},
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <rule-id>",
	Short: "Delete a rule by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuleManager(func(manager *rules.Manager) error {
			deleted, err := manager.DeleteRule(args[0])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Printf("No rule with id %s\n", args[0])
				return nil
			}
			fmt.Printf("Deleted rule %s\n", args[0])
			return nil
		})
	},
}

var rulesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all learned rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuleManager(func(manager *rules.Manager) error {
			count := manager.Count()
			if err := manager.ClearAllRules(); err != nil {
				return err
			}
			fmt.Printf("Cleared %d rule(s)\n", count)
			return nil
		})
	},
}

var rulesExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export rules as JSON (stdout if no file given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuleManager(func(manager *rules.Manager) error {
			data, err := manager.ExportJSON()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return apperrors.FileError(apperrors.CodeFilePermission, args[0], err)
			}
			fmt.Printf("Exported %d rule(s) to %s\n", manager.Count(), args[0])
			return nil
		})
	},
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import rules from a JSON export, keeping existing rules on conflict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			if os.IsNotExist(err) {
				return apperrors.FileError(apperrors.CodeFileNotFound, args[0], err)
			}
			return apperrors.FileError(apperrors.CodeFileCorrupted, args[0], err)
		}
		return withRuleManager(func(manager *rules.Manager) error {
			result, err := manager.ImportJSON(data)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d rule(s), skipped %d existing\n",
				result.Imported, result.Skipped)
			return nil
		})
	},
}

var rulesCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the category vocabulary",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, category := range models.Categories() {
			fmt.Println(category)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesDeleteCmd,
		rulesClearCmd, rulesExportCmd, rulesImportCmd, rulesCategoriesCmd)

	rulesCmd.PersistentFlags().StringVar(&rulesDBPath, "rules-db", "spendlens-rules.db",
		"path to learned-rules database")
	viper.BindPFlag("rules.db", rulesCmd.PersistentFlags().Lookup("rules-db"))
}

// withRuleManager opens the rules database, runs fn and closes the store.
// Errors go through the CLI error handler so exit codes match analyze.
func withRuleManager(fn func(*rules.Manager) error) error {
	handler := NewCLIErrorHandler()

	manager, closer, err := config.BuildRuleManager(viper.GetString("rules.db"))
	if err != nil {
		os.Exit(handler.HandleError(err))
	}

	err = fn(manager)
	if closer != nil {
		closer.Close()
	}
	if err != nil {
		os.Exit(handler.HandleError(err))
	}
	return nil
}
