package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lcgate/rulekeeper/internal/client"
	"github.com/lcgate/rulekeeper/internal/governance"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage individual compliance rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules",
	RunE:  runRulesList,
}

var rulesUpdateCmd = &cobra.Command{
	Use:   "update <rule-id>",
	Short: "Update a rule's severity, activation or payload",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesUpdate,
}

var rulesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Recompute rule activation from ruleset status",
	RunE:  runRulesSync,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesUpdateCmd)
	rulesCmd.AddCommand(rulesSyncCmd)

	rulesListCmd.Flags().String("search", "", "free-text search")
	rulesListCmd.Flags().String("domain", "", "filter by domain")
	rulesListCmd.Flags().String("document-type", "", "filter by document type")
	rulesListCmd.Flags().String("severity", "", "filter by severity (info, warning, fail, risk)")
	rulesListCmd.Flags().String("activation", "active", "activation filter (active, inactive, all)")
	rulesListCmd.Flags().Int("page", 1, "page number")

	rulesUpdateCmd.Flags().String("severity", "", "new severity (info, warning, fail, risk)")
	rulesUpdateCmd.Flags().Bool("active", false, "set activation")
	rulesUpdateCmd.Flags().String("payload-file", "", "replace the rule payload with this JSON file")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	var filters governance.RulesFilters
	filters.Search, _ = cmd.Flags().GetString("search")
	filters.Domain, _ = cmd.Flags().GetString("domain")
	filters.DocumentType, _ = cmd.Flags().GetString("document-type")
	filters.Severity, _ = cmd.Flags().GetString("severity")
	activation, _ := cmd.Flags().GetString("activation")
	filters.Activation = governance.Activation(activation)
	filters.Page, _ = cmd.Flags().GetInt("page")

	page, err := c.ListRules(context.Background(), filters.ClientFilter())
	if err != nil {
		return err
	}

	fmt.Printf("%-32s %-14s %-10s %-8s %s\n", "RULE", "DOMAIN", "SEVERITY", "ACTIVE", "TITLE")
	for _, rule := range page.Items {
		fmt.Printf("%-32s %-14s %-10s %-8t %s\n",
			rule.Key, rule.Domain, rule.Severity, rule.IsActive, rule.Title)
	}
	fmt.Printf("page %d of %d (%d total)\n", page.Page, page.TotalPages, page.Total)
	return nil
}

func runRulesUpdate(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	var update client.RuleUpdate
	if cmd.Flags().Changed("severity") {
		severity, _ := cmd.Flags().GetString("severity")
		update.Severity = &severity
	}
	if cmd.Flags().Changed("active") {
		active, _ := cmd.Flags().GetBool("active")
		update.IsActive = &active
	}
	if cmd.Flags().Changed("payload-file") {
		path, _ := cmd.Flags().GetString("payload-file")
		payload, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if !json.Valid(payload) {
			return fmt.Errorf("%s is not valid JSON", path)
		}
		update.Payload = payload
	}
	if update.Severity == nil && update.IsActive == nil && update.Payload == nil {
		return fmt.Errorf("nothing to update: pass --severity, --active or --payload-file")
	}

	rule, err := c.UpdateRule(context.Background(), args[0], update)
	if err != nil {
		return err
	}
	fmt.Printf("%s severity=%s active=%t\n", rule.Key, rule.Severity, rule.IsActive)
	return nil
}

func runRulesSync(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	changed, err := c.BulkSyncRules(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("synced %d rules\n", changed)
	return nil
}
