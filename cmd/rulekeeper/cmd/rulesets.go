package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lcgate/rulekeeper/internal/client"
	"github.com/lcgate/rulekeeper/internal/governance"
	"github.com/lcgate/rulekeeper/internal/types"
)

var rulesetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "Manage compliance rulesets",
}

var rulesetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rulesets",
	RunE:  runRulesetsList,
}

var rulesetsUploadCmd = &cobra.Command{
	Use:   "upload <file.json>",
	Short: "Upload a ruleset document as a new draft",
	Long: `Uploads a ruleset document. Domain, rulebook version and ruleset
version are auto-detected from filenames following the
{domain}-{rulebook_version}-v{X.Y.Z}.json convention and can be
overridden with flags.`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesetsUpload,
}

var rulesetsPublishCmd = &cobra.Command{
	Use:   "publish <ruleset-id>",
	Short: "Publish a draft ruleset",
	Args:  cobra.ExactArgs(1),
	RunE:  transitionRunner((*client.Client).PublishRuleset),
}

var rulesetsRollbackCmd = &cobra.Command{
	Use:   "rollback <ruleset-id>",
	Short: "Re-activate an archived ruleset",
	Args:  cobra.ExactArgs(1),
	RunE:  transitionRunner((*client.Client).RollbackRuleset),
}

var rulesetsArchiveCmd = &cobra.Command{
	Use:   "archive <ruleset-id>",
	Short: "Archive a ruleset",
	Args:  cobra.ExactArgs(1),
	RunE:  transitionRunner((*client.Client).ArchiveRuleset),
}

var rulesetsDeleteCmd = &cobra.Command{
	Use:   "delete <ruleset-id>",
	Short: "Delete a ruleset (soft by default)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesetsDelete,
}

var rulesetsAuditCmd = &cobra.Command{
	Use:   "audit <ruleset-id>",
	Short: "Show a ruleset's audit trail",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesetsAudit,
}

func init() {
	rootCmd.AddCommand(rulesetsCmd)
	rulesetsCmd.AddCommand(rulesetsListCmd)
	rulesetsCmd.AddCommand(rulesetsUploadCmd)
	rulesetsCmd.AddCommand(rulesetsPublishCmd)
	rulesetsCmd.AddCommand(rulesetsRollbackCmd)
	rulesetsCmd.AddCommand(rulesetsArchiveCmd)
	rulesetsCmd.AddCommand(rulesetsDeleteCmd)
	rulesetsCmd.AddCommand(rulesetsAuditCmd)

	rulesetsListCmd.Flags().String("status", "", "filter by status (draft, scheduled, active, archived)")
	rulesetsListCmd.Flags().String("jurisdiction", "", "filter by jurisdiction")
	rulesetsListCmd.Flags().String("domain", "", "filter by primary domain")
	rulesetsListCmd.Flags().String("rulebook", "", "filter by rulebook (forces its parent domain)")
	rulesetsListCmd.Flags().String("search", "", "free-text search")
	rulesetsListCmd.Flags().Int("page", 1, "page number")

	rulesetsUploadCmd.Flags().String("domain", "", "primary domain (auto-detected from filename)")
	rulesetsUploadCmd.Flags().String("rulebook", "", "rulebook value (auto-detected from filename)")
	rulesetsUploadCmd.Flags().String("jurisdiction", "", "jurisdiction")
	rulesetsUploadCmd.Flags().String("rulebook-version", "", "rulebook version (auto-detected from filename)")
	rulesetsUploadCmd.Flags().String("ruleset-version", "", "ruleset semantic version (auto-detected from filename)")
	rulesetsUploadCmd.Flags().String("notes", "", "free-form notes")

	rulesetsDeleteCmd.Flags().Bool("hard", false, "permanently remove the ruleset and its rules")
}

func apiClient() (*client.Client, error) {
	return client.New(serverURL, apiKey)
}

func runRulesetsList(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	var filters governance.RulesetFilters
	filters.Status, _ = cmd.Flags().GetString("status")
	filters.Jurisdiction, _ = cmd.Flags().GetString("jurisdiction")
	filters.Search, _ = cmd.Flags().GetString("search")
	filters.Page, _ = cmd.Flags().GetInt("page")

	domain, _ := cmd.Flags().GetString("domain")
	filters.SetDomain(domain, false)
	rulebook, _ := cmd.Flags().GetString("rulebook")
	filters.SetRulebook(rulebook)

	page, err := c.ListRulesets(context.Background(), filters.ClientFilter())
	if err != nil {
		return err
	}

	fmt.Printf("%-38s %-14s %-16s %-10s %-10s %5s\n",
		"ID", "DOMAIN", "RULEBOOK", "VERSION", "STATUS", "RULES")
	for _, rs := range page.Items {
		fmt.Printf("%-38s %-14s %-16s %-10s %-10s %5d\n",
			rs.ID, rs.Domain, rs.RulebookVersion, rs.RulesetVersion, rs.Status, rs.RuleCount)
	}
	fmt.Printf("page %d of %d (%d total)\n", page.Page, page.TotalPages, page.Total)
	return nil
}

func runRulesetsUpload(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}
	ctx := context.Background()

	document, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	var form client.UploadForm
	form.SetFile(filepath.Base(args[0]), document)
	applyStringFlag(cmd, "domain", &form.Domain)
	applyStringFlag(cmd, "rulebook", &form.Rulebook)
	applyStringFlag(cmd, "jurisdiction", &form.Jurisdiction)
	applyStringFlag(cmd, "rulebook-version", &form.RulebookVersion)
	applyStringFlag(cmd, "ruleset-version", &form.RulesetVersion)
	applyStringFlag(cmd, "notes", &form.Notes)

	report := form.Validate()
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !report.Valid() {
		for _, e := range report.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return fmt.Errorf("ruleset document failed validation")
	}

	snapshot, err := client.FetchSnapshot(ctx, c)
	if err != nil {
		return err
	}
	if err := form.CheckGuards(snapshot); err != nil {
		return err
	}

	result, err := c.UploadRuleset(ctx, form.Request())
	if err != nil {
		return err
	}

	fmt.Printf("uploaded ruleset %s as draft\n", result.Ruleset.ID)
	s := result.Summary
	fmt.Printf("rules: %d total, %d inserted, %d updated, %d skipped\n",
		s.TotalRules, s.Inserted, s.Updated, s.Skipped)
	for _, w := range s.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	for _, e := range s.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	return nil
}

// transitionRunner wraps one lifecycle transition as a cobra runner.
// Each transition prints the ruleset's identifying fields so the
// operator can see exactly what changed.
func transitionRunner(fn func(*client.Client, context.Context, types.RulesetID) (*types.Ruleset, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		rs, err := fn(c, context.Background(), types.RulesetID(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("%s %s %s v%s (%s) is now %s\n",
			rs.ID, rs.Domain, rs.RulebookVersion,
			strings.TrimPrefix(rs.RulesetVersion, "v"), rs.Jurisdiction, rs.Status)
		return nil
	}
}

func runRulesetsDelete(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	hard, _ := cmd.Flags().GetBool("hard")
	if err := c.DeleteRuleset(context.Background(), types.RulesetID(args[0]), hard); err != nil {
		return err
	}
	if hard {
		fmt.Println("ruleset permanently deleted")
	} else {
		fmt.Println("ruleset archived and rules deactivated")
	}
	return nil
}

func runRulesetsAudit(cmd *cobra.Command, args []string) error {
	c, err := apiClient()
	if err != nil {
		return err
	}

	page, err := c.GetRulesetAudit(context.Background(), types.RulesetID(args[0]))
	if err != nil {
		return err
	}

	for _, entry := range page.Items {
		fmt.Printf("%s  %-18s %-20s %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Action, entry.Actor, entry.Metadata)
	}
	fmt.Printf("%d entries\n", page.Total)
	return nil
}

func applyStringFlag(cmd *cobra.Command, name string, dest *string) {
	if cmd.Flags().Changed(name) {
		*dest, _ = cmd.Flags().GetString(name)
	}
}
