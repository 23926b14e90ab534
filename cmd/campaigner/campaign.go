package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/foxzi/campaigner/internal/app"
	"github.com/foxzi/campaigner/internal/config"
	"github.com/foxzi/campaigner/internal/logging"
	"github.com/foxzi/campaigner/internal/models"
	"github.com/foxzi/campaigner/internal/store"
)

var campaignListStatus string

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Campaign commands",
}

var campaignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	RunE:  runCampaignList,
}

var campaignSendCmd = &cobra.Command{
	Use:   "send <campaign_id>",
	Short: "Send a campaign now and wait for it to finish",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignSend,
}

var campaignScheduleCmd = &cobra.Command{
	Use:   "schedule <campaign_id> <time>",
	Short: "Schedule a campaign (time in RFC 3339, e.g. 2026-01-02T15:04:05Z)",
	Args:  cobra.ExactArgs(2),
	RunE:  runCampaignSchedule,
}

func init() {
	campaignListCmd.Flags().StringVar(&campaignListStatus, "status", "", "Filter by status (draft, scheduled, sending, sent, failed)")

	campaignCmd.AddCommand(campaignListCmd, campaignSendCmd, campaignScheduleCmd)
	rootCmd.AddCommand(campaignCmd)
}

// openApp builds the application without starting its servers
func openApp() (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return app.New(cfg, version)
}

// openStore opens the state document alone, logging to stderr so command
// output stays clean.
func openStore() (*store.Store, io.Closer, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	storage, err := store.NewBoltStorage(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.Logging.Level)}))
	return store.New(storage, logger), storage, nil
}

func runCampaignList(cmd *cobra.Command, args []string) error {
	st, closer, err := openStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tRECIPIENTS\tSCHEDULED\tUPDATED")
	for _, c := range st.Campaigns() {
		if campaignListStatus != "" && !strings.EqualFold(string(c.Status), campaignListStatus) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			c.ID, truncate(c.Name, 30), c.Status, c.RecipientsCount,
			formatScheduled(c.ScheduledAt), c.UpdatedAt.Time().Format(time.DateTime))
	}
	return w.Flush()
}

func runCampaignSend(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	res, err := a.Dispatcher().SendCampaignNow(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to send campaign: %w", err)
	}

	fmt.Printf("Campaign %s: %s\n", args[0], res.Status)
	fmt.Printf("  Recipients: %d\n", res.Recipients)
	fmt.Printf("  Sent:       %d\n", res.Sent)
	fmt.Printf("  Failed:     %d\n", res.Failed)
	return nil
}

func runCampaignSchedule(cmd *cobra.Command, args []string) error {
	when, err := time.Parse(time.RFC3339, args[1])
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", args[1], err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	c, err := a.Dispatcher().ScheduleCampaign(args[0], when)
	if err != nil {
		return fmt.Errorf("failed to schedule campaign: %w", err)
	}
	fmt.Printf("Campaign %s scheduled for %s\n", c.ID, when.Local().Format(time.DateTime))
	return nil
}

func formatScheduled(at *models.Timestamp) string {
	if at == nil {
		return "-"
	}
	return at.Time().Format(time.DateTime)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
