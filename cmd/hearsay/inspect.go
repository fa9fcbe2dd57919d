package main

import (
	"fmt"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/api"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <agent-id>",
	Short: "Show what one villager has heard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid agent id %q", args[0])
		}
		sim, err := loadSaved(cmd.Context())
		if err != nil {
			return err
		}
		rumors, ok := sim.AgentRumors(agents.AgentID(id))
		if !ok {
			return fmt.Errorf("no agent %d", id)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: agent %d knows %d rumors\n\n", sim.Status().SimTime, id, len(rumors))
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TOPIC\tINTENSITY\tCONFIDENCE\tSHARED\tTONE\tWITNESSED")
		for _, r := range rumors {
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%d\t%s\t%t\n", r.Topic, r.Intensity, r.Confidence, r.ShareCount, r.Tone, r.Witnessed)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
		for _, r := range rumors {
			fmt.Fprintln(out, "  "+r.Line)
		}
		return nil
	},
}

var topicCmd = &cobra.Command{
	Use:   "topic <key>",
	Short: "Show how far a topic has spread",
	Long:  "Show how far a topic has spread. Theme names (combat, exploration, social, family, life) select the abstract topic.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sim, err := loadSaved(cmd.Context())
		if err != nil {
			return err
		}
		view := sim.TopicSpread(api.ResolveTopic(args[0]))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "topic %s (abstract: %t)\n", view.Topic, view.Abstract)
		fmt.Fprintf(out, "  holders:    %d\n", len(view.Holders))
		if view.Abstract {
			return nil
		}
		fmt.Fprintf(out, "  witnesses:  %d\n", view.Witnesses)
		fmt.Fprintf(out, "  intensity:  %.2f\n", view.AvgIntensity)
		fmt.Fprintf(out, "  confidence: %.2f\n", view.AvgConfidence)
		tones := lo.Keys(view.Tones)
		slices.Sort(tones)
		for _, tone := range tones {
			fmt.Fprintf(out, "  %-10s  %d\n", tone+":", view.Tones[tone])
		}
		return nil
	},
}
