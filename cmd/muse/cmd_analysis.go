package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEmotionDiffCommand() *cobra.Command {
	var track, section string
	cmd := &cobra.Command{
		Use:   "emotion-diff <ref-a> <ref-b>",
		Short: "Compare the emotional character of two commits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			result, err := r.EmotionDiff(args[0], args[1], track, section)
			if err != nil {
				return err
			}
			fmt.Printf("drift: %.4f (source: %s)\n", result.Drift, result.Source)
			fmt.Println(result.Narrative)
			return nil
		},
	}
	cmd.Flags().StringVar(&track, "track", "", "track filter (recorded, not yet scoped)")
	cmd.Flags().StringVar(&section, "section", "", "section filter (recorded, not yet scoped)")
	return cmd
}

func newDivergenceCommand() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "divergence <branch-a> <branch-b>",
		Short: "Quantify divergence between two branches across musical dimensions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			result, err := r.Divergence(args[0], args[1], base)
			if err != nil {
				return err
			}
			fmt.Printf("base: %s\n", result.Base)
			for _, d := range result.Dimensions {
				fmt.Printf("  %-10s %s (%.2f) — %s / %s\n", d.Dimension, d.Level, d.Score, d.SummaryA, d.SummaryB)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "override the auto-detected merge-base")
	return cmd
}

func newTimelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline [ref]",
		Short: "Walk history oldest-first with emotional/structural arcs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			ref := "HEAD"
			if len(args) == 1 {
				ref = args[0]
			}
			start, err := r.Revision(ref)
			if err != nil {
				return err
			}
			result, err := r.Timeline(start)
			if err != nil {
				return err
			}
			for _, e := range result.Entries {
				fmt.Printf("%s %s emotion=%s section=%s track=%s\n", e.Commit.ID, e.Commit.Message, e.Emotion, e.Section, e.Track)
			}
			fmt.Printf("emotion arc: %v\n", result.EmotionArc)
			fmt.Printf("section order: %v\n", result.SectionOrder)
			return nil
		},
	}
	return cmd
}

func newTempoCommand() *cobra.Command {
	var history bool
	cmd := &cobra.Command{
		Use:   "tempo [ref]",
		Short: "Report the effective tempo of a commit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			ref := "HEAD"
			if len(args) == 1 {
				ref = args[0]
			}
			if history {
				start, err := r.Revision(ref)
				if err != nil {
					return err
				}
				entries, err := r.TempoHistory(start)
				if err != nil {
					return err
				}
				for _, e := range entries {
					switch {
					case e.EffectiveBPM == nil:
						fmt.Printf("%s %s bpm=? %s\n", e.Commit, e.Message, deltaString(nil))
					default:
						fmt.Printf("%s %s bpm=%.2f %s\n", e.Commit, e.Message, *e.EffectiveBPM, deltaString(e.DeltaBPM))
					}
				}
				return nil
			}
			result, err := r.Tempo(ref)
			if err != nil {
				return err
			}
			if !result.Known {
				fmt.Println("tempo unknown")
				return nil
			}
			fmt.Printf("%.2f bpm (source: %s)\n", result.BPM, result.Source)
			return nil
		},
	}
	cmd.Flags().BoolVar(&history, "history", false, "show tempo history instead of a single value")
	return cmd
}

func deltaString(delta *float64) string {
	if delta == nil {
		return ""
	}
	return fmt.Sprintf("delta=%+.2f", *delta)
}
