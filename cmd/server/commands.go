package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tutor-ai/internal/services"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf <file>",
	Short: "Summarize a PDF and print the summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := services.ValidatePDFName(args[0]); err != nil {
			return err
		}
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.summaries.SummarizeFile(cmd.Context(), args[0], printProgress)
		if err != nil {
			return err
		}
		if summary.DroppedChunks > 0 {
			fmt.Fprintf(os.Stderr, "note: only the first %d chunks fit the token budget, %d dropped\n",
				summary.Chunks, summary.DroppedChunks)
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary.Summary)
		return nil
	},
}

var youtubeCmd = &cobra.Command{
	Use:   "youtube <url>",
	Short: "Summarize a YouTube video from its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.video.SummarizeWithProgress(cmd.Context(), args[0], printProgress)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "transcript: %s via %s (generated: %t)\n", summary.Language, summary.Source, summary.Generated)
		fmt.Fprintln(cmd.OutOrStdout(), summary.Summary)
		return nil
	},
}

var searchSource string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Ask one knowledge source and print the answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		answer, err := a.search.Search(cmd.Context(), searchSource, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchSource, "source", "s", string(services.SourceDuckDuckGo),
		"youtube, duckduckgo, wikipedia, arxiv or tavily")
}

func printProgress(step, message string, current, total int) {
	fmt.Fprintf(os.Stderr, "[%s] %s (%d/%d)\n", step, message, current, total)
}
