package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/notekeep/internal/adapters/tools"
	"go.trai.ch/zerr"
)

func (c *CLI) newMeetingsCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "Search and read meetings from the cache or the backup",
	}
	cmd.PersistentFlags().StringVar(&from, "from", "", "Read from the live cache (source) or the backup file (backup)")

	var limit int
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search meetings by title, content or participants",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{"query": strings.Join(args, " ")}
			if cmd.Flags().Changed("limit") {
				params["limit"] = limit
			}
			return c.query(cmd, from, tools.SearchMeetings, params)
		},
	}
	search.Flags().IntVar(&limit, "limit", tools.DefaultSearchLimit, "Maximum number of results")
	cmd.AddCommand(search)

	for _, m := range []struct {
		use, short, tool string
	}{
		{"show <id>", "Show the details of a meeting", tools.GetMeeting},
		{"transcript <id>", "Print the transcript of a meeting", tools.GetTranscript},
		{"notes <id>", "Print the notes of a meeting", tools.GetNotes},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   m.use,
			Short: m.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.query(cmd, from, m.tool, map[string]any{"meeting_id": args[0]})
			},
		})
	}

	var start, end string
	analyze := &cobra.Command{
		Use:       "analyze <topics|participants|frequency>",
		Short:     "Analyze patterns across meetings",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{tools.PatternTopics, tools.PatternParticipants, tools.PatternFrequency},
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{"pattern_type": args[0]}
			if start != "" {
				params["start_date"] = start
			}
			if end != "" {
				params["end_date"] = end
			}
			return c.query(cmd, from, tools.AnalyzePatterns, params)
		},
	}
	analyze.Flags().StringVar(&start, "start", "", "Only meetings on or after this date (e.g. 2024-01-01)")
	analyze.Flags().StringVar(&end, "end", "", "Only meetings on or before this date (e.g. 2024-12-31)")
	cmd.AddCommand(analyze)

	return cmd
}

// query runs a tool and prints its text. A tool failure becomes the command
// error.
func (c *CLI) query(cmd *cobra.Command, from, tool string, params map[string]any) error {
	result, err := c.app.Query(cmd.Context(), from, tool, params)
	if err != nil {
		return err
	}
	if result.IsError {
		return zerr.With(zerr.New(result.Text), "tool", tool)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Text)
	return err
}
