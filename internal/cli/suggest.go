package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/onetask/internal/streak"
)

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var (
		fresh bool
		save  int
	)

	cmd := &cobra.Command{
		Use:   "suggest [position]",
		Short: "Ask for helpful links for a task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if !s.hasService() {
				return errors.New("suggestion service is not configured (set api.base_url)")
			}
			t, err := taskAt(s.engine, args)
			if err != nil {
				return err
			}

			links, err := s.engine.Suggest(ctx, t.ID, fresh)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for i, l := range links {
				fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, l.Description, l.URL)
			}

			if save == 0 {
				return nil
			}
			if save < 1 || save > len(links) {
				return fmt.Errorf("--save %d is out of range (1-%d)", save, len(links))
			}
			l, err := s.engine.SaveSuggestedLink(ctx, t.ID, links[save-1])
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Saved %s to %q.\n", l.URL, t.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "ask for alternatives to earlier suggestions")
	cmd.Flags().IntVar(&save, "save", 0, "save the suggestion with this number onto the task")

	return cmd
}

func newStreakCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the completion streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			st := s.engine.Streak()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "🔥 %d day streak\n", st.Count)
			if st.LastCompleted != nil {
				fmt.Fprintf(w, "Last completion: %s\n", st.LastCompleted.Local().Format(time.DateOnly))
			}
			for _, m := range streak.Milestones() {
				if m > st.Count {
					fmt.Fprintf(w, "Next milestone: %d days\n", m)
					break
				}
			}
			return nil
		},
	}
}
