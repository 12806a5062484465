package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/onetask/internal/engine"
	"github.com/nhle/onetask/internal/model"
)

var errNoTasks = errors.New("no tasks")

// parsePosition turns a 1-based position argument into a list index.
func parsePosition(arg string, n int) (int, error) {
	if n == 0 {
		return 0, errNoTasks
	}
	pos, err := strconv.Atoi(arg)
	if err != nil || pos < 1 || pos > n {
		return 0, fmt.Errorf("position %q is out of range (1-%d)", arg, n)
	}
	return pos - 1, nil
}

// taskAt resolves an optional position argument, defaulting to the first
// task.
func taskAt(eng *engine.Engine, args []string) (model.Task, error) {
	tasks := eng.Tasks()
	i := 0
	if len(args) > 0 {
		var err error
		if i, err = parsePosition(args[0], len(tasks)); err != nil {
			return model.Task{}, err
		}
	} else if len(tasks) == 0 {
		return model.Task{}, errNoTasks
	}
	return tasks[i], nil
}

func indexOf(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		draft    engine.TaskDraft
		priority string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := model.ParsePriority(priority)
			if err != nil {
				return err
			}
			draft.Title = strings.Join(args, " ")
			draft.Priority = p

			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.engine.AddTask(cmd.Context(), draft)
			if err != nil {
				return err
			}
			pos := indexOf(s.engine.Tasks(), t.ID) + 1
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q at position %d of %d.\n", t.Title, pos, s.engine.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "none", "none, high, medium, low or ai")
	cmd.Flags().StringVar(&draft.DueDate, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&draft.Note, "note", "", "free-form note")
	cmd.Flags().StringVar(&draft.LinkURL, "link", "", "attach a link")
	cmd.Flags().StringVar(&draft.LinkDescription, "link-desc", "", "description for --link")

	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			printTasks(cmd.OutOrStdout(), s.engine)
			return nil
		},
	}
}

func printTasks(w io.Writer, eng *engine.Engine) {
	tasks := eng.Tasks()
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks. Add one with: onetask add <title>")
		return
	}

	now := eng.Now()
	for i, t := range tasks {
		line := fmt.Sprintf("%2d. %s", i+1, t.Title)
		if t.Priority != model.PriorityNone && t.Priority != "" {
			line += " [" + t.Priority.Label() + "]"
		}
		if t.DueDate != nil {
			line += " due " + t.DueDate.String()
			if t.IsOverdue(now) {
				line += " (overdue)"
			}
		}
		if n := len(t.SavedLinks); n > 0 {
			line += fmt.Sprintf(" (%d links)", n)
		}
		fmt.Fprintln(w, line)
	}
}

func newDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done [position]",
		Short: "Complete a task (the first one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := taskAt(s.engine, args)
			if err != nil {
				return err
			}
			c, err := s.engine.BeginCompletion(ctx, t.ID)
			if err != nil {
				return err
			}
			s.engine.FinishCompletion(ctx, c.TaskID)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Completed %q. 🔥 %d day streak\n", c.Title, s.engine.Streak().Count)
			if c.Celebration != nil {
				fmt.Fprintln(w, c.Celebration.Message)
			}
			return nil
		},
	}
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a task to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			n := s.engine.Len()
			from, err := parsePosition(args[0], n)
			if err != nil {
				return err
			}
			to, err := parsePosition(args[1], n)
			if err != nil {
				return err
			}
			s.engine.Move(ctx, from, to)

			printTasks(cmd.OutOrStdout(), s.engine)
			return nil
		},
	}
}

func newLinkCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "link <position> <url> [description]",
		Short: "Attach a link to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := taskAt(s.engine, args[:1])
			if err != nil {
				return err
			}
			l, err := s.engine.AttachLink(ctx, t.ID, args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %s (%s) to %q.\n", l.URL, l.Description, t.Title)
			return nil
		},
	}
}

func newPrioritizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prioritize",
		Short: "Reorder all tasks with the ranking service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if !s.hasService() {
				return errors.New("ranking service is not configured (set api.base_url)")
			}
			if err := s.engine.PrioritizeAll(ctx); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Tasks have been prioritized!")
			printTasks(w, s.engine)
			return nil
		},
	}
}
