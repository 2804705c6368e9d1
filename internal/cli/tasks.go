package cli

import (
	"fmt"
	"strings"
	"time"
	"todoKeeper/internal/models/task"
	"todoKeeper/internal/service"

	"github.com/spf13/cobra"
)

func (r *runner) addCmd() *cobra.Command {
	var due, priority, folderRef string

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Добавить задачу",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}

			dueDate, err := parseDate(due)
			if err != nil {
				return err
			}
			folderID, err := resolveFolder(c, folderRef)
			if err != nil {
				return err
			}

			id, err := c.AddTask(task.NewTask{
				Text:     strings.Join(args, " "),
				DueDate:  dueDate,
				Priority: parsePriority(priority),
				FolderID: folderID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Задача создана: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&due, "due", "d", "", "Срок (2006-01-02 или RFC 3339)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Приоритет: low, medium, high")
	cmd.Flags().StringVarP(&folderRef, "folder", "f", "", "Папка (id или имя)")

	return cmd
}

func (r *runner) listCmd() *cobra.Command {
	var folderRef string
	var noFolder bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Показать задачи по папкам",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			now := time.Now()

			if noFolder {
				printSection(r.out, c, "Без папки", "", now)
				return nil
			}
			if folderRef != "" {
				folderID, err := resolveFolder(c, folderRef)
				if err != nil {
					return err
				}
				f, _ := c.Folder(folderID)
				printSection(r.out, c, f.Name, folderID, now)
				return nil
			}

			printSection(r.out, c, "Без папки", "", now)
			for _, f := range c.Folders() {
				printSection(r.out, c, f.Name, f.ID, now)
			}
			printRemaining(r.out, c)
			return nil
		},
	}

	cmd.Flags().StringVarP(&folderRef, "folder", "f", "", "Только эта папка (id или имя)")
	cmd.Flags().BoolVar(&noFolder, "no-folder", false, "Только задачи без папки")

	return cmd
}

func (r *runner) overdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "Показать просроченные задачи",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			now := time.Now()
			for _, t := range c.Overdue(now) {
				printTask(r.out, t, "", now, task.SubtaskStats{})
			}
			return nil
		},
	}
}

func (r *runner) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [id]",
		Short: "Переключить выполнение задачи",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			completed, err := c.ToggleComplete(args[0])
			if err != nil {
				return err
			}
			if completed {
				fmt.Fprintln(r.out, "Задача выполнена")
			} else {
				fmt.Fprintln(r.out, "Задача снова активна")
			}
			return nil
		},
	}
}

func (r *runner) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Удалить задачу вместе с подзадачами",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.DeleteTask(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(r.out, "Задача удалена")
			return nil
		},
	}
}

func (r *runner) subtaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subtask [parent-id] [text]",
		Short: "Добавить подзадачу",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			id, err := c.AddSubtask(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Подзадача создана: %s\n", id)
			return nil
		},
	}
}

func (r *runner) dueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due [id] [date]",
		Short: "Установить срок, без даты - снять",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			var raw string
			if len(args) == 2 {
				raw = args[1]
			}
			dueDate, err := parseDate(raw)
			if err != nil {
				return err
			}
			return c.SetDueDate(args[0], dueDate)
		},
	}
}

func (r *runner) priorityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priority [id] [low|medium|high|none]",
		Short: "Установить приоритет",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			return c.SetPriority(args[0], parsePriority(args[1]))
		},
	}
}

func (r *runner) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move [id] [folder]",
		Short: "Перенести задачу в папку, без папки - в \"без папки\"",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			var folderID string
			if len(args) == 2 {
				if folderID, err = resolveFolder(c, args[1]); err != nil {
					return err
				}
			}
			return c.MoveToFolder(args[0], folderID)
		},
	}
}

func parseDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	due := task.ReviveDate(raw)
	if due == nil {
		return nil, fmt.Errorf("не удалось разобрать дату %q", raw)
	}
	return due, nil
}

func parsePriority(raw string) task.Priority {
	if raw == "none" {
		return task.PriorityNone
	}
	return task.Priority(strings.ToLower(raw))
}

// resolveFolder принимает id или имя папки; пустая строка - "без папки"
func resolveFolder(c *service.Coordinator, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if _, err := c.Folder(ref); err == nil {
		return ref, nil
	}
	for _, f := range c.Folders() {
		if strings.EqualFold(f.Name, ref) {
			return f.ID, nil
		}
	}
	return "", service.NewNotFound(service.ResourceFolder, ref, nil)
}
