package cli

import (
	"fmt"
	"io"
	"strings"
	"time"
	"todoKeeper/internal/models/task"
	"todoKeeper/internal/service"
)

func printSection(w io.Writer, c *service.Coordinator, title, folderID string, now time.Time) {
	top := c.FilteredTasks(folderID)
	fmt.Fprintf(w, "== %s (%d)\n", title, c.TaskCountForFolder(folderID))
	for _, t := range top {
		printTask(w, t, "", now, c.SubtaskStats(t.ID))
		for _, sub := range c.Subtasks(t.ID) {
			printTask(w, sub, "    ", now, task.SubtaskStats{})
		}
	}
}

func printRemaining(w io.Writer, c *service.Coordinator) {
	fmt.Fprintf(w, "Осталось задач: %d\n", c.RemainingCount())
}

// прогресс печатается только при наличии подзадач
func printTask(w io.Writer, t task.Task, indent string, now time.Time, stats task.SubtaskStats) {
	mark := " "
	if t.Completed {
		mark = "x"
	}

	var extra []string
	if t.Priority != task.PriorityNone {
		extra = append(extra, "!"+string(t.Priority))
	}
	if t.DueDate != nil {
		extra = append(extra, "до "+t.DueDate.Local().Format("2006-01-02"))
	}
	if t.IsOverdue(now) {
		extra = append(extra, "ПРОСРОЧЕНО")
	}
	if stats.Total > 0 {
		extra = append(extra, fmt.Sprintf("%d/%d (%d%%)", stats.Completed, stats.Total, stats.Percentage))
	}

	line := fmt.Sprintf("%s[%s] %s  (%s)", indent, mark, t.Text, t.ID)
	if len(extra) > 0 {
		line += "  " + strings.Join(extra, " ")
	}
	fmt.Fprintln(w, line)
}
