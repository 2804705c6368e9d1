package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (r *runner) folderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Управление папками",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Создать папку",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			id, err := c.AddFolder(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Папка создана: %s\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename [folder] [name]",
		Short: "Переименовать папку",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveFolder(c, args[0])
			if err != nil {
				return err
			}
			return c.RenameFolder(id, strings.Join(args[1:], " "))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [folder]",
		Short: "Удалить папку, её задачи переносятся в \"без папки\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			id, err := resolveFolder(c, args[0])
			if err != nil {
				return err
			}
			if err := c.DeleteFolderCascade(id); err != nil {
				return err
			}
			fmt.Fprintln(r.out, "Папка удалена")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Показать папки",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := r.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			counts := c.FolderCounts()
			fmt.Fprintf(r.out, "%-36s  %-7s  %3d  %s\n", "-", "", counts[""], "Без папки")
			for _, f := range c.Folders() {
				fmt.Fprintf(r.out, "%-36s  %-7s  %3d  %s\n", f.ID, f.Color, counts[f.ID], f.Name)
			}
			return nil
		},
	})

	return cmd
}
