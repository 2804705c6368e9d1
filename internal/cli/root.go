package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"todoKeeper/internal/app"
	"todoKeeper/internal/config"
	"todoKeeper/internal/service"

	"github.com/spf13/cobra"
)

var Version = "dev"

// runner лениво поднимает приложение: команде config хранилище не нужно
type runner struct {
	configPath string
	verbose    bool
	out        io.Writer

	cfg *config.Config
	app *app.App
}

// Run выполняет одну команду и сохраняет изменения перед выходом
func Run(ctx context.Context, args []string, out, errOut io.Writer) error {
	r := &runner{out: out}

	cmd := r.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, r.close())
}

func (r *runner) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "todo - задачи, подзадачи и папки в локальном хранилище",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&r.configPath, "config", "c", "config.yml", "Путь к файлу конфигурации")
	cmd.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "Подробный лог")

	cmd.AddCommand(r.addCmd())
	cmd.AddCommand(r.listCmd())
	cmd.AddCommand(r.overdueCmd())
	cmd.AddCommand(r.doneCmd())
	cmd.AddCommand(r.rmCmd())
	cmd.AddCommand(r.subtaskCmd())
	cmd.AddCommand(r.dueCmd())
	cmd.AddCommand(r.priorityCmd())
	cmd.AddCommand(r.moveCmd())
	cmd.AddCommand(r.folderCmd())
	cmd.AddCommand(r.configCmd())

	return cmd
}

func (r *runner) config() (*config.Config, error) {
	if r.cfg != nil {
		return r.cfg, nil
	}
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}
	if !r.verbose {
		cfg.Logging.Level = "warn"
	}
	r.cfg = cfg
	return cfg, nil
}

func (r *runner) coordinator(ctx context.Context) (*service.Coordinator, error) {
	if r.app != nil {
		return r.app.Coordinator(), nil
	}
	cfg, err := r.config()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		return nil, err
	}
	r.app = a
	return a.Coordinator(), nil
}

func (r *runner) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Coordinator().Flush()
	r.app.Shutdown()
	r.app = nil
	if err != nil {
		return fmt.Errorf("изменения не сохранены: %w", err)
	}
	return nil
}

func (r *runner) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Показать действующую конфигурацию",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := r.config()
			if err != nil {
				return err
			}
			out, err := cfg.Dump()
			if err != nil {
				return err
			}
			fmt.Fprint(r.out, out)
			return nil
		},
	}
}
