package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/levels"
	"github.com/milk9111/overworld/logging"
	"github.com/milk9111/overworld/prefabs"
	"github.com/milk9111/overworld/storage"
	"github.com/milk9111/overworld/tileevent"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd runs the game; its subcommands inspect the bundled levels.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "overworld",
		Short:        "Walk a hero around tile maps with scripted tile events",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			return run(cfg, log)
		},
	}
	AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewLevelsCmd())
	return cmd
}

// NewCheckCmd builds every bundled level without opening a window.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [level...]",
		Short: "Load levels headlessly and report authoring errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = levels.Names()
			}
			return checkLevels(cmd, cfg, log, names)
		},
	}
}

func NewLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List the bundled levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range levels.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func setup(cmd *cobra.Command) (Config, *slog.Logger, error) {
	cfg, err := LoadConfig(cmd.Flags())
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.Setup("overworld", cfg.Log.Format, cfg.Log.Level, cmd.ErrOrStderr())
	if err != nil {
		return cfg, nil, err
	}
	slog.SetDefault(log)
	return cfg, log, nil
}

func checkLevels(cmd *cobra.Command, cfg Config, log *slog.Logger, names []string) error {
	var errs []error
	idle := func() component.Input { return component.Input{} }
	for _, name := range names {
		scene, err := LoadScene(name, SceneOptions{
			Store:   storage.NewMemStore(),
			Scripts: tileevent.NewScriptRunner(prefabs.LoadScript),
			TPS:     cfg.TPS,
			ViewW:   ViewWidth,
			ViewH:   ViewHeight,
			Zoom:    cfg.Scale,
			Log:     log,
			Input:   idle,
		})
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", name, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d events, %d objects)\n", scene.Name, scene.Map.Events().Len(), len(scene.Pusher.Objects()))
		scene.Close()
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d levels failed: %w", len(errs), len(names), errors.Join(errs...))
	}
	return nil
}

func run(cfg Config, log *slog.Logger) error {
	game, err := NewGame(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := game.Close(); err != nil {
			log.Warn("close", "err", err)
		}
	}()

	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(ViewWidth, ViewHeight)
	ebiten.SetWindowTitle("overworld")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(game)
}
