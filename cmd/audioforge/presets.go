package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/audioforge/audioforge/internal/preset"
)

func newPresetsCommand(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage conversion presets",
	}
	cmd.AddCommand(
		newPresetsListCommand(),
		newPresetsShowCommand(),
		newPresetsSaveCommand(),
		newPresetsDeleteCommand(),
	)
	return cmd
}

func newPresetsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List builtin and user presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := preset.NewStore()
			if err != nil {
				return err
			}
			builtins := preset.Builtins()
			for _, name := range store.List() {
				if _, ok := builtins[name]; ok {
					fmt.Printf("%s (builtin)\n", name)
				} else {
					fmt.Println(name)
				}
			}
			return nil
		},
	}
}

func newPresetsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a preset's settings as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := preset.NewStore()
			if err != nil {
				return err
			}
			s, err := store.Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		},
	}
}

func newPresetsSaveCommand() *cobra.Command {
	var sf settingsFlags

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save current settings flags as a user preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := preset.NewStore()
			if err != nil {
				return err
			}
			s, err := sf.resolve(cmd, store)
			if err != nil {
				return err
			}
			if err := store.Save(args[0], s); err != nil {
				return err
			}
			fmt.Printf("Preset %q saved\n", args[0])
			return nil
		},
	}
	addSettingsFlags(cmd, &sf)
	return cmd
}

func newPresetsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a user preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := preset.NewStore()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Preset %q deleted\n", args[0])
			return nil
		},
	}
}
