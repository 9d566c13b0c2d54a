package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/audioforge/audioforge/internal/check"
	"github.com/audioforge/audioforge/internal/display"
)

func newCheckCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg availability and encoder support",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := gf.newLogger()
			if err != nil {
				return err
			}
			defer log.Close()

			display.PrintBanner()
			if !check.RunCheck(log) {
				return errors.New("system check failed")
			}
			return nil
		},
	}
}
