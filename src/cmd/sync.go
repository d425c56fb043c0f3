package cmd

import (
	"github.com/0xBased-lang/zmart-syncer/src/sync"
	"github.com/0xBased-lang/zmart-syncer/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Listen for program transactions and apply their events to the database",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := sync.NewController(conf)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished sync command")
		applicationCtxCancel()
		return
	},
}
