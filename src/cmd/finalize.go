package cmd

import (
	"github.com/0xBased-lang/zmart-syncer/src/finalize"
	"github.com/0xBased-lang/zmart-syncer/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(finalizeCmd)
}

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Finalize resolved markets whose dispute window elapsed",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := finalize.NewController(conf)
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
		log.Debug("Finished finalize command")
		applicationCtxCancel()
		return
	},
}
