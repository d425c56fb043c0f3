package cmd

import (
	"github.com/0xBased-lang/zmart-syncer/src/aggregate"
	"github.com/0xBased-lang/zmart-syncer/src/utils/logger"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(aggregateCmd)
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Run scheduled proposal and dispute vote aggregation passes",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := aggregate.NewController(conf)
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
		log.Debug("Finished aggregate command")
		applicationCtxCancel()
		return
	},
}
