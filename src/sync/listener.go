package sync

import (
	"context"
	"errors"

	"github.com/0xBased-lang/zmart-syncer/src/utils/config"
	"github.com/0xBased-lang/zmart-syncer/src/utils/ledger"
	"github.com/0xBased-lang/zmart-syncer/src/utils/monitoring"
	"github.com/0xBased-lang/zmart-syncer/src/utils/task"

	"github.com/cenkalti/backoff/v4"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type subscribeRequest struct {
	Jsonrpc string            `json:"jsonrpc"`
	Id      int               `json:"id"`
	Method  string            `json:"method"`
	Params  map[string]string `json:"params"`
}

type notificationParams struct {
	Result *ledger.TransactionNotification `json:"result"`
}

type notificationEnvelope struct {
	Method string              `json:"method"`
	Params *notificationParams `json:"params"`
}

// Streams transaction notifications from the node's websocket endpoint.
// Reconnects with backoff whenever the stream breaks, the subscription is
// re-established on every connect.
type Listener struct {
	*task.Task

	monitor monitoring.Monitor

	Output chan *ledger.TransactionNotification
}

func NewListener(config *config.Config) (self *Listener) {
	self = new(Listener)

	self.Output = make(chan *ledger.TransactionNotification, config.Syncer.ListenerChannelSize)

	self.Task = task.NewTask(config, "listener").
		WithSubtaskFunc(self.run).
		WithOnAfterStop(func() {
			close(self.Output)
		})

	return
}

func (self *Listener) WithMonitor(monitor monitoring.Monitor) *Listener {
	self.monitor = monitor
	return self
}

func (self *Listener) run() (err error) {
	err = task.NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(0).
		WithMaxInterval(self.Config.Syncer.ListenerBackoffInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			if self.IsStopping.Load() {
				return backoff.Permanent(err)
			}
			self.monitor.GetReport().Syncer.Errors.ListenerReconnects.Inc()
			self.Log.WithError(err).Warn("Notification stream broken, reconnecting")
			return err
		}).
		Run(self.listen)
	if err != nil && self.IsStopping.Load() {
		return nil
	}
	return
}

func (self *Listener) listen() (err error) {
	conn, _, err := websocket.Dial(self.Ctx, self.Config.Ledger.NotificationUrl, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Notifications can carry many instructions
	conn.SetReadLimit(1 << 22)

	err = wsjson.Write(self.Ctx, conn, &subscribeRequest{
		Jsonrpc: "2.0",
		Id:      1,
		Method:  "transactionSubscribe",
		Params: map[string]string{
			"program": self.Config.Ledger.ProgramId,
		},
	})
	if err != nil {
		return
	}

	self.Log.WithField("url", self.Config.Ledger.NotificationUrl).Info("Subscribed to transaction notifications")

	for {
		var envelope notificationEnvelope
		err = wsjson.Read(self.Ctx, conn, &envelope)
		if err != nil {
			if errors.Is(err, context.Canceled) && self.IsStopping.Load() {
				return nil
			}
			return
		}

		if envelope.Method != "transactionNotification" {
			// Subscription confirmations etc.
			continue
		}

		if envelope.Params == nil || envelope.Params.Result == nil {
			self.monitor.GetReport().Syncer.Errors.ListenerParseErrors.Inc()
			self.Log.Warn("Notification without a result, skipping")
			continue
		}

		self.monitor.GetReport().Syncer.State.NotificationsReceived.Inc()

		select {
		case self.Output <- envelope.Params.Result:
		case <-self.StopChannel:
			return nil
		}
	}
}
