package events

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// WatchClose はブローカー接続が切れたらログに残す。ctxが終われば戻る。
// 切れた後の注文は通知なしで確定するので、ここでサーバーは止めない
func WatchClose(ctx context.Context, closed <-chan *amqp.Error, log *zap.Logger) error {
	select {
	case <-ctx.Done():
		return nil
	case err, ok := <-closed:
		if !ok || err == nil {
			return nil
		}
		log.Error("rabbitmq connection lost; order.placed events are no longer published",
			zap.Int("code", err.Code),
			zap.String("reason", err.Reason),
			zap.Bool("server", err.Server))
		return nil
	}
}
