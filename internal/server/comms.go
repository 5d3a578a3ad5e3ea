package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/openolat/olat-gateway/pkg/commsutil"
	"github.com/openolat/olat-gateway/pkg/dispatcher"
)

const commsLogPrefix = "server:comms"

var commsConnect = commsutil.Connect

// DispatchHandler answers gateway requests received over COMMS. Each request runs
// with requestTimeout, shortened when the caller asks for less.
func DispatchHandler(ctx context.Context, disp *dispatcher.Dispatcher, requestTimeout time.Duration) comms.MsgHandler {
	return func(msg *comms.Msg) {
		var req dispatcher.Request
		if err := commsutil.DecodePayload(msg.Data, &req); err != nil {
			slog.Error(fmt.Sprintf("%s - failed to decode request: %v", commsLogPrefix, err))
			resp := &dispatcher.Response{
				Ok: false,
				Error: &dispatcher.ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: "Failed to decode request",
				},
			}
			commsutil.Respond(msg, resp)
			return
		}

		timeout := requestTimeout
		if req.Ctx != nil && req.Ctx.TimeoutMs > 0 {
			if d := time.Duration(req.Ctx.TimeoutMs) * time.Millisecond; d < timeout {
				timeout = d
			}
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		resp := disp.Dispatch(reqCtx, &req)
		commsutil.Respond(msg, resp)
	}
}

// SubscribeDispatcher subscribes disp to subject on a queue group so several gateway
// nodes share the load.
func SubscribeDispatcher(ctx context.Context, nc *comms.Conn, subject, queue string, disp *dispatcher.Dispatcher, requestTimeout time.Duration) (*comms.Subscription, error) {
	handler := DispatchHandler(ctx, disp, requestTimeout)
	var (
		sub *comms.Subscription
		err error
	)
	if queue == "" {
		sub, err = nc.Subscribe(subject, handler)
	} else {
		sub, err = nc.QueueSubscribe(subject, queue, handler)
	}
	if err != nil {
		return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", commsLogPrefix, subject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", commsLogPrefix, subject))
	return sub, nil
}
