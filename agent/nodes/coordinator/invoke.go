package coordinatornode

import (
	"context"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

// InvokeWorker runs one worker call bounded by timeout. A panic or an
// expired deadline becomes a failed result, never an error.
func InvokeWorker(
	ctx context.Context,
	worker contractx.Worker,
	msg contractx.Message,
	timeout time.Duration,
) contractx.TaskResult {
	started := time.Now()
	agentID := msg.Recipient
	if worker == nil {
		return contractx.FailedResult(agentID, started, fmt.Errorf("%w: worker %s is not registered", contractx.ErrWorkerFailure, agentID))
	}
	agentID = worker.ID()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan contractx.TaskResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- contractx.FailedResult(agentID, started, fmt.Errorf("%w: panic: %v", contractx.ErrWorkerFailure, r))
			}
		}()
		done <- worker.ProcessTask(ctx, msg)
	}()

	select {
	case res := <-done:
		if res.AgentID == "" {
			res.AgentID = agentID
		}
		if res.Data == nil {
			res.Data = contractx.EmptyPayload{}
		}
		return res
	case <-ctx.Done():
		return contractx.FailedResult(agentID, started, fmt.Errorf("%w: %s: %v", contractx.ErrTimeout, agentID, ctx.Err()))
	}
}

func taskMessage(recipient string, content string, md map[string]any) (contractx.Message, error) {
	return contractx.NewMessage(contractx.MessageTask, contractx.AgentCoordinator, recipient, content, md)
}
