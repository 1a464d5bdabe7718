package coordinatornode

import (
	"fmt"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

func Finalize(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return GraphOutput{Response: in.Response}, nil
}
