package contract

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"validation", fmt.Errorf("%w: query is empty", ErrValidation), KindValidation},
		{"unknown tool", errors.Join(ErrUnknownTool, ErrNamespaceNotFound), KindUnknownTool},
		{"arity", errors.Join(ErrStepExecution, fmt.Errorf("%w: expected 2 argument(s), got 1", ErrArity)), KindArity},
		{"step", errors.Join(ErrStepExecution, errors.New("cannot divide by zero")), KindStepExecution},
		{"other", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("%s: KindOf() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
