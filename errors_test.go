package facet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		msg      string
	}{
		{err: configErrorf("aggregation %q not defined in config", "x"), sentinel: ErrConfiguration, msg: `aggregation "x" not defined in config`},
		{err: usageErrorf("item %v not found", 7), sentinel: ErrUsage, msg: "item 7 not found"},
		{err: dataErrorf("the key %q does not exist in facets lists", "genre"), sentinel: ErrData, msg: `the key "genre" does not exist in facets lists`},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.msg)
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tt.err), tt.sentinel)

			for _, other := range []error{ErrConfiguration, ErrUsage, ErrData} {
				if other != tt.sentinel {
					assert.False(t, errors.Is(tt.err, other))
				}
			}
		})
	}
}
