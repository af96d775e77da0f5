package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitPrometheus_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitPrometheus()
		InitPrometheus()
	})
}
