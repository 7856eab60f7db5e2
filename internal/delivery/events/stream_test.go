package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateExponentialBackoff(t *testing.T) {
	assert.Nil(t, generateExponentialBackoff(1))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, generateExponentialBackoff(3))
	assert.Len(t, generateExponentialBackoff(MaxDeliveryAttempts), MaxDeliveryAttempts-1)
}
