package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifyPersistRetriesOnlyTransientFailures(t *testing.T) {
	transient := classifyPersist(fmt.Errorf("create request: %w", errors.New("connection reset")))
	assert.True(t, IsTransient(transient))
	assert.True(t, DefaultRetryPolicy().ShouldRetry(1, transient))

	for _, permanent := range []error{
		fmt.Errorf("create request: %w", gorm.ErrDuplicatedKey),
		fmt.Errorf("create request: %w", gorm.ErrInvalidData),
		fmt.Errorf("create request: %w", context.Canceled),
		context.DeadlineExceeded,
	} {
		classified := classifyPersist(permanent)
		assert.False(t, IsTransient(classified), "%v should be permanent", permanent)
		assert.False(t, DefaultRetryPolicy().ShouldRetry(1, classified), "%v should not be retried", permanent)
	}

	assert.NoError(t, classifyPersist(nil))
}
