package model_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cathexis-net/cathexis/internal/model"
)

func TestErrorIsByKind(t *testing.T) {
	err := model.MissingLabel(3)
	wrapped := fmt.Errorf("engine: query_agent_handle: %w", err)
	assert.True(t, model.IsKind(wrapped, model.KindMissingLabel))
	assert.False(t, model.IsKind(wrapped, model.KindMissingNode))

	var target *model.Error
	assert.True(t, errors.As(wrapped, &target))
}

func TestDimensionMismatchMessage(t *testing.T) {
	err := model.DimensionMismatch("feature.vector", 4, 3)
	assert.Contains(t, err.Error(), "expected 4")
	assert.Contains(t, err.Error(), "got 3")
}
