// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walkthewalk/walkthewalk/internal/models"
)

func TestValidPromiseStatus(t *testing.T) {
	assert.True(t, models.ValidPromiseStatus(models.PromiseStatusOpen))
	assert.True(t, models.ValidPromiseStatus(models.PromiseStatusDone))
	assert.True(t, models.ValidPromiseStatus(models.PromiseStatusCancelled))
	assert.True(t, models.ValidPromiseStatus(models.PromiseStatusSnoozed))
	assert.False(t, models.ValidPromiseStatus("deleted"))
}
