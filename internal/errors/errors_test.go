// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestE_Error(t *testing.T) {
	assert.Equal(t, "config: bad url", New(Config, "bad url").Error())
	assert.Equal(t, "fatal: login: boom", Wrap(Fatal, "login", stderrors.New("boom")).Error())
}

func TestKindOf(t *testing.T) {
	inner := Wrap(Transport, "post", stderrors.New("connection refused"))
	outer := fmt.Errorf("context: %w", Wrap(Fatal, "login", inner))

	assert.Equal(t, Fatal, KindOf(outer))
	assert.True(t, Is(outer, Fatal))
	assert.True(t, Is(outer, Transport))
	assert.False(t, Is(outer, Soft))
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain")))
}

func TestUnwrap(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := Wrap(Soft, "item", sentinel)
	assert.ErrorIs(t, err, sentinel)
}
