package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	p := PageRequest{}
	p.Normalize()
	assert.Equal(t, PageRequest{Limit: 20, Offset: 0}, p)

	p = PageRequest{Limit: 500, Offset: -3}
	p.Normalize()
	assert.Equal(t, PageRequest{Limit: 100, Offset: 0}, p)
}

func TestNewPageResponse_HasMore(t *testing.T) {
	assert.True(t, NewPageResponse(PageRequest{Limit: 10, Offset: 0}, 11).HasMore)
	assert.False(t, NewPageResponse(PageRequest{Limit: 10, Offset: 10}, 20).HasMore)
}
