package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginHosts(t *testing.T) {
	t.Parallel()

	got := originHosts([]string{"http://localhost:5173", "https://app.example.com", "*", "not a url", ""})
	assert.Equal(t, []string{"localhost:5173", "app.example.com", "*"}, got)
}
