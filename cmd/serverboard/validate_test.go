package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunValidate_ValidConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", `
title: Lab Servers
port: 4300
refresh_interval: 30s
api:
  url: https://servers.example.com
  timeout: 5s
  headers:
    Authorization: Bearer token
`)

	out, _, err := execute(t, context.Background(), "validate", "-c", path)
	require.NoError(t, err)

	for _, phrase := range []string{
		"Config is valid!",
		"Title:            Lab Servers",
		"Port:             4300",
		"API URL:          https://servers.example.com",
		"API timeout:      5s",
		"Refresh interval: 30s",
		"Headers:          1",
	} {
		assert.Contains(t, out, phrase)
	}
}

func TestRunValidate_RefreshDisabled(t *testing.T) {
	path := writeFile(t, "config.yaml", "port: 4300\n")

	out, _, err := execute(t, context.Background(), "validate", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Refresh interval: disabled")
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	path := writeFile(t, "invalid.yaml", "port: 70000\n")

	_, _, err := execute(t, context.Background(), "validate", "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be between")
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, _, err := execute(t, context.Background(), "validate", "-c", "/nonexistent/serverboard.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRunValidate_ConfigFlagRequired(t *testing.T) {
	_, _, err := execute(t, context.Background(), "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"config"`)
}
