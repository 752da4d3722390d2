package cli

// Export internal functions for testing.

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// ValidateConfigValue exports validateConfigValue for testing.
var ValidateConfigValue = validateConfigValue

// CheckDuration exports checkDuration for testing.
var CheckDuration = checkDuration

// ResolveLanguage exports resolveLanguage for testing.
var ResolveLanguage = resolveLanguage

// RenderTable exports renderTable for testing.
var RenderTable = renderTable
