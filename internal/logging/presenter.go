// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"os"
)

// VerboseEnv enables [DEBUG] output when set to "1".
const VerboseEnv = "MXPROBE_VERBOSE"

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Mask(err.Error())
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// Verbose reports whether debug output is enabled.
func Verbose() bool {
	return os.Getenv(VerboseEnv) == "1"
}

// Logf prints a masked [DEBUG] line for component when verbose mode is on.
func Logf(component, format string, args ...any) {
	if !Verbose() {
		return
	}
	fmt.Fprintf(os.Stderr, "[DEBUG] %s: %s\n", component, Mask(fmt.Sprintf(format, args...)))
}
