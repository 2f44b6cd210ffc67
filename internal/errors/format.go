package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Describe renders an error as a short user-visible description string.
// The interactive surface shows this next to an empty completion instead
// of crashing or hanging, so it stays one line and omits codes for
// plain errors.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var le *LanternError
	if stderrors.As(err, &le) {
		var b strings.Builder
		b.WriteString(le.Message)
		if src, ok := le.Details["source"]; ok {
			fmt.Fprintf(&b, " (source: %s)", src)
		}
		return b.String()
	}

	return err.Error()
}

// DescribeVerbose renders an error with code, category, and cause chain.
// Used in logs and diagnostic output, not in the interactive surface.
func DescribeVerbose(err error) string {
	if err == nil {
		return ""
	}

	var le *LanternError
	if !stderrors.As(err, &le) {
		return err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s/%s]", le.Message, le.Code, le.Category)
	for k, v := range le.Details {
		fmt.Fprintf(&b, "\n  %s: %s", k, v)
	}
	if le.Cause != nil {
		fmt.Fprintf(&b, "\n  cause: %s", le.Cause.Error())
	}
	return b.String()
}
