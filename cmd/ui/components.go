package ui

import (
	"fmt"
	"strings"

	"github.com/utkarsh5026/errtrace/pkg/errtrace"
)

// FormatTrace renders an error that crossed instrumented calls: its message,
// the diagnostic text it started with, and the calls it passed through.
func FormatTrace(err error) string {
	if err == nil {
		return SuccessMessage("no error")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", Red(IconFailure), Red(err.Error())))

	original, ok := errtrace.OriginalStackOf(err)
	if !ok {
		b.WriteString(Gray("  (not intercepted by any instrumented call)"))
		return b.String()
	}

	b.WriteString("\n" + Section("Original diagnostic") + "\n")
	b.WriteString(StackBox(original) + "\n")

	b.WriteString("\n" + Section("Intercepted in") + "\n")
	b.WriteString(FormatFrames(errtrace.FramesOf(err)))
	return b.String()
}

// FormatFrames lists trace names innermost first.
func FormatFrames(frames []string) string {
	var b strings.Builder
	for i, name := range frames {
		b.WriteString(fmt.Sprintf("  %s %s %s\n", Gray(fmt.Sprintf("%2d", i+1)), Cyan(IconFrame), Blue(name)))
	}
	return b.String()
}

// SuccessMessage creates a success message with a checkmark icon
func SuccessMessage(message string, details ...string) string {
	parts := []string{Green(IconCheck), Green(message)}
	for _, detail := range details {
		parts = append(parts, Blue(detail))
	}
	return strings.Join(parts, " ")
}

// YesNo renders a boolean as a colored check or cross.
func YesNo(v bool) string {
	if v {
		return Green(IconCheck)
	}
	return Gray("-")
}
