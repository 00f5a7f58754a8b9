package diag

import (
	"fmt"
)

type Code uint16

const (
	// Fallback for diagnostics without an assigned code
	UnknownCode Code = 0

	// Tool codes: user input that cannot be turned into valid library calls
	IOLoadFile  Code = 1001
	SrcTooLarge Code = 1002
	BadSpan     Code = 1003
	BadLocation Code = 1004
	BadLine     Code = 1005

	// Annotation codes: spans marked from the CLI
	UserAnnotation Code = 1100

	// Observability codes
	ObsTimings Code = 1900
)

var codeDescription = map[Code]string{
	UnknownCode:    "Unknown diagnostic",
	IOLoadFile:     "I/O load file error",
	SrcTooLarge:    "Source buffer too large",
	BadSpan:        "Span out of range",
	BadLocation:    "Location out of range",
	BadLine:        "Line out of range",
	UserAnnotation: "User annotation",
	ObsTimings:     "Phase timings",
}

// ID returns the stable string identifier used in every output format.
func (c Code) ID() string {
	if ic := int(c); ic >= 1000 && ic < 2000 {
		return fmt.Sprintf("PPT%04d", ic)
	}
	return "PPT0000"
}

// Title returns the short description of the code.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
