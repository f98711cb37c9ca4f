package syntaxfilter

import "strings"

// MarkerKind is the closed set of dispatch markers a method may carry.
type MarkerKind string

const (
	MarkerHandle           MarkerKind = "handle"
	MarkerNotification     MarkerKind = "notification"
	MarkerPipeline         MarkerKind = "pipeline"
	MarkerExposeAsEndpoint MarkerKind = "exposeAsEndpoint"
)

var knownMarkers = map[MarkerKind]bool{
	MarkerHandle:           true,
	MarkerNotification:     true,
	MarkerPipeline:         true,
	MarkerExposeAsEndpoint: true,
}

// markerDirective is one `//relay:<marker> <args>` line found on a
// declaration's doc comment.
type markerDirective struct {
	Marker MarkerKind
	Args   string
}

const directivePrefix = "//relay:"

// parseMarkerLine parses a single raw comment line (including its leading
// "//") into a markerDirective, or reports ok=false if the line is not a
// relay marker directive. Matching is lexical and case-sensitive per spec
// §4.1 — there is no Go analogue of the C# "Attribute suffix", so none is
// stripped (see DESIGN.md open-question resolution).
func parseMarkerLine(raw string) (markerDirective, bool) {
	if !strings.HasPrefix(raw, directivePrefix) {
		return markerDirective{}, false
	}
	rest := raw[len(directivePrefix):]
	name, args, _ := strings.Cut(rest, " ")
	marker := MarkerKind(strings.TrimSpace(name))
	if !knownMarkers[marker] {
		return markerDirective{}, false
	}
	return markerDirective{Marker: marker, Args: strings.TrimSpace(args)}, true
}
