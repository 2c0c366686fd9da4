package protocol

import (
	"strconv"
	"strings"
)

// CRLF terminates every command and reply line
const CRLF = "\r\n"

// Encode builds the wire frame for verb and args: the verb, the arguments
// joined by single spaces, then CRLF.
func Encode(verb string, args ...string) ([]byte, error) {
	if verb == "" {
		return nil, NewEncodingError(verb, "empty command verb")
	}
	if containsLineBreak(verb) {
		return nil, NewEncodingError(verb, "command verb contains CR or LF")
	}
	for i, arg := range args {
		if containsLineBreak(arg) {
			return nil, NewEncodingError(verb, "argument "+strconv.Itoa(i+1)+" contains CR or LF")
		}
	}

	var b strings.Builder
	b.WriteString(verb)
	if len(args) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(args, " "))
	}
	b.WriteString(CRLF)
	return []byte(b.String()), nil
}

// Decode strips the trailing CR/LF from a raw reply line. Replies are
// verb-specific, so no further validation happens here.
func Decode(raw string) string {
	return strings.TrimRight(raw, "\r\n")
}

func containsLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

