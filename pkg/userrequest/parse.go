package userrequest

import (
	"strconv"
	"strings"
)

// minFrameworkTokens is the token count below which a segment is a plain path segment.
const minFrameworkTokens = 4

// Parse decodes decodedURI (already percent-decoded) mounted under uriPrefix. params holds
// the flattened query and form parameters; it is copied, never modified.
//
// A segment with fewer than four tokens is not an error: the returned request simply
// reports IsValidDispatchURI() == false. Protocol violations return an *AssertError.
func Parse(uriPrefix, decodedURI string, params map[string]string) (*UserRequest, error) {
	rest, ok := strings.CutPrefix(decodedURI, uriPrefix)
	if !ok {
		return nil, assertErr(ErrPrefixMismatch, decodedURI)
	}

	r := newUserRequest(uriPrefix, params)
	r.nonParsedURI = rest

	segment, moduleURI, found := strings.Cut(rest, "/")
	if found {
		r.encodedSegment = segment
		r.hasSegment = true
		if moduleURI != "" {
			if strings.Contains(moduleURI, "../") {
				return nil, assertErr(ErrPathTraversal, moduleURI)
			}
			r.moduleURI = moduleURI
		}
		if err := r.parseEncodedParams(segment); err != nil {
			return nil, err
		}
	}

	r.uuid = strconv.FormatInt(count.Add(1), 10)
	return r, nil
}

func (r *UserRequest) parseEncodedParams(encoded string) error {
	tokens := tokenize(encoded)
	if len(tokens) < minFrameworkTokens {
		return nil
	}

	windowID := unsetIfZero(tokens[0])
	timestampID := unsetIfZero(tokens[1])
	componentID := unsetIfZero(tokens[2])
	componentVersion := tokens[3]

	if len(tokens) < 5 {
		return assertErr(ErrMissingMode, encoded)
	}
	mode, err := strconv.Atoi(tokens[4])
	if err != nil {
		return assertErr(ErrInvalidMode, encoded)
	}

	pairs := tokens[5:]
	if len(pairs)%2 != 0 {
		return assertErr(ErrOddParams, encoded)
	}
	for i := 0; i < len(pairs); i += 2 {
		r.params[pairs[i]] = pairs[i+1]
	}

	r.windowID = windowID
	r.timestampID = timestampID
	r.componentID = componentID
	r.componentVersion = componentVersion
	r.mode = mode
	r.isValidDispatchURI = true
	return nil
}

// tokenize splits on ParamDelim and drops empty tokens.
func tokenize(s string) []string {
	parts := strings.Split(s, ParamDelim)
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func unsetIfZero(token string) string {
	if token == unsetToken {
		return ""
	}
	return token
}
