package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput means the idea was empty after trimming.
	ErrInvalidInput = errors.New("no idea provided")

	// ErrNoTextReturned means the provider answered without any usable text.
	ErrNoTextReturned = errors.New("upstream returned no text output")

	// ErrUpstream covers every other failure to get a result from the
	// provider: transport errors, provider errors, unparseable output.
	ErrUpstream = errors.New("upstream generation failed")

	ErrInvalidUpstreamJSON = fmt.Errorf("%w: output is not a JSON object", ErrUpstream)

	// ErrMalformedResult is only returned when strict result checking is on.
	ErrMalformedResult = fmt.Errorf("%w: output does not match the prompt schema", ErrUpstream)
)
