package service

import (
	"errors"
	"fmt"
)

// Import failure sentinels. Use errors.Is on the error returned by Import.
var (
	ErrNoTextExtracted     = errors.New("document contains no text")
	ErrAddressNotFound     = errors.New("no delivery address found in document")
	ErrAddressUnresolved   = errors.New("address could not be resolved")
	ErrResolverUnavailable = errors.New("geocoding service unavailable")

	// ErrImportInProgress is returned when an import is started while another one is running.
	ErrImportInProgress = errors.New("another import is in progress")
	// ErrPointNotFound is returned when editing an id that is not stored.
	ErrPointNotFound = errors.New("point not found")
)

// ErrorKind names the reason an import failed.
type ErrorKind string

const (
	KindNoTextExtracted     ErrorKind = "NoTextExtracted"
	KindAddressNotFound     ErrorKind = "AddressNotFound"
	KindAddressUnresolved   ErrorKind = "AddressUnresolved"
	KindResolverUnavailable ErrorKind = "ResolverUnavailable"
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNoTextExtracted:
		return ErrNoTextExtracted
	case KindAddressNotFound:
		return ErrAddressNotFound
	case KindAddressUnresolved:
		return ErrAddressUnresolved
	case KindResolverUnavailable:
		return ErrResolverUnavailable
	default:
		return nil
	}
}

// ImportError describes a failed import. It matches the sentinel of its Kind with
// errors.Is and unwraps to the underlying cause, if any.
type ImportError struct {
	Kind    ErrorKind
	Address string // address that was extracted or supplied, empty for extraction failures
	Err     error  // underlying cause
}

func (e *ImportError) Error() string {
	msg := fmt.Sprintf("import failed: %v", e.Kind.sentinel())
	if e.Address != "" {
		msg += fmt.Sprintf(" (address %q)", e.Address)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel matching e.Kind.
func (e *ImportError) Is(target error) bool {
	sentinel := e.Kind.sentinel()
	return sentinel != nil && target == sentinel
}

// Retryable reports whether re-submitting the same document may succeed.
func (e *ImportError) Retryable() bool {
	return e.Kind == KindResolverUnavailable
}

// Message returns the operator-facing explanation, naming the field that needs attention.
func (e *ImportError) Message() string {
	switch e.Kind {
	case KindNoTextExtracted:
		return "The document contains no readable text. If it is a scanned image, export it " +
			"with a text layer and import it again."
	case KindAddressNotFound:
		return "No delivery address was found. Expected a line labelled \"Lieferadresse:\" or a " +
			"street with house number followed by a 5-digit postal code and city. " +
			"Correct the document or enter the address manually."
	case KindAddressUnresolved:
		return fmt.Sprintf("The delivery address %q could not be found on the map. "+
			"Check street, house number and postal code in the document.", e.Address)
	case KindResolverUnavailable:
		return fmt.Sprintf("The geocoding service could not be reached while resolving %q. "+
			"Nothing was saved; import the document again in a moment.", e.Address)
	default:
		return e.Error()
	}
}

// statusLabel is the metrics label for the kind.
func (k ErrorKind) statusLabel() string {
	switch k {
	case KindNoTextExtracted:
		return "no_text"
	case KindAddressNotFound:
		return "address_not_found"
	case KindAddressUnresolved:
		return "unresolved"
	case KindResolverUnavailable:
		return "unavailable"
	default:
		return "failure"
	}
}
