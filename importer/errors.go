package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceLoad aborts the whole import.
	ErrSourceLoad = errors.New("source load failure")
	// ErrUnsupportedClip skips one animation clip.
	ErrUnsupportedClip = errors.New("unsupported animation clip")
	// ErrMissingOutput skips one output artifact.
	ErrMissingOutput = errors.New("missing output target")
	// ErrDataIntegrity rejects the asset.
	ErrDataIntegrity = errors.New("data integrity violation")
	ErrConfig        = errors.New("invalid configuration")
)

type ImportError struct {
	Kind     error
	Artifact string
	Err      error
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Artifact)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Artifact, e.Err)
}

func (e *ImportError) Is(target error) bool {
	return target == e.Kind
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func integrityError(artifact string, format string, args ...interface{}) error {
	return &ImportError{Kind: ErrDataIntegrity, Artifact: artifact, Err: fmt.Errorf(format, args...)}
}
