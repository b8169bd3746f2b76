package assembly

import "fmt"

// TemplateLoadError means the template bytes could not be used. It is fatal
// to the render attempt and is not retried.
type TemplateLoadError struct {
	Reason string
	Err    error
}

func (e *TemplateLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("template load failed: %s: %v", e.Reason, e.Err)
	}
	return "template load failed: " + e.Reason
}

func (e *TemplateLoadError) Unwrap() error {
	return e.Err
}

func loadError(reason string, err error) *TemplateLoadError {
	return &TemplateLoadError{Reason: reason, Err: err}
}
