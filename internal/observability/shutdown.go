package observability

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

// ShutdownFunc flushes and stops a provider.
type ShutdownFunc func(context.Context) error

// Shutdown calls every fn in order, even after a failure, and returns all errors.
func Shutdown(ctx context.Context, fns ...ShutdownFunc) error {
	var result *multierror.Error
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		if err := fn(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
