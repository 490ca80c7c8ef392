package chainconfig

import "github.com/pkg/errors"

// ErrConfiguration is returned, wrapped with a description, for malformed
// chain configuration: a fork table with a gap or overlap, a rule set missing
// a policy, or a genesis that does not commit to its own state. It is only
// ever returned at setup time.
var ErrConfiguration = errors.New("ErrConfiguration")

// IsConfigurationError returns whether err is, or wraps, ErrConfiguration
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
