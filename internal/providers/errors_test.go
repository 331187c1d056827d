package providers

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{ErrConfigurationMissing, KindConfigurationMissing},
		{fmt.Errorf("wrap: %w", ErrConfigurationMissing), KindConfigurationMissing},
		{&RequestFailedError{Vendor: SourceCotype, StatusCode: 500}, KindRequestFailed},
		{&TransportError{Vendor: SourceCotype, Err: errors.New("dial")}, KindTransport},
		{malformed(SourceCotype, "x"), KindMalformedResponse},
		{errors.New("other"), KindUnknown},
	}
	for _, c := range cases {
		if got := Kind(c.err); got != c.want {
			t.Errorf("Kind(%v) = %s, want %s", c.err, got, c.want)
		}
	}
}

func TestRequestFailedErrorHidesBody(t *testing.T) {
	err := &RequestFailedError{Vendor: SourceCotype, StatusCode: 401, Body: `{"detail":"bad token"}`}
	if got := err.Error(); got != "cotype http 401" {
		t.Errorf("unexpected error text %q", got)
	}
}
