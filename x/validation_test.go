package x

import (
	"testing"

	weave "github.com/iov-one/vestengine"
	"github.com/iov-one/vestengine/errors"
	"github.com/iov-one/vestengine/weavetest"
)

func TestValidAddress(t *testing.T) {
	cases := map[string]struct {
		addr    weave.Address
		wantErr *errors.Error
	}{
		"valid":     {addr: weavetest.NewCondition().Address(), wantErr: nil},
		"missing":   {addr: nil, wantErr: errors.ErrEmpty},
		"too short": {addr: weave.Address{1, 2, 3}, wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := ValidAddress("owner", tc.addr); !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
		})
	}
}
