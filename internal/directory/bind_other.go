//go:build !windows

package directory

import (
	"errors"

	"github.com/go-ldap/ldap/v3"
)

var errSSPIUnsupported = errors.New("sspi auth requires windows; set directory.auth to ntlm, simple or anonymous")

func bindCurrentUser(_ *ldap.Conn, _ string) error {
	return errSSPIUnsupported
}
