//go:build windows

package directory

import (
	"github.com/go-ldap/ldap/v3"
	"github.com/go-ldap/ldap/v3/gssapi"
)

// bindCurrentUser binds as the logged-on Windows principal through SSPI.
func bindCurrentUser(conn *ldap.Conn, host string) error {
	client, err := gssapi.NewSSPIClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return conn.GSSAPIBind(client, "ldap/"+host, "")
}
