package mongodb

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildURI constructs a MongoDB connection URI from the options. When the
// URI field is set it wins over the individual host/port/credential fields.
func (o *Options) BuildURI() string {
	if o.URI != "" {
		return o.URI
	}

	var sb strings.Builder
	sb.WriteString("mongodb://")

	if o.Username != "" {
		sb.WriteString(url.QueryEscape(o.Username))
		if o.Password != "" {
			sb.WriteString(":")
			sb.WriteString(url.QueryEscape(o.Password))
		}
		sb.WriteString("@")
	}

	sb.WriteString(fmt.Sprintf("%s:%d", o.Host, o.Port))
	sb.WriteString("/")
	sb.WriteString(o.Database)

	params := url.Values{}
	if o.ReplicaSet != "" {
		params.Set("replicaSet", o.ReplicaSet)
	}
	if o.Username != "" && o.AuthSource != "" {
		params.Set("authSource", o.AuthSource)
	}
	if encoded := params.Encode(); encoded != "" {
		sb.WriteString("?")
		sb.WriteString(encoded)
	}

	return sb.String()
}

// RedactedURI returns the connection URI with any password removed, suitable
// for log output.
func RedactedURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "[unparseable-uri]"
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "REDACTED")
	}
	return u.String()
}
