// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"strings"

	"zub/lib/store"
)

// Target is a parsed remote URL: either a local filesystem path, or a
// host to SSH into plus the path of the repository there, matching
// the "user@host:/path" | "/local/path" scp-like grammar remotes are
// configured with.
type Target struct {
	Local bool
	Host  string // set only when !Local
	Path  string
}

// ParseTarget parses one remote's URL. A URL containing a ':' before
// its first '/' is treated as host:path; anything else is a local
// path. This deliberately does not attempt to support literal
// Windows-style drive-letter paths, which is not a concern here.
func ParseTarget(remoteName, url string) (Target, error) {
	if url == "" {
		return Target{}, &store.RemoteConfigError{Remote: remoteName, Reason: "empty url"}
	}
	if strings.HasPrefix(url, "/") || strings.HasPrefix(url, "./") || strings.HasPrefix(url, "../") {
		return Target{Local: true, Path: url}, nil
	}

	colon := strings.IndexByte(url, ':')
	slash := strings.IndexByte(url, '/')
	if colon < 0 || (slash >= 0 && slash < colon) {
		return Target{Local: true, Path: url}, nil
	}

	host, path := url[:colon], url[colon+1:]
	if host == "" || path == "" {
		return Target{}, &store.RemoteConfigError{Remote: remoteName, Reason: "malformed host:path url: " + url}
	}
	return Target{Local: false, Host: host, Path: path}, nil
}
