package api

import (
	"regexp"
	"strings"
)

const (
	// hidingMask replaces the hidden part of a secret in log output.
	hidingMask = "********"

	// maskShowLen is how many characters stay visible on each side of
	// a masked secret.
	maskShowLen = 4

	// exportLogLimit caps logged configuration.export payloads.
	exportLogLimit = 100
)

// privateFieldPattern matches JSON string fields whose values must not
// reach the logs: tokens, sessions, passwords, and short string results
// such as the session id returned by user.login.
var privateFieldPattern = regexp.MustCompile(`"(token|auth|sessionid|password|result)":\s*"([^"]*)"`)

// maskSecret replaces the middle of s with the hiding mask, keeping at
// most showLen characters visible on each side. Short strings are
// replaced entirely so their length is not leaked.
func maskSecret(s string, showLen int) string {
	if showLen == 0 || len(s) <= len(hidingMask)+showLen*2 {
		return hidingMask
	}
	return s[:showLen] + hidingMask + s[len(s)-showLen:]
}

// hidePrivate masks secret values in a serialized JSON-RPC body before
// it is written to the debug log. Version strings and exported
// configuration in result fields stay readable.
func hidePrivate(body string) string {
	return privateFieldPattern.ReplaceAllStringFunc(body, func(m string) string {
		idx := privateFieldPattern.FindStringSubmatchIndex(m)
		field := m[idx[2]:idx[3]]
		value := m[idx[4]:idx[5]]
		if field == "result" && resultReadable(value) {
			return m
		}
		return m[:idx[4]] + maskSecret(value, maskShowLen) + m[idx[5]:]
	})
}

// resultReadable reports whether a result value may be logged as is:
// configuration exports and version strings carry no secrets.
func resultReadable(v string) bool {
	if strings.HasPrefix(v, "zabbix_export") {
		return true
	}
	if len(v) < 5 {
		return false
	}
	for _, r := range v[:5] {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// cutBody shortens a logged body to at most limit bytes.
func cutBody(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
