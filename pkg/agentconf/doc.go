// Package agentconf reads Zabbix agent configuration files
// (zabbix_agentd.conf and friends): a flat list of Key=Value lines.
//
// Only the keys relevant to sending data are interpreted: ServerActive,
// Server and SourceIP. TLS* keys are collected verbatim for callers that
// build encrypted connections. Watch re-reads the file when it changes.
package agentconf
