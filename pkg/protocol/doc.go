// Package protocol implements the Zabbix communications protocol framing.
//
// Every message exchanged with a Zabbix server, proxy or agent is wrapped
// in a 13-byte header: the literal "ZBXD" signature, one flags byte, a
// little-endian uint32 payload length and a little-endian uint32 reserved
// field (the uncompressed length when compression is in use).
//
// Pack and Read are the only entry points; higher-level clients in
// pkg/getter and pkg/sender build on them.
package protocol
