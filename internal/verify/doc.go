// Package verify runs integration suites against live Zabbix components:
// agent item queries, trapper value submissions and JSON-RPC API calls,
// described by a YAML scenario file.
//
// Each selected suite runs twice, once synchronously and once with its
// checks spread over a bounded pool of goroutines. A failing check marks
// its suite failed but never aborts the run: every suite log is always
// produced and then inspected. A suite log ends with the line "OK" on
// success and "FAILED (failures=N)" otherwise, and the whole run passes
// exactly when the last non-empty line of every produced log contains
// the success marker.
package verify
