// Package connectivity tracks whether the remote system of record is
// reachable.
//
// A [Monitor] combines two signals: the result of periodic health probes
// (see [Prober]) and a host-controlled offline marker file (see
// [MarkerWatcher]). The effective state is online only when the last probe
// succeeded and no marker is present. Subscribers are notified on
// transitions of the effective state only.
package connectivity
