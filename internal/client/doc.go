// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the offline-first client runtime: local stores,
// the connectivity monitor and its feeders, the client services and the
// background workers that keep the pending operation queue draining.
package client
