// SPDX-License-Identifier: MPL-2.0

// Package node provides the execution-node abstraction: the platform flag,
// node-specific tool locations, file existence checks and process launch.
//
// Local runs processes on the current machine. A Local may be configured to
// describe a different platform (e.g. a Windows build host reached through a
// shared filesystem), in which case only translation and argument wrapping
// change; processes still start locally.
package node
