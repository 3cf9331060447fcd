// Package session implements the device-ownership state machine.
//
// Every operation is a single store transaction: login arbitration,
// pending-request lifecycle, approve/decline resolution, heartbeat
// validation, and the background sweeper that reclaims abandoned sessions.
// The incumbent device keeps ownership until it explicitly approves a
// transfer or the sweeper times it out.
package session
