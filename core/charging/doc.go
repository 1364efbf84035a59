// Package charging simulates a battery charged under a fuzzy controller.
//
// The Controller maps state of charge, ambient temperature and device
// utilisation to a charging voltage and current. The Simulator integrates
// the resulting power second by second until the target state of charge is
// reached and returns the SoC, voltage and current trajectories.
package charging
