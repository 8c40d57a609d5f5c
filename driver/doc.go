// Package driver repeats sieve cycles and signals the boundary between them.
//
// A Driver runs one cycle on an engine, checks the reporter, and then pulses
// a sequence of indicators (red, blue, green by default), each on for the
// pulse duration and then off. It repeats until the configured number of
// cycles is reached or the context is done. Cancellation is observed between
// cycles and during pulses, never in the middle of a scan.
package driver
