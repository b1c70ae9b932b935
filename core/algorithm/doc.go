// Package algorithm contains the pluggable scheduling strategies that assign
// pilot signals to active charging sessions. Algorithms observe the facility
// through the Interface boundary and never mutate sessions directly.
//
// Two strategies are provided: EarliestDeadlineFirst and LeastLaxityFirst.
// Both emit one-step lookahead schedules built by stepping each session one
// position along the facility's discrete pilot grid.
package algorithm
