// Package apps holds the compiled-in applications of the training
// desktop: the field notebook, the system monitor, and the mission HUD
// overlay. They are small but real, exercising the window, state, and
// overlay contracts end to end; mission-specific tools arrive through
// catalog descriptor files instead.
package apps
