// Package preflight provides readiness checks for the paths and services
// mediabuddy depends on.
//
// The CLI "mediabuddy status" command runs RunAll and renders each Result.
// Directory checks only report; a missing directory is never created here.
package preflight
