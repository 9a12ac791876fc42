// Package paths provides the path algebra and well-known locations used by
// wfpack.
//
// Containment questions ("is this path inside the framework directory?",
// "is this an ancestor of the project root?") are answered by comparing
// cleaned path segments, never by string prefix matching, so trailing
// slashes, "." and ".." elements and look-alike siblings such as
// "/work/pack" vs "/work/pack-old" cannot confuse the result.
//
// # Environment Variables
//
//   - WFPACK_CONFIG_DIR: Override XDG config directory (default: $XDG_CONFIG_HOME/wfpack)
//   - WFPACK_STATE_DIR: Override XDG state directory (default: $XDG_STATE_HOME/wfpack)
//
// # Usage
//
//	paths.IsWithin("/p/vendor/pack", "/p/vendor/pack/.git")   // true
//	paths.IsStrictAncestor("/p", "/p/vendor/pack")             // true
//	paths.Chain("/p/vendor/tools/pack", "/p")                  // [/p/vendor/tools /p/vendor]
package paths
