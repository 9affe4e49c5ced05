// Package platform is the boundary between finger and the operating system's
// window system.
//
// A Platform enumerates windows whose title matches a pattern and creates
// Window handles for them. A Window drives input (activate, click, key tap,
// text entry) and captures pixels. Two variants exist:
//
//   - stub: deterministic fake windows; every operation is logged. Used for
//     development and tests.
//   - xdotool: the native X11 backend, driving the xdotool and ImageMagick
//     import executables.
//
// The variant is chosen once at startup with New; nothing deeper in the call
// graph branches on the operating system.
//
// Platform failures never surface as errors to callers: enumeration returns an
// empty list and Capture/Region report ok=false. Callers treat that as "try
// again on the next reconcile or tick".
package platform
