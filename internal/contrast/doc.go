// Package contrast computes a readable colour for an element from the part of
// a background image that lies behind it.
//
// The pipeline for each target element is:
//
//  1. ToContainerLocal: translate the target's page rectangle into the
//     container's coordinate space.
//  2. MapToSource: map that rectangle into image pixels using the container's
//     fit mode (cover or contain).
//  3. Source.Raster: resample the image rectangle into a buffer the size of
//     the target (delegated to a raster collaborator).
//  4. AverageColor: average every Nth pixel of the buffer.
//  5. Resolve: invert the average, or pick a theme colour by luminance.
//
// # Hex Colours
//
// Resolved colours are "#rrggbb" strings. DecodeHex accepts 3- and 6-digit
// values with or without '#'. EncodeHex always produces six digits.
//
// # Errors
//
// Failures are *Error values classified by Kind and matched with errors.Is
// against ErrConfiguration, ErrLoad, ErrAccess and ErrValidation. A failed
// recomputation never applies any colour, so whatever was applied before
// stays in place.
//
// # Concurrency
//
// Engine serialises recomputations and lets the most recent request win:
// older requests return ErrSuperseded. The pure functions in this package
// are safe for concurrent use.
package contrast
